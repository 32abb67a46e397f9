package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegisterBroadcastClose(t *testing.T) {
	hub := NewHub()
	a := &Client{UserID: 1, SessionID: 7, Send: make(chan []byte, 4)}
	b := &Client{UserID: 1, SessionID: 7, Send: make(chan []byte, 4)}
	other := &Client{UserID: 2, SessionID: 8, Send: make(chan []byte, 4)}
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)
	assert.Equal(t, 2, hub.SessionClientCount(7))

	hub.BroadcastToSession(7, map[string]string{"type": "user_message"})
	assert.Len(t, a.Send, 1)
	assert.Len(t, b.Send, 1)
	assert.Len(t, other.Send, 0)

	a.Close()
	assert.Equal(t, 1, hub.SessionClientCount(7))
	a.Close() // idempotent

	b.Close()
	other.Close()
	assert.Equal(t, 0, hub.SessionClientCount(7))
	assert.Equal(t, 0, hub.SessionClientCount(8))
}

func TestEnqueueAfterClose(t *testing.T) {
	c := &Client{UserID: 1, SessionID: 1, Send: make(chan []byte, 1)}
	assert.True(t, c.Enqueue([]byte("hi")))
	assert.False(t, c.Enqueue([]byte("full"))) // buffer of 1 exhausted
	c.Close()
	assert.False(t, c.Enqueue([]byte("late")))
}

// A client disconnecting while another connection on the same session is
// broadcasting must not panic the broadcaster.
func TestBroadcastDuringClose(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					hub.BroadcastToSession(1, map[string]string{"type": "assistant_message"})
				}
			}
		}()
	}
	var closers sync.WaitGroup
	for i := 0; i < 200; i++ {
		c := &Client{UserID: uint(i), SessionID: 1, Send: make(chan []byte, 1)}
		hub.Register(c)
		closers.Add(1)
		go func() {
			defer closers.Done()
			time.Sleep(time.Millisecond)
			c.Close()
		}()
	}
	closers.Wait()
	close(done)
	wg.Wait()
	assert.Equal(t, 0, hub.SessionClientCount(1))
}
