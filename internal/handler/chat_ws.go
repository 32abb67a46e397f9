package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"velora/config"
	"velora/internal/auth"
	"velora/internal/repository"
	"velora/internal/service"
	"velora/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	chatWriteWait  = 10 * time.Second
	chatPongWait   = 60 * time.Second
	chatPingPeriod = (chatPongWait * 9) / 10
	chatReplyWait  = 90 * time.Second
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsInbound struct {
	Content string `json:"content"`
}

type wsOutbound struct {
	Type    string      `json:"type"` // user_message, assistant_message, error
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
	TopUp   bool        `json:"top_up,omitempty"`
}

// UpgradeChatWS upgrades to WebSocket for live character chat; query: token,
// session_id. The user must own the session.
func UpgradeChatWS(cfg *config.JWTConfig, hub *ws.Hub, chatRepo *repository.ChatRepository, chatSvc *service.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		sessionIDStr := c.Query("session_id")
		if token == "" || sessionIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token and session_id required"})
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		var sessionID uint
		if _, err := fmt.Sscanf(sessionIDStr, "%d", &sessionID); err != nil || sessionID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session_id"})
			return
		}
		session, err := chatRepo.GetSessionByID(sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		if session.UserID != claims.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
			return
		}
		conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		client := &ws.Client{
			UserID:    claims.UserID,
			SessionID: sessionID,
			Send:      make(chan []byte, 16),
		}
		hub.Register(client)
		defer client.Close()

		done := make(chan struct{})
		go writeLoop(conn, client, done)

		conn.SetReadLimit(8192)
		_ = conn.SetReadDeadline(time.Now().Add(chatPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(chatPongWait))
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var in wsInbound
			if err := json.Unmarshal(data, &in); err != nil || in.Content == "" {
				sendJSON(client, wsOutbound{Type: "error", Error: "invalid message"})
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), chatReplyWait)
			userMsg, reply, err := chatSvc.SendMessage(ctx, session, in.Content)
			cancel()
			if err != nil {
				if errors.Is(err, repository.ErrInsufficientBalance) || errors.Is(err, repository.ErrNoBalanceRecord) {
					sendJSON(client, wsOutbound{Type: "error", Error: "not enough tokens", TopUp: true})
					continue
				}
				log.Printf("[chat-ws] session=%d err=%v", sessionID, err)
				sendJSON(client, wsOutbound{Type: "error", Error: "reply failed"})
				continue
			}
			hub.BroadcastToSession(sessionID, wsOutbound{Type: "user_message", Payload: userMsg})
			hub.BroadcastToSession(sessionID, wsOutbound{Type: "assistant_message", Payload: reply})
		}
		close(done)
	}
}

func writeLoop(conn *websocket.Conn, client *ws.Client, done <-chan struct{}) {
	ticker := time.NewTicker(chatPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(chatWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func sendJSON(client *ws.Client, payload wsOutbound) {
	data, _ := json.Marshal(payload)
	client.Enqueue(data)
}
