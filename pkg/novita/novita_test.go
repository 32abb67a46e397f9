package novita

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask(t *testing.T) {
	var gotAuth string
	var gotBody txt2imgReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/async/txt2img", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(txt2imgResp{TaskID: "task_123"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "sd_xl_base_1.0", time.Millisecond, time.Second)
	taskID, err := c.CreateTask(context.Background(), TaskRequest{Prompt: "a red fox"})
	require.NoError(t, err)
	assert.Equal(t, "task_123", taskID)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "sd_xl_base_1.0", gotBody.Request.ModelName)
	assert.Equal(t, "a red fox", gotBody.Request.Prompt)
	assert.Equal(t, 1024, gotBody.Request.Width, "dimensions default when unset")
	assert.Equal(t, 1, gotBody.Request.ImageNum)
}

func TestCreateTaskRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(txt2imgResp{TaskID: "task_after_retry"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", time.Millisecond, time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	taskID, err := c.CreateTask(ctx, TaskRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "task_after_retry", taskID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWaitForResult(t *testing.T) {
	var polls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/async/task-result", r.URL.Path)
		require.Equal(t, "task_123", r.URL.Query().Get("task_id"))
		var out taskResultResp
		out.Task.TaskID = "task_123"
		if atomic.AddInt32(&polls, 1) < 3 {
			out.Task.Status = "TASK_STATUS_PROCESSING"
		} else {
			out.Task.Status = "TASK_STATUS_SUCCEED"
			out.Images = []struct {
				ImageURL  string `json:"image_url"`
				ImageType string `json:"image_type"`
			}{{ImageURL: "https://cdn.example.com/img.jpg", ImageType: "jpeg"}}
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", time.Millisecond, time.Second)
	url, err := c.WaitForResult(context.Background(), "task_123")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/img.jpg", url)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&polls), int32(3))
}

func TestWaitForResultFailedTask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var out taskResultResp
		out.Task.Status = "TASK_STATUS_FAILED"
		out.Task.Reason = "nsfw filter"
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", time.Millisecond, time.Second)
	_, err := c.WaitForResult(context.Background(), "t")
	assert.ErrorIs(t, err, ErrTaskFailed)
	assert.Contains(t, err.Error(), "nsfw filter")
}

func TestWaitForResultTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var out taskResultResp
		out.Task.Status = "TASK_STATUS_PROCESSING"
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", time.Millisecond, 50*time.Millisecond)
	_, err := c.WaitForResult(context.Background(), "t")
	assert.ErrorIs(t, err, ErrPollTimeout)
}

func TestFetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", "m", time.Millisecond, time.Second)
	data, err := c.FetchImage(context.Background(), srv.URL+"/img.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
}
