package novita

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"velora/pkg/retry"
)

// Client talks to the Novita AI async text-to-image API: create a task,
// then poll until it succeeds or fails.
type Client struct {
	BaseURL      string
	APIKey       string
	Model        string
	PollInterval time.Duration
	PollTimeout  time.Duration
	client       *http.Client
}

func NewClient(baseURL, apiKey, model string, pollInterval, pollTimeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.novita.ai"
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if pollTimeout <= 0 {
		pollTimeout = 2 * time.Minute
	}
	return &Client{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		PollInterval: pollInterval,
		PollTimeout:  pollTimeout,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

var (
	ErrTaskFailed  = errors.New("generation task failed")
	ErrPollTimeout = errors.New("generation task did not finish in time")
)

// TaskRequest describes one text-to-image job.
type TaskRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
}

type txt2imgReq struct {
	ExtraParams extraParams `json:"extra"`
	Request     requestBody `json:"request"`
}

type extraParams struct {
	ResponseImageType string `json:"response_image_type"`
}

type requestBody struct {
	ModelName      string `json:"model_name"`
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	ImageNum       int    `json:"image_num"`
	Steps          int    `json:"steps"`
	GuidanceScale  float64 `json:"guidance_scale"`
	SamplerName    string `json:"sampler_name"`
}

type txt2imgResp struct {
	TaskID string `json:"task_id"`
}

type taskResultResp struct {
	Task struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"` // TASK_STATUS_QUEUED, TASK_STATUS_PROCESSING, TASK_STATUS_SUCCEED, TASK_STATUS_FAILED
		Reason string `json:"reason"`
	} `json:"task"`
	Images []struct {
		ImageURL  string `json:"image_url"`
		ImageType string `json:"image_type"`
	} `json:"images"`
}

// CreateTask submits a text-to-image job and returns the provider task id.
func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (string, error) {
	width, height := req.Width, req.Height
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}
	body := txt2imgReq{
		ExtraParams: extraParams{ResponseImageType: "jpeg"},
		Request: requestBody{
			ModelName:      c.Model,
			Prompt:         req.Prompt,
			NegativePrompt: req.NegativePrompt,
			Width:          width,
			Height:         height,
			ImageNum:       1,
			Steps:          25,
			GuidanceScale:  7.5,
			SamplerName:    "DPM++ 2M Karras",
		},
	}
	var out txt2imgResp
	err := retry.Do(ctx, retry.DefaultAttempts, retry.DefaultDelay, func() error {
		return c.postJSON(ctx, "/v3/async/txt2img", body, &out)
	})
	if err != nil {
		return "", fmt.Errorf("novita create task: %w", err)
	}
	if out.TaskID == "" {
		return "", fmt.Errorf("novita create task: empty task id")
	}
	return out.TaskID, nil
}

// WaitForResult polls the task until it succeeds, fails, or the poll timeout
// elapses. On success it returns the provider-hosted image URL.
func (c *Client) WaitForResult(ctx context.Context, taskID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.PollTimeout)
	defer cancel()
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()
	for {
		var out taskResultResp
		err := c.getJSON(ctx, "/v3/async/task-result?task_id="+taskID, &out)
		if err == nil {
			switch out.Task.Status {
			case "TASK_STATUS_SUCCEED":
				if len(out.Images) == 0 {
					return "", fmt.Errorf("novita task %s: succeeded with no images", taskID)
				}
				return out.Images[0].ImageURL, nil
			case "TASK_STATUS_FAILED":
				return "", fmt.Errorf("%w: %s", ErrTaskFailed, out.Task.Reason)
			}
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", ErrPollTimeout
			}
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// FetchImage downloads a generated image from the provider-hosted URL.
func (c *Client) FetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	return c.do(req, out)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("novita: status %d: %s", resp.StatusCode, string(data))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
