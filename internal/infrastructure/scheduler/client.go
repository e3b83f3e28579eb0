package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"file-vault-api/config"
)

// ErrSubmission is logged by callers, never surfaced to the webhook caller.
var ErrSubmission = errors.New("scheduler submission error")

// Task asks the external scheduler to call webhookUrl at executeAt with
// webhookAuth in the body. The system only ever submits single-element
// batches.
type Task struct {
	WebhookURL  string    `json:"webhookUrl"`
	WebhookAuth string    `json:"webhookAuth"`
	ExecuteAt   time.Time `json:"executeAt"`
}

type Client struct {
	logger   *zap.Logger
	http     *http.Client
	endpoint string
}

func New(logger *zap.Logger, cfg config.Scheduler) *Client {
	return &Client{
		logger:   logger,
		http:     &http.Client{Timeout: 10 * time.Second},
		endpoint: cfg.Endpoint,
	}
}

func (c *Client) Submit(ctx context.Context, tasks []Task) error {
	b, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmission, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: scheduler returned %d", ErrSubmission, resp.StatusCode)
	}

	return nil
}
