package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// WorkerTrigger notifies the out-of-process generation worker that a new job
// exists. Notification is an optimization only: the job row is the source of
// truth and the worker's claim loop picks it up either way.
type WorkerTrigger interface {
	Notify(ctx context.Context, jobID string) error
}

// HTTPTrigger posts the job id to a fixed worker endpoint. No response body
// is interpreted beyond the status code.
type HTTPTrigger struct {
	endpoint string
	client   *http.Client
}

// NewHTTPTrigger builds a trigger for the given endpoint.
func NewHTTPTrigger(endpoint string, client *http.Client) (*HTTPTrigger, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("ai: worker trigger endpoint is required")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPTrigger{endpoint: endpoint, client: client}, nil
}

// Notify posts {"jobId": id} to the worker endpoint.
func (t *HTTPTrigger) Notify(ctx context.Context, jobID string) error {
	payload, err := json.Marshal(map[string]string{"jobId": jobID})
	if err != nil {
		return fmt.Errorf("ai: encode trigger payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ai: build trigger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("ai: notify worker: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("ai: notify worker: status %d", resp.StatusCode)
	}
	return nil
}

// NoopTrigger is used when no worker endpoint is configured; jobs then rely
// solely on the worker's claim loop.
type NoopTrigger struct{}

func (NoopTrigger) Notify(context.Context, string) error { return nil }

var _ WorkerTrigger = (*HTTPTrigger)(nil)
