package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

const pollPath = "/api/jobs/poll"

// JobSource is the server side of the worker protocol
type JobSource interface {
	Poll(ctx context.Context) (*models.ClaimedJob, error)
	Report(ctx context.Context, report *models.JobReport) (*models.ReportResponse, error)
}

// Client talks to the job endpoints of a readrepeat server
type Client struct {
	baseURL string
	token   string
	name    string
	http    *http.Client
}

var _ JobSource = (*Client)(nil)

// NewClient creates a protocol client. token is sent as a bearer token when non-empty.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// WithName sets the X-Worker-Name header the server records when tokens are off
func (c *Client) WithName(name string) *Client {
	c.name = name
	return c
}

// Poll claims the next job; it returns nil when the queue is empty
func (c *Client) Poll(ctx context.Context) (*models.ClaimedJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pollPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var resp models.PollResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("polling for jobs: %w", err)
	}
	return resp.Job, nil
}

// Report sends the outcome of a job
func (c *Client) Report(ctx context.Context, report *models.JobReport) (*models.ReportResponse, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pollPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp models.ReportResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("reporting job %d: %w", report.JobID, err)
	}
	return &resp, nil
}

// StatusError is a non-2xx answer from the server
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.name != "" {
		req.Header.Set("X-Worker-Name", c.name)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &body)
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
