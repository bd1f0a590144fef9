package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slofy/reviewmate/internal/model"
)

// ErrUnavailable marks transport-level upstream failures: network errors,
// timeouts, or responses whose body cannot be relayed as JSON.
var ErrUnavailable = errors.New("upstream unavailable")

const maxResponseBytes = 4 << 20

// Result carries an upstream response to be relayed verbatim: the gateway
// does not reinterpret the provider's status or body.
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ReviewClient calls the code-review inference service.
type ReviewClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewReviewClient(baseURL string, timeout time.Duration) *ReviewClient {
	return &ReviewClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ReviewClient) Review(ctx context.Context, req model.ReviewRequest) (*Result, error) {
	payload, err := json.Marshal(map[string]string{
		"code":     req.Code,
		"language": req.Language,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/review", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: non-JSON response (status %d)", ErrUnavailable, resp.StatusCode)
	}

	return &Result{StatusCode: resp.StatusCode, Body: body}, nil
}
