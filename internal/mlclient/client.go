// Package mlclient is an HTTP client for the optional model sidecar,
// which hosts the PII span detector and the zero-shot aspect classifier.
// The sidecar is optional: every caller treats ErrUnavailable as a
// routing signal to its deterministic fallback, never as a failure.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sercanai/screenaso/internal/privacy"
)

const defaultTimeout = 5 * time.Second

// ErrUnavailable indicates the model sidecar is unreachable.
var ErrUnavailable = errors.New("model sidecar unavailable")

// Client is an HTTP client for the model sidecar.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new sidecar client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// DetectRequest is the request body for /pii/detect.
type DetectRequest struct {
	Text string `json:"text"`
}

// ZeroShotRequest is the request body for /zero-shot.
type ZeroShotRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels"`
}

// ZeroShotResponse is the response body from /zero-shot.
type ZeroShotResponse struct {
	Scores           map[string]float64 `json:"scores"`
	ModelVersion     string             `json:"model_version"`
	ProcessingTimeMs int64              `json:"processing_time_ms"`
}

// Detect asks the sidecar for PII spans in text. Returns ErrUnavailable
// when the sidecar is unreachable.
func (c *Client) Detect(ctx context.Context, text string) (*privacy.Detection, error) {
	var result privacy.Detection
	if err := c.post(ctx, "/pii/detect", DetectRequest{Text: text}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ZeroShot classifies text against the given candidate labels. Returns
// ErrUnavailable when the sidecar is unreachable.
func (c *Client) ZeroShot(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	var result ZeroShotResponse
	if err := c.post(ctx, "/zero-shot", ZeroShotRequest{Text: text, Labels: labels}, &result); err != nil {
		return nil, err
	}
	return result.Scores, nil
}

// Health checks whether the sidecar is reachable and healthy.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model sidecar unhealthy: %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model sidecar returned %d", resp.StatusCode)
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}

	return nil
}
