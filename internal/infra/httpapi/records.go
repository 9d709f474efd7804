package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quiz-session-engine/internal/recorder"
)

// RecordClient talks to the grading/record service.
type RecordClient struct {
	baseURL string
	client  *http.Client
}

func NewRecordClient(baseURL string, timeout time.Duration) *RecordClient {
	return &RecordClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateSession creates a gradeable session record and returns its ID.
func (c *RecordClient) CreateSession(ctx context.Context, categoryID string) (string, error) {
	body, err := json.Marshal(map[string]string{"categoryId": categoryID})
	if err != nil {
		return "", err
	}
	resp, err := c.post(ctx, "/session", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode session record: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("session record response missing id")
	}
	return created.ID, nil
}

// SaveResponse persists one answered question. No response body is needed.
func (c *RecordClient) SaveResponse(ctx context.Context, response recorder.Response) error {
	body, err := json.Marshal(response)
	if err != nil {
		return err
	}
	resp, err := c.post(ctx, "/session/response", body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *RecordClient) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("record api: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("record api status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return resp, nil
}
