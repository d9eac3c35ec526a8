package typefully

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultBaseURL = "https://api.typefully.com/v1/"

// Client talks to the Typefully REST API. Keys are supplied per call because
// every user brings their own.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// ValidateKey checks an API key with a lightweight authenticated GET against
// the notifications endpoint. Any 2xx response means the key is usable.
func (c *Client) ValidateKey(ctx context.Context, apiKey string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"notifications/", nil)
	if err != nil {
		return false, err
	}
	c.setAuthHeader(req, apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer drainAndClose(resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

type createDraftRequest struct {
	Content string `json:"content"`
}

// CreateDraft stores text as a new draft under the given key.
func (c *Client) CreateDraft(ctx context.Context, apiKey string, content string) error {
	payload, err := json.Marshal(createDraftRequest{Content: content})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"drafts/", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	c.setAuthHeader(req, apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned non-2xx status: %d %s", resp.StatusCode, resp.Status)
	}
	return nil
}

func (c *Client) setAuthHeader(req *http.Request, apiKey string) {
	req.Header.Set("X-API-KEY", fmt.Sprintf("Bearer %s", apiKey))
}

func drainAndClose(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
