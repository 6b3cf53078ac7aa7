package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clairon-backend/internal/models"
)

// Client posts conversations to a Clairon server's /api/support endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send implements Sender. Any non-2xx status is an error, including the
// 400 the proxy returns for an empty conversation.
func (c *Client) Send(ctx context.Context, messages []models.ChatMessage) (string, error) {
	body, err := json.Marshal(models.SupportRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal support request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/support", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build support request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send support request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("support endpoint returned status %d", resp.StatusCode)
	}

	var out models.SupportResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode support response: %w", err)
	}
	return out.Response, nil
}
