package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type sendRequest struct {
	Sender      senderPayload      `json:"sender"`
	To          []recipientPayload `json:"to"`
	Subject     string             `json:"subject"`
	HTMLContent string             `json:"htmlContent"`
}

type senderPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type recipientPayload struct {
	Email string `json:"email"`
}

type sendResponse struct {
	MessageID string `json:"messageId"`
}

// HTTPDispatcher posts to a transactional-email provider endpoint and returns
// the provider message id.
type HTTPDispatcher struct {
	endpoint string
	apiKey   string
	sender   Sender
	client   *http.Client
}

func NewHTTPDispatcher(endpoint, apiKey string, sender Sender) *HTTPDispatcher {
	return &HTTPDispatcher{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (d *HTTPDispatcher) Send(ctx context.Context, email Email) (string, error) {
	payload, err := json.Marshal(sendRequest{
		Sender:      senderPayload{Name: d.sender.Name, Email: d.sender.Email},
		To:          []recipientPayload{{Email: email.To}},
		Subject:     email.Subject,
		HTMLContent: email.HTMLBody,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("email provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("email provider returned %d: %s", resp.StatusCode, string(body))
	}

	var decoded sendResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}

	return decoded.MessageID, nil
}
