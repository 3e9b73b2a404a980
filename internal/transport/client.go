package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/bowerhall/chatwidget/internal/logger"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 1 << 20

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     hc,
	}
}

// Send performs exactly one request/response exchange. On a non-2xx status
// it returns both the envelope and an *HTTPError so callers can still look at
// the body. Transport-level failures return a *NetworkError and no envelope.
func (c *Client) Send(ctx context.Context, message, sessionID string) (*Envelope, error) {
	body, err := json.Marshal(Request{
		Message:   message,
		SessionID: sessionID,
		APIKey:    c.apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("chat request failed", "endpoint", c.endpoint, "error", err)
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		logger.Warn("chat response read failed", "status", resp.StatusCode, "error", err)
		return nil, &NetworkError{Err: err}
	}

	env := &Envelope{
		StatusCode: resp.StatusCode,
		Body:       raw,
		Payload:    parsePayload(raw),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("chat request rejected", "status", resp.StatusCode)
		return env, &HTTPError{StatusCode: resp.StatusCode}
	}

	logger.Debug("chat response", "status", resp.StatusCode, "size", len(raw), "json", env.Payload.Exists())
	return env, nil
}

// parsePayload never fails: bodies that are not JSON become a Null result.
func parsePayload(raw []byte) gjson.Result {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		if len(trimmed) > 0 {
			logger.Debug("chat response is not json", "size", len(raw))
		}
		return gjson.Result{}
	}
	return gjson.ParseBytes(trimmed)
}
