package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
)

// HTTPPublisher POSTs each record as a JSON Payload. The `url` option of a
// target overrides the default URL.
type HTTPPublisher struct {
	url    string
	client *http.Client
}

// NewHTTPPublisher returns a publisher posting to url. A zero timeout means
// 30 seconds.
func NewHTTPPublisher(url string, timeout time.Duration) *HTTPPublisher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPPublisher{
		url: url,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Name implements Backend.
func (h *HTTPPublisher) Name() string { return "http" }

// Publish implements dataflow.Publisher.
func (h *HTTPPublisher) Publish(ctx context.Context, rec dataflow.Record) error {
	logger := ctxlog.FromContext(ctx)

	url := rec.Options.String("url", h.url)
	if url == "" {
		return fmt.Errorf("publish target '%s': no url configured for the http publisher", rec.Target)
	}
	payload, err := NewPayload(rec)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("publish target '%s': %w", rec.Target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Posting published values.", "target", rec.Target, "url", url, "values", len(payload.Values))
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("publish target '%s': %s responded %s: %s", rec.Target, url, resp.Status, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Close releases idle connections.
func (h *HTTPPublisher) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
