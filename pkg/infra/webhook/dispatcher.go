// Package webhook delivers signed event callbacks to project-configured
// endpoints (spec.md §4.6 low-balance alerts, §4.1 general event hooks).
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Dispatcher POSTs a JSON body to a target URL with an HMAC-SHA256 signature
// header, the same shape as the teacher's request-signing middleware
// verifies on inbound requests (cmd/rest-api/middlewares/request_signing_middleware.go).
type Dispatcher struct {
	secret     string
	httpClient *http.Client
}

func NewDispatcher(secret string) *Dispatcher {
	return &Dispatcher{secret: secret, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Send signs payload with HMAC-SHA256 and POSTs it to targetURL under the
// X-NexusPay-Signature header. Delivery failures are logged and returned;
// callers treat webhook delivery as best-effort.
func (d *Dispatcher) Send(ctx context.Context, targetURL string, eventType string, payload interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
		"ts":   time.Now().UTC().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	mac := hmac.New(sha256.New, []byte(d.secret))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-NexusPay-Signature", signature)
	req.Header.Set("X-NexusPay-Event", eventType)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "webhook delivery failed", "url", targetURL, "event", eventType, "error", err)
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		slog.WarnContext(ctx, "webhook endpoint returned non-2xx", "url", targetURL, "status", resp.StatusCode)
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
