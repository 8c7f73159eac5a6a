// Package webhooks delivers fire-and-forget payment notifications. Delivery
// failures are logged and counted, never surfaced to the payer, and never
// retried beyond the configured attempt budget.
package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rawgroundbeef/openfacilitator/pkg/logger"
	"github.com/rawgroundbeef/openfacilitator/pkg/metrics"
)

// SignatureHeader carries the hex HMAC-SHA256 digest of the request body.
const SignatureHeader = "X-Webhook-Signature"

// DefaultMaxAttempts is the delivery attempt budget.
const DefaultMaxAttempts = 3

// Intent describes one delivery derived from a successful payment.
type Intent struct {
	URL    string
	Secret string
	Event  string
	// Payload is marshalled as the request body.
	Payload any
}

// Dispatcher delivers webhook intents asynchronously.
type Dispatcher struct {
	client      *http.Client
	maxAttempts int
	log         *zap.Logger

	wg sync.WaitGroup
}

// NewDispatcher builds a dispatcher with a per-attempt timeout and attempt budget.
func NewDispatcher(timeout time.Duration, maxAttempts int) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Dispatcher{
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		log:         logger.WithModule("webhooks"),
	}
}

// Dispatch delivers the intent in the background, detached from the caller's
// request lifecycle. Intents without a URL are dropped silently.
func (d *Dispatcher) Dispatch(intent Intent) {
	if intent.URL == "" {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.deliver(context.Background(), intent)
	}()
}

// Wait blocks until all in-flight deliveries finish. Used by shutdown and tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, intent Intent) {
	body, err := json.Marshal(envelope{Event: intent.Event, Data: intent.Payload, Timestamp: time.Now().Unix()})
	if err != nil {
		d.log.Error("encode payload", zap.Error(err), zap.String("url", intent.URL))
		return
	}

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err := d.attempt(ctx, intent, body); err != nil {
			metrics.WebhookDeliveries.WithLabelValues("failure").Inc()
			d.log.Warn("delivery failed",
				zap.String("url", intent.URL),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			if attempt < d.maxAttempts {
				time.Sleep(time.Duration(attempt) * time.Second)
			}
			continue
		}

		metrics.WebhookDeliveries.WithLabelValues("success").Inc()
		return
	}
}

func (d *Dispatcher) attempt(ctx context.Context, intent Intent, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, intent.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if intent.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(intent.Secret, body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook target returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 signature a receiver should compare
// against SignatureHeader.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type envelope struct {
	Event     string `json:"event"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}
