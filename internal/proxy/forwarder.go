// Package proxy relays paid requests to a configured target origin.
package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rawgroundbeef/openfacilitator/pkg/metrics"
)

// DefaultTimeout bounds an origin forward so a payer's connection is never
// held indefinitely.
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of an origin response is buffered.
const maxResponseBytes = 16 << 20

// Request describes one origin forward.
type Request struct {
	Method    string
	TargetURL string
	// Headers is the inbound header set; only AllowHeaders are relayed.
	Headers      http.Header
	AllowHeaders []string
	Body         io.Reader
	ContentType  string
}

// Result is the origin's response, returned verbatim to the payer.
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Forwarder issues outbound requests to target origins.
type Forwarder struct {
	client *http.Client
}

// NewForwarder builds a Forwarder with the given timeout budget.
func NewForwarder(timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Forwarder{client: &http.Client{Timeout: timeout}}
}

// Forward relays the request, copying only allow-listed headers, and returns
// the origin's status, content type and body unmodified.
func (f *Forwarder) Forward(ctx context.Context, req Request) (*Result, error) {
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if method != http.MethodGet && method != http.MethodHead {
		body = req.Body
	}

	outbound, err := http.NewRequestWithContext(ctx, method, req.TargetURL, body)
	if err != nil {
		return nil, fmt.Errorf("proxy: build origin request: %w", err)
	}

	for _, name := range req.AllowHeaders {
		if value := req.Headers.Get(name); value != "" {
			outbound.Header.Set(name, value)
		}
	}
	if body != nil && outbound.Header.Get("Content-Type") == "" {
		contentType := req.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		outbound.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := f.client.Do(outbound)
	metrics.ProxyForwardLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("proxy: reach origin: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("proxy: read origin response: %w", err)
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        payload,
	}, nil
}
