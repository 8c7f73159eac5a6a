// Package facilitator abstracts the verify/settle operation pair. The
// orchestrator talks to the Client interface so the same engine can call a
// remote facilitator over HTTP or an in-process implementation without
// routing a request back through its own listener.
package facilitator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rawgroundbeef/openfacilitator/internal/x402"
)

// Client drives the two-phase verify and settle call pair.
type Client interface {
	Verify(ctx context.Context, proof *x402.PaymentPayload, req *x402.PaymentRequirements) (*x402.VerifyResult, error)
	Settle(ctx context.Context, proof *x402.PaymentPayload, req *x402.PaymentRequirements) (*x402.SettleResult, error)
}

// DefaultTimeout bounds each remote verify/settle call.
const DefaultTimeout = 30 * time.Second

// RemoteClient calls a facilitator's verify/settle HTTP endpoints.
type RemoteClient struct {
	baseURL string
	client  *http.Client
}

// NewRemoteClient builds a client for the facilitator at baseURL.
func NewRemoteClient(baseURL string, timeout time.Duration) *RemoteClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RemoteClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// request is the server-to-server body shared by verify and settle.
type request struct {
	X402Version         int                       `json:"x402Version"`
	PaymentPayload      *x402.PaymentPayload      `json:"paymentPayload"`
	PaymentRequirements *x402.PaymentRequirements `json:"paymentRequirements"`
}

// Verify calls POST {base}/verify.
func (c *RemoteClient) Verify(ctx context.Context, proof *x402.PaymentPayload, req *x402.PaymentRequirements) (*x402.VerifyResult, error) {
	var result x402.VerifyResult
	if err := c.post(ctx, "/verify", proof, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Settle calls POST {base}/settle.
func (c *RemoteClient) Settle(ctx context.Context, proof *x402.PaymentPayload, req *x402.PaymentRequirements) (*x402.SettleResult, error) {
	var result x402.SettleResult
	if err := c.post(ctx, "/settle", proof, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RemoteClient) post(ctx context.Context, path string, proof *x402.PaymentPayload, req *x402.PaymentRequirements, out interface{}) error {
	body, err := json.Marshal(request{
		X402Version:         x402.ProtocolVersion,
		PaymentPayload:      proof,
		PaymentRequirements: req,
	})
	if err != nil {
		return fmt.Errorf("facilitator: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("facilitator: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("facilitator: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("facilitator: %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("facilitator: decode %s response: %w", path, err)
	}
	return nil
}
