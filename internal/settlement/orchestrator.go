// Package settlement drives the verify and settle call pair for incoming payment
// proofs and shapes the post-payment response per resource kind.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rawgroundbeef/openfacilitator/internal/access"
	"github.com/rawgroundbeef/openfacilitator/internal/facilitator"
	"github.com/rawgroundbeef/openfacilitator/internal/models"
	"github.com/rawgroundbeef/openfacilitator/internal/proxy"
	"github.com/rawgroundbeef/openfacilitator/internal/services"
	"github.com/rawgroundbeef/openfacilitator/internal/webhooks"
	"github.com/rawgroundbeef/openfacilitator/internal/x402"
	apperrors "github.com/rawgroundbeef/openfacilitator/pkg/errors"
	"github.com/rawgroundbeef/openfacilitator/pkg/logger"
	"github.com/rawgroundbeef/openfacilitator/pkg/metrics"
)

// TransactionHeader carries the settlement transaction id on proxied responses.
const TransactionHeader = "X-Payment-Transaction-Hash"

// EventPaymentSucceeded is the webhook event for settled payments.
const EventPaymentSucceeded = "payment.succeeded"

// OriginRequest is the inbound request material a proxy forward needs.
type OriginRequest struct {
	Method      string
	Headers     http.Header
	Body        io.Reader
	ContentType string
}

// Outcome is a fully shaped HTTP response decision.
type Outcome struct {
	Status      int
	Body        any    // JSON body when RawBody is nil
	RawBody     []byte // origin response passed through verbatim
	ContentType string
	Cookie      *http.Cookie
	// TransactionHash is set once settlement succeeded, regardless of what
	// happened afterwards.
	TransactionHash string
}

// failureBody is the protocol error shape for failed verification/settlement.
// It always carries the accepts array so a client can retry with a fresh
// proof without re-fetching requirements.
type failureBody struct {
	X402Version int                        `json:"x402Version"`
	Error       string                     `json:"error"`
	Reason      string                     `json:"reason,omitempty"`
	Accepts     []x402.PaymentRequirements `json:"accepts,omitempty"`
}

// Config bundles the orchestrator's collaborators.
type Config struct {
	Resources     *services.ResourceService
	Payments      *services.PaymentService
	Client        facilitator.Client
	Codec         *access.Codec
	Forwarder     *proxy.Forwarder
	Webhooks      *webhooks.Dispatcher
	SecureCookies bool
}

// Orchestrator runs the full settlement pipeline for one payment proof:
// decode, re-derive requirements, verify, settle, persist, grant, webhook.
type Orchestrator struct {
	cfg Config
	log *zap.Logger
}

// NewOrchestrator validates collaborators and builds an Orchestrator.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.Resources == nil || cfg.Payments == nil {
		return nil, errors.New("settlement: resource and payment services are required")
	}
	if cfg.Client == nil {
		return nil, errors.New("settlement: facilitator client is required")
	}
	if cfg.Codec == nil {
		return nil, errors.New("settlement: access codec is required")
	}
	if cfg.Forwarder == nil {
		return nil, errors.New("settlement: proxy forwarder is required")
	}
	if cfg.Webhooks == nil {
		return nil, errors.New("settlement: webhook dispatcher is required")
	}
	return &Orchestrator{cfg: cfg, log: logger.WithModule("settlement")}, nil
}

// Process settles one payment proof against the resource's current state.
// Protocol-level failures come back as shaped Outcomes; only genuinely
// unexpected failures (unreachable facilitator, database errors) return a
// non-nil error for the outer handler boundary.
func (o *Orchestrator) Process(ctx context.Context, res *models.PaidResource, resourceURL string, identities x402.IdentityMap, proofHeader string, origin *OriginRequest) (*Outcome, error) {
	proof, err := x402.DecodeProof(proofHeader)
	if err != nil {
		metrics.Settlements.WithLabelValues(res.Network, "malformed").Inc()
		return &Outcome{
			Status: http.StatusBadRequest,
			Body: failureBody{
				X402Version: x402.ProtocolVersion,
				Error:       apperrors.ErrMalformedProof.Code,
				Reason:      "payment proof could not be decoded",
			},
		}, nil
	}

	// Re-derive from current resource state; a concurrent deactivation or
	// identity removal surfaces here, before anything is recorded.
	req, err := x402.BuildRequirements(res, resourceURL, identities)
	if err != nil {
		appErr := apperrors.FromError(err)
		return &Outcome{
			Status: appErr.StatusCode,
			Body: failureBody{
				X402Version: x402.ProtocolVersion,
				Error:       appErr.Code,
				Reason:      appErr.Message,
			},
		}, nil
	}

	// A settlement that already broadcast a chain transaction must not be
	// abandoned because the payer hung up. The same shield covers the
	// persistence step: once settle succeeded the Payment row must land.
	callCtx := context.WithoutCancel(ctx)

	verdict, err := o.cfg.Client.Verify(callCtx, proof, req)
	if err != nil {
		return nil, fmt.Errorf("settlement: verify: %w", err)
	}
	if !verdict.Valid {
		metrics.Settlements.WithLabelValues(res.Network, "verify_failed").Inc()
		return &Outcome{
			Status: http.StatusPaymentRequired,
			Body: failureBody{
				X402Version: x402.ProtocolVersion,
				Error:       apperrors.ErrVerificationFailed.Code,
				Reason:      verdict.InvalidReason,
				Accepts:     []x402.PaymentRequirements{*req},
			},
		}, nil
	}

	settled, err := o.cfg.Client.Settle(callCtx, proof, req)
	if err != nil {
		return nil, fmt.Errorf("settlement: settle: %w", err)
	}
	if !settled.Success {
		// A failed settle attempt is deliberately not persisted as a Payment.
		metrics.Settlements.WithLabelValues(res.Network, "settle_failed").Inc()
		return &Outcome{
			Status: http.StatusPaymentRequired,
			Body: failureBody{
				X402Version: x402.ProtocolVersion,
				Error:       apperrors.ErrSettlementFailed.Code,
				Reason:      settled.ErrorMessage,
				Accepts:     []x402.PaymentRequirements{*req},
			},
		}, nil
	}

	payment, err := o.cfg.Payments.RecordSuccess(callCtx, services.RecordSuccessInput{
		ResourceID:      res.ID,
		Network:         res.Network,
		Amount:          req.MaxAmountRequired,
		TransactionHash: settled.TransactionHash,
		PayerAddress:    payerFor(proof, verdict, settled, req),
		Metadata:        map[string]any{"scheme": proof.Scheme},
	})
	if err != nil {
		return nil, err
	}
	metrics.Settlements.WithLabelValues(res.Network, "success").Inc()

	outcome := &Outcome{TransactionHash: settled.TransactionHash}

	if res.AccessTTLSeconds > 0 {
		outcome.Cookie = o.issueGrant(res)
	}

	o.dispatchWebhook(res, payment)

	o.shapeResponse(ctx, outcome, res, origin)
	return outcome, nil
}

// CompleteInput records a payment whose broadcast happened client-side,
// outside the verify/settle pair (browser payment-page flow).
type CompleteInput struct {
	TransactionHash string
	PayerAddress    string
}

// CompleteClientSide persists the client-broadcast payment, issues the grant
// and dispatches the webhook. The response is always JSON: the browser page
// drives any navigation itself.
func (o *Orchestrator) CompleteClientSide(ctx context.Context, res *models.PaidResource, input CompleteInput) (*Outcome, error) {
	payment, err := o.cfg.Payments.RecordSuccess(ctx, services.RecordSuccessInput{
		ResourceID:      res.ID,
		Network:         res.Network,
		Amount:          res.Amount,
		TransactionHash: input.TransactionHash,
		PayerAddress:    input.PayerAddress,
		Metadata:        map[string]any{"flow": "client-broadcast"},
	})
	if err != nil {
		return nil, err
	}
	metrics.Settlements.WithLabelValues(res.Network, "success").Inc()

	outcome := &Outcome{
		Status:          http.StatusOK,
		TransactionHash: input.TransactionHash,
	}

	if res.AccessTTLSeconds > 0 {
		outcome.Cookie = o.issueGrant(res)
	}

	o.dispatchWebhook(res, payment)

	body := map[string]any{
		"success":         true,
		"transactionHash": input.TransactionHash,
	}
	if res.EffectiveKind() == models.KindRedirect {
		body["redirectUrl"] = res.TargetURL
	}
	outcome.Body = body
	return outcome, nil
}

// ServeEntitled answers a request that already holds a valid grant, without
// contacting the chain. The kind dispatch mirrors shapeResponse.
func (o *Orchestrator) ServeEntitled(ctx context.Context, res *models.PaidResource, origin *OriginRequest) *Outcome {
	outcome := &Outcome{}
	o.shapeResponse(ctx, outcome, res, origin)
	return outcome
}

// shapeResponse produces the per-kind response body. It is the single
// exhaustive dispatch over resource kinds for the post-payment and
// already-entitled concerns.
func (o *Orchestrator) shapeResponse(ctx context.Context, outcome *Outcome, res *models.PaidResource, origin *OriginRequest) {
	switch res.EffectiveKind() {
	case models.KindPayment:
		outcome.Status = http.StatusOK
		body := map[string]any{"success": true}
		if outcome.TransactionHash != "" {
			body["transactionHash"] = outcome.TransactionHash
		}
		outcome.Body = body

	case models.KindRedirect:
		outcome.Status = http.StatusOK
		body := map[string]any{
			"success":     true,
			"redirectUrl": res.TargetURL,
		}
		if outcome.TransactionHash != "" {
			body["transactionHash"] = outcome.TransactionHash
		}
		outcome.Body = body

	case models.KindProxy:
		o.forwardOrigin(ctx, outcome, res, origin)
	}
}

// forwardOrigin relays the request to the target origin. The payer has
// already paid when this runs: a forward failure is reported as 502 carrying
// the transaction id, and the payment is never rolled back.
func (o *Orchestrator) forwardOrigin(ctx context.Context, outcome *Outcome, res *models.PaidResource, origin *OriginRequest) {
	if origin == nil {
		origin = &OriginRequest{Method: res.Method, Headers: http.Header{}}
	}

	method := origin.Method
	if res.Method != "" && res.Method != "ANY" {
		method = res.Method
	}

	result, err := o.cfg.Forwarder.Forward(ctx, proxy.Request{
		Method:       method,
		TargetURL:    res.TargetURL,
		Headers:      origin.Headers,
		AllowHeaders: res.ForwardHeaderNames(),
		Body:         origin.Body,
		ContentType:  origin.ContentType,
	})
	if err != nil {
		o.log.Error("origin forward failed",
			zap.String("resource_id", res.ID),
			zap.String("target", res.TargetURL),
			zap.String("transaction_hash", outcome.TransactionHash),
			zap.Error(err),
		)
		outcome.Status = http.StatusBadGateway
		outcome.Body = map[string]any{
			"error":           apperrors.ErrOriginForward.Code,
			"message":         apperrors.ErrOriginForward.Message,
			"transactionHash": outcome.TransactionHash,
		}
		return
	}

	outcome.Status = result.StatusCode
	outcome.RawBody = result.Body
	outcome.ContentType = result.ContentType
}

func (o *Orchestrator) issueGrant(res *models.PaidResource) *http.Cookie {
	token, err := o.cfg.Codec.Issue(res.ID, time.Duration(res.AccessTTLSeconds)*time.Second)
	if err != nil {
		// Entitlement is a convenience on top of a settled payment; losing
		// the cookie must not fail the response.
		o.log.Error("issue access grant", zap.String("resource_id", res.ID), zap.Error(err))
		return nil
	}
	return access.GrantCookie(res.ID, token, res.AccessTTLSeconds, o.cfg.SecureCookies)
}

func (o *Orchestrator) dispatchWebhook(res *models.PaidResource, payment *models.Payment) {
	if res.WebhookURL == "" {
		return
	}
	o.cfg.Webhooks.Dispatch(webhooks.Intent{
		URL:     res.WebhookURL,
		Secret:  res.WebhookSecret,
		Event:   EventPaymentSucceeded,
		Payload: payment,
	})
}

// payerFor picks the best available payer attribution: the settle result,
// then the verify result, then the proof's embedded payer. Fee-delegated
// proofs expose none of these, so the requirement's payee stands in.
func payerFor(proof *x402.PaymentPayload, verdict *x402.VerifyResult, settled *x402.SettleResult, req *x402.PaymentRequirements) string {
	switch {
	case settled.Payer != "":
		return settled.Payer
	case verdict.Payer != "":
		return verdict.Payer
	case proof.PayerAddress() != "":
		return proof.PayerAddress()
	default:
		return req.PayTo
	}
}
