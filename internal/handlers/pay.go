package handlers

import (
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rawgroundbeef/openfacilitator/internal/access"
	"github.com/rawgroundbeef/openfacilitator/internal/models"
	"github.com/rawgroundbeef/openfacilitator/internal/services"
	"github.com/rawgroundbeef/openfacilitator/internal/settlement"
	"github.com/rawgroundbeef/openfacilitator/internal/x402"
	"github.com/rawgroundbeef/openfacilitator/pkg/chains"
	apperrors "github.com/rawgroundbeef/openfacilitator/pkg/errors"
	"github.com/rawgroundbeef/openfacilitator/pkg/metrics"
	"github.com/rawgroundbeef/openfacilitator/pkg/response"
)

// PayHandler serves monetized link resources: challenge, payment page,
// requirements, and processed payments.
type PayHandler struct {
	resources      *services.ResourceService
	orchestrator   *settlement.Orchestrator
	codec          *access.Codec
	facilitatorURL string
	rpcEndpoints   map[string]string
}

// NewPayHandler constructs a handler over the protocol collaborators.
func NewPayHandler(resources *services.ResourceService, orchestrator *settlement.Orchestrator, codec *access.Codec, facilitatorURL string, rpcEndpoints map[string]string) *PayHandler {
	return &PayHandler{
		resources:      resources,
		orchestrator:   orchestrator,
		codec:          codec,
		facilitatorURL: facilitatorURL,
		rpcEndpoints:   rpcEndpoints,
	}
}

// Handle answers GET /pay/:link with content negotiation: a 402 challenge or
// entitled content for protocol audiences, the payment page for browsers, or
// settlement processing when a proof header is present.
func (h *PayHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	proof := c.GetHeader(x402.PaymentProofHeader)
	accept := c.GetHeader("Accept")

	facilitator := facilitatorFrom(c)
	if facilitator == nil {
		response.Error(c, apperrors.ErrResourceNotFound)
		return
	}

	res, err := h.resources.Resolve(ctx, c.Param("link"), facilitator.ID)
	if err != nil {
		h.renderResolutionError(c, accept, proof, err)
		return
	}

	hasGrant := res.AccessTTLSeconds > 0 &&
		h.codec.Verify(access.GrantFromRequest(c.Request, res.ID), res.ID)

	decision := x402.Negotiate(accept, proof, hasGrant)
	switch decision.Mode {
	case x402.ModeProcessPayment:
		h.processPayment(c, res, facilitator.ID, proof)

	case x402.ModeEntitled:
		h.serveEntitled(c, res, decision.Protocol)

	case x402.ModeChallenge:
		h.serveChallenge(c, res, facilitator.ID)

	case x402.ModePaymentPage:
		h.servePaymentPage(c, res, facilitator.ID)
	}
}

// Requirements answers GET /pay/:link/requirements with the requirement
// descriptor plus the auxiliary data a client-side transaction builder needs.
func (h *PayHandler) Requirements(c *gin.Context) {
	facilitator := facilitatorFrom(c)
	if facilitator == nil {
		response.Error(c, apperrors.ErrResourceNotFound)
		return
	}

	res, err := h.resources.Resolve(c.Request.Context(), c.Param("link"), facilitator.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.writeRequirements(c, res, facilitator.ID)
}

// completePayload is the body of POST /pay/:link/complete.
type completePayload struct {
	TransactionHash string `json:"transactionHash" binding:"required"`
	PayerAddress    string `json:"payerAddress"`
}

// Complete answers POST /pay/:link/complete: the browser flow broadcast the
// transaction itself and reports the hash for recording and entitlement.
func (h *PayHandler) Complete(c *gin.Context) {
	facilitator := facilitatorFrom(c)
	if facilitator == nil {
		response.Error(c, apperrors.ErrResourceNotFound)
		return
	}

	res, err := h.resources.Resolve(c.Request.Context(), c.Param("link"), facilitator.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var payload completePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("transactionHash is required"))
		return
	}

	outcome, err := h.orchestrator.CompleteClientSide(c.Request.Context(), res, settlement.CompleteInput{
		TransactionHash: payload.TransactionHash,
		PayerAddress:    payload.PayerAddress,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	writeOutcome(c, outcome)
}

func (h *PayHandler) processPayment(c *gin.Context, res *models.PaidResource, facilitatorID, proof string) {
	ctx := c.Request.Context()
	identities, err := h.resources.Identities(ctx, facilitatorID)
	if err != nil {
		response.Error(c, err)
		return
	}

	outcome, err := h.orchestrator.Process(ctx, res, canonicalResourceURL(c, res), identities, proof, originRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	writeOutcome(c, outcome)
}

func (h *PayHandler) serveEntitled(c *gin.Context, res *models.PaidResource, protocol bool) {
	if protocol {
		writeOutcome(c, h.orchestrator.ServeEntitled(c.Request.Context(), res, originRequest(c)))
		return
	}

	// Presentation audience with a live grant.
	switch res.EffectiveKind() {
	case models.KindRedirect:
		c.Redirect(http.StatusFound, res.TargetURL)
	case models.KindProxy:
		writeOutcome(c, h.orchestrator.ServeEntitled(c.Request.Context(), res, originRequest(c)))
	default:
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(alreadyPaidPage(res)))
	}
}

func (h *PayHandler) serveChallenge(c *gin.Context, res *models.PaidResource, facilitatorID string) {
	req, ok := h.buildRequirements(c, res, facilitatorID)
	if !ok {
		return
	}

	metrics.PaymentChallenges.WithLabelValues(res.Network).Inc()
	c.JSON(http.StatusPaymentRequired, x402.NewChallenge(
		*req,
		"payment_required",
		fmt.Sprintf("Payment of %s (atomic units) on %s required to access this resource", req.MaxAmountRequired, req.Network),
	))
}

func (h *PayHandler) servePaymentPage(c *gin.Context, res *models.PaidResource, facilitatorID string) {
	req, ok := h.buildRequirements(c, res, facilitatorID)
	if !ok {
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(paymentPage(res, req, h.facilitatorURL, h.auxFor(res, req))))
}

func (h *PayHandler) writeRequirements(c *gin.Context, res *models.PaidResource, facilitatorID string) {
	req, ok := h.buildRequirements(c, res, facilitatorID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"paymentRequirements": []x402.PaymentRequirements{*req},
		"facilitatorUrl":      h.facilitatorURL,
		"chainAux":            h.auxFor(res, req),
	})
}

func (h *PayHandler) buildRequirements(c *gin.Context, res *models.PaidResource, facilitatorID string) (*x402.PaymentRequirements, bool) {
	identities, err := h.resources.Identities(c.Request.Context(), facilitatorID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}

	req, err := x402.BuildRequirements(res, canonicalResourceURL(c, res), identities)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return req, true
}

func (h *PayHandler) auxFor(res *models.PaidResource, req *x402.PaymentRequirements) chains.AuxiliaryData {
	aux := chains.AuxiliaryData{RPCEndpoint: h.rpcEndpoints[res.Network]}
	if req.Extra != nil {
		aux.FeePayer = req.Extra["feePayer"]
	}
	return aux
}

func (h *PayHandler) renderResolutionError(c *gin.Context, accept, proof string, err error) {
	if x402.Negotiate(accept, proof, false).Protocol {
		response.Error(c, err)
		return
	}

	appErr := apperrors.FromError(err)
	c.Data(appErr.StatusCode, "text/html; charset=utf-8", []byte(fmt.Sprintf(
		"<!doctype html><html><body><h1>%d</h1><p>%s</p></body></html>",
		appErr.StatusCode, html.EscapeString(appErr.Message),
	)))
}
