package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rawgroundbeef/openfacilitator/internal/access"
	"github.com/rawgroundbeef/openfacilitator/internal/services"
	"github.com/rawgroundbeef/openfacilitator/internal/settlement"
	"github.com/rawgroundbeef/openfacilitator/internal/x402"
	"github.com/rawgroundbeef/openfacilitator/pkg/chains"
	apperrors "github.com/rawgroundbeef/openfacilitator/pkg/errors"
	"github.com/rawgroundbeef/openfacilitator/pkg/metrics"
	"github.com/rawgroundbeef/openfacilitator/pkg/response"
)

// GatewayHandler serves monetized API endpoints under /u/:slug. Endpoint
// consumers are machines, so every response is protocol-shaped JSON
// regardless of the Accept header.
type GatewayHandler struct {
	resources      *services.ResourceService
	orchestrator   *settlement.Orchestrator
	codec          *access.Codec
	facilitatorURL string
	rpcEndpoints   map[string]string
}

func NewGatewayHandler(resources *services.ResourceService, orchestrator *settlement.Orchestrator, codec *access.Codec, facilitatorURL string, rpcEndpoints map[string]string) *GatewayHandler {
	return &GatewayHandler{
		resources:      resources,
		orchestrator:   orchestrator,
		codec:          codec,
		facilitatorURL: facilitatorURL,
		rpcEndpoints:   rpcEndpoints,
	}
}

// Handle answers any method on /u/:slug. Requests carrying a live access
// grant are forwarded without a new payment; requests without proof or grant
// get a 402 challenge; requests with a proof are verified, settled and
// forwarded.
func (h *GatewayHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	facilitator := facilitatorFrom(c)
	if facilitator == nil {
		response.Error(c, apperrors.ErrResourceNotFound)
		return
	}

	res, err := h.resources.ResolveEndpoint(ctx, c.Param("slug"), facilitator.ID, c.Request.Method)
	if err != nil {
		response.Error(c, err)
		return
	}

	identities, err := h.resources.Identities(ctx, facilitator.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	proof := c.GetHeader(x402.PaymentProofHeader)
	if proof == "" {
		if res.AccessTTLSeconds > 0 && h.codec.Verify(access.GrantFromRequest(c.Request, res.ID), res.ID) {
			writeOutcome(c, h.orchestrator.ServeEntitled(ctx, res, originRequest(c)))
			return
		}
		req, err := x402.BuildRequirements(res, canonicalResourceURL(c, res), identities)
		if err != nil {
			response.Error(c, err)
			return
		}
		metrics.PaymentChallenges.WithLabelValues(res.Network).Inc()
		c.JSON(http.StatusPaymentRequired, x402.NewChallenge(
			*req,
			"payment_required",
			fmt.Sprintf("Payment of %s (atomic units) on %s required to access this resource", req.MaxAmountRequired, req.Network),
		))
		return
	}

	outcome, err := h.orchestrator.Process(ctx, res, canonicalResourceURL(c, res), identities, proof, originRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	writeOutcome(c, outcome)
}

// Requirements answers GET /u/:slug/requirements for API consumers that want
// the descriptor without triggering a 402.
func (h *GatewayHandler) Requirements(c *gin.Context) {
	ctx := c.Request.Context()

	facilitator := facilitatorFrom(c)
	if facilitator == nil {
		response.Error(c, apperrors.ErrResourceNotFound)
		return
	}

	res, err := h.resources.ResolveEndpoint(ctx, c.Param("slug"), facilitator.ID, "")
	if err != nil {
		response.Error(c, err)
		return
	}

	identities, err := h.resources.Identities(ctx, facilitator.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	req, err := x402.BuildRequirements(res, canonicalResourceURL(c, res), identities)
	if err != nil {
		response.Error(c, err)
		return
	}

	aux := chains.AuxiliaryData{RPCEndpoint: h.rpcEndpoints[res.Network]}
	if req.Extra != nil {
		aux.FeePayer = req.Extra["feePayer"]
	}

	c.JSON(http.StatusOK, gin.H{
		"paymentRequirements": []x402.PaymentRequirements{*req},
		"facilitatorUrl":      h.facilitatorURL,
		"chainAux":            aux,
	})
}
