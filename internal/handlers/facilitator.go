package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rawgroundbeef/openfacilitator/internal/facilitator"
	"github.com/rawgroundbeef/openfacilitator/internal/x402"
	apperrors "github.com/rawgroundbeef/openfacilitator/pkg/errors"
	"github.com/rawgroundbeef/openfacilitator/pkg/response"
)

// FacilitatorHandler exposes the verify and settle operations directly, so
// resource servers running their own middleware can use this deployment as
// their facilitator.
type FacilitatorHandler struct {
	client facilitator.Client
}

// NewFacilitatorHandler constructs the passthrough handler.
func NewFacilitatorHandler(client facilitator.Client) (*FacilitatorHandler, error) {
	if client == nil {
		return nil, errors.New("facilitator handler: client is required")
	}
	return &FacilitatorHandler{client: client}, nil
}

// facilitatorRequest is the body shared by POST /verify and POST /settle.
type facilitatorRequest struct {
	X402Version         int                      `json:"x402Version"`
	PaymentPayload      x402.PaymentPayload      `json:"paymentPayload" binding:"required"`
	PaymentRequirements x402.PaymentRequirements `json:"paymentRequirements" binding:"required"`
}

// Verify answers POST /verify.
func (h *FacilitatorHandler) Verify(c *gin.Context) {
	var req facilitatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("paymentPayload and paymentRequirements are required"))
		return
	}

	result, err := h.client.Verify(c.Request.Context(), &req.PaymentPayload, &req.PaymentRequirements)
	if err != nil {
		response.Error(c, apperrors.ErrVerificationFailed.WithInternal(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// Settle answers POST /settle.
func (h *FacilitatorHandler) Settle(c *gin.Context) {
	var req facilitatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewBadRequest("paymentPayload and paymentRequirements are required"))
		return
	}

	result, err := h.client.Settle(c.Request.Context(), &req.PaymentPayload, &req.PaymentRequirements)
	if err != nil {
		response.Error(c, apperrors.ErrSettlementFailed.WithInternal(err))
		return
	}

	c.JSON(http.StatusOK, result)
}
