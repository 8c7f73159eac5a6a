package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rawgroundbeef/openfacilitator/internal/middleware"
	"github.com/rawgroundbeef/openfacilitator/internal/models"
	"github.com/rawgroundbeef/openfacilitator/internal/settlement"
)

// facilitatorFrom pulls the tenant resolved by the Tenant middleware.
func facilitatorFrom(c *gin.Context) *models.Facilitator {
	value, ok := c.Get(middleware.CtxFacilitatorKey)
	if !ok {
		return nil
	}
	facilitator, _ := value.(*models.Facilitator)
	return facilitator
}

// canonicalResourceURL is the stable URL a payer is shown for a resource. It
// is derived from the resource, not the request path, so the challenge and
// the settlement re-derivation agree byte for byte.
func canonicalResourceURL(c *gin.Context, res *models.PaidResource) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	if res.Variant == models.VariantEndpoint {
		return fmt.Sprintf("%s://%s/u/%s", scheme, c.Request.Host, res.Slug)
	}
	return fmt.Sprintf("%s://%s/pay/%s", scheme, c.Request.Host, res.ID)
}

// originRequest captures the inbound request material a proxy forward needs.
func originRequest(c *gin.Context) *settlement.OriginRequest {
	return &settlement.OriginRequest{
		Method:      c.Request.Method,
		Headers:     c.Request.Header,
		Body:        c.Request.Body,
		ContentType: c.ContentType(),
	}
}

// writeOutcome renders a settlement outcome onto the HTTP response.
func writeOutcome(c *gin.Context, outcome *settlement.Outcome) {
	if outcome.Cookie != nil {
		http.SetCookie(c.Writer, outcome.Cookie)
	}
	if outcome.TransactionHash != "" {
		c.Header(settlement.TransactionHeader, outcome.TransactionHash)
	}

	if outcome.RawBody != nil {
		contentType := outcome.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(outcome.Status, contentType, outcome.RawBody)
		return
	}

	c.JSON(outcome.Status, outcome.Body)
}
