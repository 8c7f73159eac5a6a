package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/rawgroundbeef/openfacilitator/internal/services"
	"github.com/rawgroundbeef/openfacilitator/pkg/response"
)

// CtxFacilitatorKey is the gin context key holding the resolved tenant.
const CtxFacilitatorKey = "facilitator"

// Tenant resolves the owning facilitator from the request host and aborts
// with 404 when no tenant matches.
func Tenant(resources *services.ResourceService, defaultSlug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		facilitator, err := resources.FacilitatorByHost(c.Request.Context(), c.Request.Host, defaultSlug)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(CtxFacilitatorKey, facilitator)
		c.Next()
	}
}
