package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/rawgroundbeef/openfacilitator/internal/access"
	"github.com/rawgroundbeef/openfacilitator/internal/app"
	"github.com/rawgroundbeef/openfacilitator/internal/facilitator"
	"github.com/rawgroundbeef/openfacilitator/internal/handlers"
	"github.com/rawgroundbeef/openfacilitator/internal/middleware"
	"github.com/rawgroundbeef/openfacilitator/internal/services"
	"github.com/rawgroundbeef/openfacilitator/internal/settlement"
)

// Dependencies carries the long-lived collaborators the router wires into
// handlers.
type Dependencies struct {
	DB           *gorm.DB
	Resources    *services.ResourceService
	Orchestrator *settlement.Orchestrator
	Codec        *access.Codec
	Facilitator  facilitator.Client
}

// NewRouter assembles the gin engine: middleware chain, payment routes, the
// facilitator passthrough, and operational endpoints.
func NewRouter(deps Dependencies, cfg *app.Config) (*gin.Engine, error) {
	if deps.DB == nil || deps.Resources == nil || deps.Orchestrator == nil || deps.Codec == nil {
		return nil, errors.New("api: missing router dependencies")
	}
	if cfg == nil {
		return nil, errors.New("api: config is required")
	}

	if cfg.Server.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	router.GET("/healthz", handlers.Health(deps.DB))
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		router.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	rpcEndpoints := make(map[string]string, len(cfg.Chains))
	for network, chain := range cfg.Chains {
		rpcEndpoints[network] = chain.RPCEndpoint
	}

	pay := handlers.NewPayHandler(deps.Resources, deps.Orchestrator, deps.Codec, cfg.Facilitator.URL, rpcEndpoints)
	gateway := handlers.NewGatewayHandler(deps.Resources, deps.Orchestrator, deps.Codec, cfg.Facilitator.URL, rpcEndpoints)

	passthrough, err := handlers.NewFacilitatorHandler(deps.Facilitator)
	if err != nil {
		return nil, err
	}

	tenant := middleware.Tenant(deps.Resources, cfg.Facilitator.DefaultTenant)

	paid := router.Group("/", tenant)
	{
		paid.GET("/pay/:link", pay.Handle)
		paid.GET("/pay/:link/requirements", pay.Requirements)
		paid.POST("/pay/:link/complete", pay.Complete)

		paid.Any("/u/:slug", gateway.Handle)
		paid.GET("/u/:slug/requirements", gateway.Requirements)
	}

	router.POST("/verify", passthrough.Verify)
	router.POST("/settle", passthrough.Settle)

	return router, nil
}
