package main

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rawgroundbeef/openfacilitator/internal/access"
	"github.com/rawgroundbeef/openfacilitator/internal/api"
	"github.com/rawgroundbeef/openfacilitator/internal/app"
	"github.com/rawgroundbeef/openfacilitator/internal/database"
	"github.com/rawgroundbeef/openfacilitator/internal/facilitator"
	"github.com/rawgroundbeef/openfacilitator/internal/proxy"
	"github.com/rawgroundbeef/openfacilitator/internal/services"
	"github.com/rawgroundbeef/openfacilitator/internal/settlement"
	"github.com/rawgroundbeef/openfacilitator/internal/webhooks"
	"github.com/rawgroundbeef/openfacilitator/pkg/logger"
)

// runtimeStack bundles the long-lived collaborators behind the HTTP server.
type runtimeStack struct {
	DB       *gorm.DB
	Webhooks *webhooks.Dispatcher
	Router   *gin.Engine
}

// buildRuntime initialises storage, the payment engine, and the HTTP router.
func buildRuntime(cfg *app.Config) (*runtimeStack, error) {
	db, err := initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	resources, err := services.NewResourceService(db)
	if err != nil {
		return nil, fmt.Errorf("initialise resource service: %w", err)
	}

	payments, err := services.NewPaymentService(db)
	if err != nil {
		return nil, fmt.Errorf("initialise payment service: %w", err)
	}

	codec, err := access.NewCodec(access.CodecConfig{Secret: cfg.Access.SigningSecret})
	if err != nil {
		return nil, fmt.Errorf("initialise access codec: %w", err)
	}

	client := facilitator.NewRemoteClient(cfg.Facilitator.URL, cfg.Facilitator.Timeout)
	forwarder := proxy.NewForwarder(cfg.Proxy.Timeout)
	dispatcher := webhooks.NewDispatcher(cfg.Webhooks.Timeout, cfg.Webhooks.MaxAttempts)

	orchestrator, err := settlement.NewOrchestrator(settlement.Config{
		Resources:     resources,
		Payments:      payments,
		Client:        client,
		Codec:         codec,
		Forwarder:     forwarder,
		Webhooks:      dispatcher,
		SecureCookies: cfg.Server.Production,
	})
	if err != nil {
		return nil, fmt.Errorf("initialise settlement orchestrator: %w", err)
	}

	router, err := api.NewRouter(api.Dependencies{
		DB:           db,
		Resources:    resources,
		Orchestrator: orchestrator,
		Codec:        codec,
		Facilitator:  client,
	}, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	return &runtimeStack{DB: db, Webhooks: dispatcher, Router: router}, nil
}

// Close releases runtime resources in reverse dependency order.
func (s *runtimeStack) Close(log *zap.Logger) {
	if s == nil {
		return
	}
	if s.DB != nil {
		sqlDB, err := s.DB.DB()
		if err != nil {
			log.Warn("database close skipped", zap.Error(err))
			return
		}
		if err := sqlDB.Close(); err != nil {
			log.Warn("database close failed", zap.Error(err))
		}
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := database.Config{
		Driver:   strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:     strings.TrimSpace(cfg.Database.Path),
		DSN:      strings.TrimSpace(cfg.Database.DSN),
		Host:     strings.TrimSpace(cfg.Database.Host),
		Port:     cfg.Database.Port,
		User:     strings.TrimSpace(cfg.Database.User),
		Password: cfg.Database.Password,
		Name:     strings.TrimSpace(cfg.Database.Name),
	}
	if dbCfg.Driver == "" {
		dbCfg.Driver = "sqlite"
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}
