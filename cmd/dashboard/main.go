package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/medup/billing-dashboard-go/internal/config"
	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/handler"
	"github.com/medup/billing-dashboard-go/internal/infra/asaas"
	"github.com/medup/billing-dashboard-go/internal/infra/cache"
	"github.com/medup/billing-dashboard-go/internal/infra/efi"
	"github.com/medup/billing-dashboard-go/internal/infra/observability"
	"github.com/medup/billing-dashboard-go/internal/infra/resilience"
	"github.com/medup/billing-dashboard-go/internal/port"
	"github.com/medup/billing-dashboard-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("asaas_base_url", cfg.AsaasBaseURL),
		zap.Bool("efi_configured", cfg.EfiConfigured()),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
	)

	if cfg.AsaasAPIKey == "" {
		logger.Warn("ASAAS_API_KEY is empty, primary provider calls will fail")
	}

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "billing-dashboard")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	detalhesCache := cache.New[*domain.DetalhesCliente](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}

	// --- Provider clients ---
	asaasClient := asaas.NewClient(
		cfg.AsaasBaseURL,
		cfg.AsaasAPIKey,
		cfg.HTTPTimeout,
		resilience.NewCircuitBreaker("asaas"),
		resilienceCfg,
		logger,
	)

	var efiClient port.EfiFetcher
	if cfg.EfiConfigured() {
		efiClient = efi.NewClient(
			cfg.EfiBaseURL,
			cfg.EfiClientID,
			cfg.EfiClientSecret,
			cfg.HTTPTimeout,
			resilience.NewCircuitBreaker("efi"),
			resilienceCfg,
			logger,
		)
	} else {
		logger.Info("efi credentials not configured, running on primary data only")
	}

	// --- Services ---
	limits := service.Limits{
		Clientes:  cfg.ClientesLimit,
		Cobrancas: cfg.CobrancasLimit,
		Historico: cfg.HistoricoLimit,
	}

	statusSvc := service.NewStatusService(asaasClient, efiClient, detalhesCache, limits, metrics, logger)
	providerSvc := service.NewProviderService(asaasClient, efiClient, limits, logger)
	authSvc := service.NewAuthService(cfg.JWTSecret, cfg.TokenTTL, cfg.AdminUser, cfg.AdminPassword, cfg.AdminPasswordHash, logger)

	// --- Router ---
	router := handler.NewRouter(statusSvc, providerSvc, authSvc, cfg, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
