package handler

import (
	"net/http"

	"github.com/medup/billing-dashboard-go/internal/config"
	"github.com/medup/billing-dashboard-go/internal/infra/observability"
	"github.com/medup/billing-dashboard-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Everything under /api requires a bearer token except login, logout
// and the health check.
func NewRouter(
	statusSvc *service.StatusService,
	providerSvc *service.ProviderService,
	authSvc *service.AuthService,
	cfg *config.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: cfg.CORSCredentials,
	}))
	r.Use(rateLimiter(cfg))
	r.Use(countRequests(metrics))

	// --- Operational endpoints ---
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/login", loginHandler(authSvc, logger))
		r.Post("/logout", logoutHandler(logger))
		r.Get("/health", healthHandler(metrics))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))

			// Consolidated view
			r.Get("/status-clientes", statusClientesHandler(statusSvc, logger))
			r.Get("/status-clientes/view", statusClientesViewHandler(statusSvc, logger))
			r.Get("/cliente-detalhes/{clienteId}", clienteDetalhesHandler(statusSvc, logger))

			// Raw primary-provider listings
			r.Get("/clientes", clientesHandler(providerSvc, logger))
			r.Get("/cobrancas", cobrancasHandler(providerSvc, logger))
			r.Get("/asaas-historico", asaasHistoricoHandler(providerSvc, logger))

			// Raw secondary-provider listings
			r.Get("/efi-cobrancas", efiHandler(providerSvc, providerSvc.ListEfiBoletos, logger))
			r.Get("/efi-carnes", efiHandler(providerSvc, providerSvc.ListEfiCarnes, logger))
			r.Get("/efi-assinaturas", efiHandler(providerSvc, providerSvc.ListEfiAssinaturas, logger))
			r.Get("/efi-links", efiHandler(providerSvc, providerSvc.ListEfiLinks, logger))
		})
	})

	return r
}

// rateLimiter applies an IP-based limit to everything except the
// health check and the heartbeat, which monitors hit continuously.
func rateLimiter(cfg *config.Config) func(http.Handler) http.Handler {
	limit := httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow)
	return func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/health" || r.URL.Path == "/ping" {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

// countRequests feeds the success/error counters behind the health
// payload.
func countRequests(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() >= 500 {
				metrics.IncrRequest("error")
			} else {
				metrics.IncrRequest("success")
			}
		})
	}
}
