package handler

import (
	"context"
	"net/http"

	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Listagens brutas do provedor primário
// ============================================================

func clientesHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/clientes")
		defer span.End()

		page, err := svc.ListClientes(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func cobrancasHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/cobrancas")
		defer span.End()

		page, err := svc.ListCobrancas(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

func asaasHistoricoHandler(svc *service.ProviderService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/asaas-historico")
		defer span.End()

		page, err := svc.ListHistorico(ctx, r.URL.Query().Get("status"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}

// ============================================================
// Listagens brutas do provedor secundário
// ============================================================

type efiUnconfiguredResponse struct {
	Data    []domain.Boleto `json:"data"`
	Message string          `json:"message"`
}

// efiHandler serves one secondary-provider listing. When the provider
// is not configured the route answers an empty list with a message
// instead of an error, so the front end degrades quietly.
func efiHandler(svc *service.ProviderService, list func(context.Context) (*domain.Pagina[domain.Boleto], error), logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/efi-*")
		defer span.End()

		if !svc.EfiConfigurado() {
			writeJSON(w, http.StatusOK, efiUnconfiguredResponse{
				Data:    []domain.Boleto{},
				Message: "Credenciais da Efí não configuradas",
			})
			return
		}

		page, err := list(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, page)
	}
}
