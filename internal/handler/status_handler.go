package handler

import (
	"net/http"
	"strconv"

	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/service"
	"github.com/medup/billing-dashboard-go/internal/view"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Consolidado — GET /api/status-clientes
// ============================================================

func statusClientesHandler(svc *service.StatusService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/status-clientes")
		defer span.End()

		resultado, err := svc.GetStatusClientes(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		logger.Info("consolidated status served",
			zap.Int("registros", len(resultado)),
			zap.String("user", UsernameFromContext(ctx)),
		)
		writeJSON(w, http.StatusOK, resultado)
	}
}

// ============================================================
// Tabela montada — GET /api/status-clientes/view
// ============================================================

// statusClientesViewHandler runs the presentation pipeline server-side:
// filters, sort and page come in as query parameters and the response
// carries the page plus pagination metadata and the summary cards.
func statusClientesViewHandler(svc *service.StatusService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/status-clientes/view")
		defer span.End()

		lista, err := svc.GetStatusClientes(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		q := r.URL.Query()
		filtros := view.Filtros{
			Nome:                q.Get("nome"),
			CpfCnpj:             q.Get("cpfCnpj"),
			Status:              q.Get("status"),
			Ativo:               q.Get("ativo"),
			Fonte:               q.Get("fonte"),
			InadimplenciaMin:    parseFloatParam(q.Get("inadimplenciaMin")),
			ValorDevidoMin:      parseFloatParam(q.Get("valorDevidoMin")),
			ValorPagoMin:        parseFloatParam(q.Get("valorPagoMin")),
			UltimoPagamentoMin:  domain.Data(q.Get("ultimoPagamentoMin")),
			UltimoVencimentoMin: domain.Data(q.Get("ultimoVencimentoMin")),
			UltimaAtividadeMin:  domain.Data(q.Get("ultimaAtividadeMin")),
		}

		ordenacao := view.Ordenacao{
			Campo:   q.Get("ordenarPor"),
			Direcao: q.Get("direcao"),
		}
		if ordenacao.Campo != "" && ordenacao.Direcao == "" {
			ordenacao.Direcao = view.Ascendente
		}

		pagina := 1
		if v := q.Get("pagina"); v != "" {
			if p, err := strconv.Atoi(v); err == nil {
				pagina = p
			}
		}

		writeJSON(w, http.StatusOK, view.Montar(lista, filtros, ordenacao, pagina))
	}
}

func parseFloatParam(v string) float64 {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// ============================================================
// Detalhe — GET /api/cliente-detalhes/{clienteId}
// ============================================================

func clienteDetalhesHandler(svc *service.StatusService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/cliente-detalhes/{clienteId}")
		defer span.End()

		clienteID := chi.URLParam(r, "clienteId")
		span.SetAttributes(attribute.String("cliente.id", clienteID))

		detalhes, err := svc.GetClienteDetalhes(ctx, clienteID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detalhes)
	}
}
