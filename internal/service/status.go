package service

import (
	"context"
	"fmt"
	"time"

	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/infra/observability"
	"github.com/medup/billing-dashboard-go/internal/port"
	"github.com/medup/billing-dashboard-go/internal/reconcile"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/status")

// Historical charges are fetched this far back, both for the
// consolidated view and the per-customer detail.
const historicoMeses = 6

// Limits bundles the fetch sizes for the consolidated view.
type Limits struct {
	Clientes  int
	Cobrancas int
	Historico int
}

// StatusService orchestrates both providers and produces the
// consolidated customer status list and the per-customer detail.
type StatusService struct {
	asaas   port.AsaasFetcher
	efi     port.EfiFetcher // nil when the secondary provider is not configured
	cache   port.Cache[*domain.DetalhesCliente]
	limits  Limits
	metrics *observability.Metrics
	logger  *zap.Logger

	now func() time.Time
}

// NewStatusService creates the status service. Pass a nil EfiFetcher
// when the secondary provider credentials are absent.
func NewStatusService(
	asaas port.AsaasFetcher,
	efi port.EfiFetcher,
	cache port.Cache[*domain.DetalhesCliente],
	limits Limits,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *StatusService {
	return &StatusService{
		asaas:   asaas,
		efi:     efi,
		cache:   cache,
		limits:  limits,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// GetStatusClientes builds the consolidated list. The three primary
// fetches run concurrently and are all-or-nothing: any failure fails
// the request. The secondary fetch is best-effort: a failure is logged
// and the merge proceeds without boletos.
func (s *StatusService) GetStatusClientes(ctx context.Context) ([]*domain.ClienteStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "StatusService.GetStatusClientes")
	defer span.End()

	runID := uuid.NewString()
	span.SetAttributes(attribute.String("run.id", runID))

	start := s.now()
	defer func() {
		s.metrics.RecordRequestDuration("status_clientes", time.Since(start))
	}()

	var (
		clientes   *domain.Pagina[domain.Cliente]
		cobrancas  *domain.Pagina[domain.Cobranca]
		historicas *domain.Pagina[domain.Cobranca]
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.asaas.GetClientes(gCtx, s.limits.Clientes)
		if err != nil {
			return fmt.Errorf("fetch clientes: %w", err)
		}
		clientes = p
		return nil
	})

	g.Go(func() error {
		p, err := s.asaas.GetCobrancas(gCtx, port.CobrancaParams{Limit: s.limits.Cobrancas})
		if err != nil {
			return fmt.Errorf("fetch cobrancas: %w", err)
		}
		cobrancas = p
		return nil
	})

	g.Go(func() error {
		p, err := s.asaas.GetCobrancas(gCtx, port.CobrancaParams{
			DateCreatedGE: s.historicoDesde(),
			Limit:         s.limits.Historico,
		})
		if err != nil {
			return fmt.Errorf("fetch cobrancas historicas: %w", err)
		}
		historicas = p
		return nil
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("asaas")
		s.logger.Error("status: primary provider fetch failed",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return nil, err
	}

	boletos := s.fetchBoletos(ctx, runID)

	unicas := reconcile.DedupCobrancas(cobrancas.Data, historicas.Data)
	resultado := reconcile.Merge(clientes.Data, unicas, boletos, s.now())

	s.metrics.SetClientesReconciled(len(resultado))
	s.metrics.AddCobrancasFolded(domain.FonteAsaas, len(unicas))
	s.metrics.AddCobrancasFolded(domain.FonteEfi, len(boletos))

	s.logger.Info("status: consolidated list built",
		zap.String("run_id", runID),
		zap.Int("clientes", len(clientes.Data)),
		zap.Int("cobrancas_unicas", len(unicas)),
		zap.Int("boletos_efi", len(boletos)),
		zap.Int("consolidados", len(resultado)),
	)
	return resultado, nil
}

// fetchBoletos pulls the secondary provider's boletos. Failures are
// absorbed: the dashboard stays up on primary data alone.
func (s *StatusService) fetchBoletos(ctx context.Context, runID string) []domain.Boleto {
	if s.efi == nil {
		s.logger.Debug("status: secondary provider not configured, skipping")
		return nil
	}

	page, err := s.efi.GetBoletos(ctx, "")
	if err != nil {
		s.metrics.IncrExternalError("efi")
		s.logger.Warn("status: secondary provider unavailable, continuing without it",
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return nil
	}
	return page.Data
}

// GetClienteDetalhes fetches one customer's charges from the last six
// months and derives the summary shown in the detail modal. Responses
// are cached per customer for a short TTL.
func (s *StatusService) GetClienteDetalhes(ctx context.Context, clienteID string) (*domain.DetalhesCliente, error) {
	ctx, span := tracer.Start(ctx, "StatusService.GetClienteDetalhes")
	defer span.End()
	span.SetAttributes(attribute.String("cliente.id", clienteID))

	if clienteID == "" {
		return nil, &domain.ErrValidation{Field: "clienteId", Message: "obrigatório"}
	}

	cacheKey := fmt.Sprintf("detalhes:%s", clienteID)
	if cached, ok := s.cache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("detalhes")
		return cached, nil
	}
	s.metrics.IncrCacheMiss("detalhes")

	page, err := s.asaas.GetCobrancas(ctx, port.CobrancaParams{
		Customer:      clienteID,
		DateCreatedGE: s.historicoDesde(),
		Limit:         s.limits.Cobrancas,
	})
	if err != nil {
		s.metrics.IncrExternalError("asaas")
		return nil, fmt.Errorf("fetch cobrancas do cliente: %w", err)
	}

	resumo := reconcile.Resumir(page.Data)
	detalhes := &domain.DetalhesCliente{
		ClienteID: clienteID,
		Cobrancas: page.Data,
		Resumo:    &resumo,
	}
	s.cache.Set(cacheKey, detalhes)
	return detalhes, nil
}

func (s *StatusService) historicoDesde() string {
	return s.now().AddDate(0, -historicoMeses, 0).Format("2006-01-02")
}
