package service

import (
	"context"
	"time"

	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var providerTracer = otel.Tracer("service/providers")

// ProviderService exposes the raw provider listings behind the
// inspection routes, without any reconciliation.
type ProviderService struct {
	asaas  port.AsaasFetcher
	efi    port.EfiFetcher // nil when not configured
	limits Limits
	logger *zap.Logger

	now func() time.Time
}

// NewProviderService creates the passthrough service.
func NewProviderService(asaas port.AsaasFetcher, efi port.EfiFetcher, limits Limits, logger *zap.Logger) *ProviderService {
	return &ProviderService{
		asaas:  asaas,
		efi:    efi,
		limits: limits,
		logger: logger,
		now:    time.Now,
	}
}

// EfiConfigurado reports whether the secondary provider is wired.
func (p *ProviderService) EfiConfigurado() bool {
	return p.efi != nil
}

// ListClientes returns the raw customer listing.
func (p *ProviderService) ListClientes(ctx context.Context) (*domain.Pagina[domain.Cliente], error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.ListClientes")
	defer span.End()

	return p.asaas.GetClientes(ctx, p.limits.Clientes)
}

// ListCobrancas returns the raw current-charge listing.
func (p *ProviderService) ListCobrancas(ctx context.Context) (*domain.Pagina[domain.Cobranca], error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.ListCobrancas")
	defer span.End()

	return p.asaas.GetCobrancas(ctx, port.CobrancaParams{Limit: p.limits.Cobrancas})
}

// ListHistorico returns historical charges. With a status filter the
// query narrows to that status; otherwise it covers the last six
// months by creation date.
func (p *ProviderService) ListHistorico(ctx context.Context, status string) (*domain.Pagina[domain.Cobranca], error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.ListHistorico")
	defer span.End()

	params := port.CobrancaParams{Limit: p.limits.Cobrancas}
	if status != "" {
		params.Status = status
	} else {
		params.DateCreatedGE = p.now().AddDate(0, -historicoMeses, 0).Format("2006-01-02")
	}

	p.logger.Debug("listing historical charges",
		zap.String("status", params.Status),
		zap.String("date_created_ge", params.DateCreatedGE),
	)
	return p.asaas.GetCobrancas(ctx, params)
}

// ListEfiBoletos returns the raw boleto listing from the secondary
// provider.
func (p *ProviderService) ListEfiBoletos(ctx context.Context) (*domain.Pagina[domain.Boleto], error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.ListEfiBoletos")
	defer span.End()

	return p.efi.GetBoletos(ctx, "")
}

// ListEfiCarnes returns the raw carnê listing.
func (p *ProviderService) ListEfiCarnes(ctx context.Context) (*domain.Pagina[domain.Boleto], error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.ListEfiCarnes")
	defer span.End()

	return p.efi.GetCarnes(ctx)
}

// ListEfiAssinaturas returns the raw assinatura listing.
func (p *ProviderService) ListEfiAssinaturas(ctx context.Context) (*domain.Pagina[domain.Boleto], error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.ListEfiAssinaturas")
	defer span.End()

	return p.efi.GetAssinaturas(ctx)
}

// ListEfiLinks returns the raw payment-link listing.
func (p *ProviderService) ListEfiLinks(ctx context.Context) (*domain.Pagina[domain.Boleto], error) {
	ctx, span := providerTracer.Start(ctx, "ProviderService.ListEfiLinks")
	defer span.End()

	return p.efi.GetLinks(ctx)
}
