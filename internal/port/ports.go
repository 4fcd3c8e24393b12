// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service
// layer from the concrete provider clients.
package port

import (
	"context"

	"github.com/medup/billing-dashboard-go/internal/domain"
)

// CobrancaParams narrows a primary-provider payment query. Zero values
// disable each criterion.
type CobrancaParams struct {
	Status        string // OVERDUE, PENDING, RECEIVED, ...
	Customer      string
	DateCreatedGE string // YYYY-MM-DD, maps to dateCreated[ge]
	DateCreatedLE string // YYYY-MM-DD, maps to dateCreated[le]
	Limit         int
}

// AsaasFetcher retrieves customers and charges from the primary provider.
type AsaasFetcher interface {
	GetClientes(ctx context.Context, limit int) (*domain.Pagina[domain.Cliente], error)
	GetCobrancas(ctx context.Context, params CobrancaParams) (*domain.Pagina[domain.Cobranca], error)
}

// EfiFetcher retrieves charge records from the secondary provider.
type EfiFetcher interface {
	GetBoletos(ctx context.Context, status string) (*domain.Pagina[domain.Boleto], error)
	GetCarnes(ctx context.Context) (*domain.Pagina[domain.Boleto], error)
	GetAssinaturas(ctx context.Context) (*domain.Pagina[domain.Boleto], error)
	GetLinks(ctx context.Context) (*domain.Pagina[domain.Boleto], error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
