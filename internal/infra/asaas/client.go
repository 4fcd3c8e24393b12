// Package asaas implements the primary-provider client. The Asaas API
// paginates with limit/offset and a hasMore flag, capping each page at
// 100 records; list calls here accumulate pages until the requested
// limit is reached or the provider runs out.
package asaas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/infra/resilience"
	"github.com/medup/billing-dashboard-go/internal/port"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("asaas")

// The provider rejects page sizes above 100.
const maxPageSize = 100

// Client fetches customers and charges from the Asaas API.
type Client struct {
	rest   *resty.Client
	cb     *gobreaker.CircuitBreaker
	cfg    resilience.Config
	logger *zap.Logger
}

// NewClient creates an Asaas client. Authentication uses the provider's
// access_token header on every request.
func NewClient(baseURL, apiKey string, timeout time.Duration, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("access_token", apiKey).
		SetHeader("Content-Type", "application/json")

	return &Client{
		rest:   rest,
		cb:     cb,
		cfg:    cfg,
		logger: logger,
	}
}

// rawPage is the provider's list envelope with the payload left raw, so
// an unexpected (non-array) data field degrades to an empty page
// instead of failing the whole merge.
type rawPage struct {
	Data    json.RawMessage `json:"data"`
	HasMore bool            `json:"hasMore"`
}

// GetClientes fetches up to limit customers, walking pages.
func (c *Client) GetClientes(ctx context.Context, limit int) (*domain.Pagina[domain.Cliente], error) {
	ctx, span := tracer.Start(ctx, "AsaasClient.GetClientes")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	page, err := fetchAll[domain.Cliente](ctx, c, "/customers", nil, limit)
	if err != nil {
		return nil, wrapFetchErr("asaas/customers", err)
	}
	return page, nil
}

// GetCobrancas fetches up to params.Limit charges matching the given
// criteria, walking pages.
func (c *Client) GetCobrancas(ctx context.Context, params port.CobrancaParams) (*domain.Pagina[domain.Cobranca], error) {
	ctx, span := tracer.Start(ctx, "AsaasClient.GetCobrancas")
	defer span.End()
	span.SetAttributes(
		attribute.String("status", params.Status),
		attribute.String("customer", params.Customer),
		attribute.Int("limit", params.Limit),
	)

	query := map[string]string{}
	if params.Status != "" {
		query["status"] = params.Status
	}
	if params.Customer != "" {
		query["customer"] = params.Customer
	}
	if params.DateCreatedGE != "" {
		query["dateCreated[ge]"] = params.DateCreatedGE
	}
	if params.DateCreatedLE != "" {
		query["dateCreated[le]"] = params.DateCreatedLE
	}

	page, err := fetchAll[domain.Cobranca](ctx, c, "/payments", query, params.Limit)
	if err != nil {
		return nil, wrapFetchErr("asaas/payments", err)
	}
	return page, nil
}

// wrapFetchErr keeps an open breaker distinguishable from a plain
// provider failure so the handler layer can answer 503 instead of 500.
func wrapFetchErr(service string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: service}
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}

// fetchAll walks the provider's offset/limit pagination accumulating
// records until limit is reached or hasMore turns false. The whole walk
// runs under the circuit breaker so a flapping provider trips once, not
// per page.
func fetchAll[T any](ctx context.Context, c *Client, path string, query map[string]string, limit int) (*domain.Pagina[T], error) {
	if limit <= 0 {
		limit = maxPageSize
	}

	var all []T

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			all = all[:0]
			offset := 0
			for len(all) < limit {
				pageSize := limit - len(all)
				if pageSize > maxPageSize {
					pageSize = maxPageSize
				}

				raw, err := c.getPage(ctx, path, query, pageSize, offset)
				if err != nil {
					return err
				}

				items := decodeItems[T](raw.Data, c.logger, path)
				if len(items) == 0 {
					break
				}
				all = append(all, items...)
				offset += len(items)
				if !raw.HasMore {
					break
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return &domain.Pagina[T]{
		Data:       all,
		HasMore:    len(all) >= limit,
		TotalCount: len(all),
	}, nil
}

func (c *Client) getPage(ctx context.Context, path string, query map[string]string, limit, offset int) (*rawPage, error) {
	req := c.rest.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetQueryParam("offset", strconv.Itoa(offset))

	resp, err := req.Get(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("asaas: non-200 response",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return nil, fmt.Errorf("asaas returned status %d", resp.StatusCode())
	}

	var raw rawPage
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("decode asaas response: %w", err)
	}
	return &raw, nil
}

// decodeItems coerces an absent or malformed data field to an empty
// slice rather than failing the request.
func decodeItems[T any](raw json.RawMessage, logger *zap.Logger, path string) []T {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		logger.Warn("asaas: unexpected data shape, treating as empty",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}
	return items
}
