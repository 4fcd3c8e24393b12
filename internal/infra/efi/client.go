// Package efi implements the secondary-provider client. Efí uses an
// OAuth2 client-credentials grant; the bearer token is cached in
// process memory and refreshed under a mutex shortly before expiry.
package efi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/infra/resilience"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("efi")

// Refresh the token this long before its actual expiry.
const tokenSlack = 30 * time.Second

// Client fetches boletos, carnês, assinaturas and payment links from
// the Efí API.
type Client struct {
	rest         *resty.Client
	clientID     string
	clientSecret string
	cb           *gobreaker.CircuitBreaker
	cfg          resilience.Config
	logger       *zap.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time

	now func() time.Time
}

// NewClient creates an Efí client. The token is acquired lazily on the
// first authenticated call.
func NewClient(baseURL, clientID, clientSecret string, timeout time.Duration, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	rest := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		rest:         rest,
		clientID:     clientID,
		clientSecret: clientSecret,
		cb:           cb,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a valid bearer token, refreshing it when missing or
// expired. The mutex covers the whole refresh path so concurrent
// requests never race to fetch two tokens.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	ctx, span := tracer.Start(ctx, "EfiClient.authorize")
	defer span.End()

	auth := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Authorization", "Basic "+auth).
		SetBody(map[string]string{"grant_type": "client_credentials"}).
		Post("/v1/authorize")
	if err != nil {
		return "", fmt.Errorf("efi authorize: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("efi authorize returned status %d", resp.StatusCode())
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.Body(), &tok); err != nil {
		return "", fmt.Errorf("decode efi token: %w", err)
	}

	c.accessToken = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSlack)

	c.logger.Debug("efi: token refreshed",
		zap.Time("expires_at", c.tokenExpiry),
	)
	return c.accessToken, nil
}

// GetBoletos fetches boletos, optionally filtered by provider status
// (VENCIDO, PENDENTE, PAGO).
func (c *Client) GetBoletos(ctx context.Context, status string) (*domain.Pagina[domain.Boleto], error) {
	query := map[string]string{}
	if status != "" {
		query["status"] = status
	}
	return c.list(ctx, "/v1/boletos", query)
}

// GetCarnes fetches carnês.
func (c *Client) GetCarnes(ctx context.Context) (*domain.Pagina[domain.Boleto], error) {
	return c.list(ctx, "/v1/carnes", nil)
}

// GetAssinaturas fetches assinaturas.
func (c *Client) GetAssinaturas(ctx context.Context) (*domain.Pagina[domain.Boleto], error) {
	return c.list(ctx, "/v1/assinaturas", nil)
}

// GetLinks fetches payment links.
func (c *Client) GetLinks(ctx context.Context) (*domain.Pagina[domain.Boleto], error) {
	return c.list(ctx, "/v1/links", nil)
}

func (c *Client) list(ctx context.Context, path string, query map[string]string) (*domain.Pagina[domain.Boleto], error) {
	ctx, span := tracer.Start(ctx, "EfiClient.list")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	var page domain.Pagina[domain.Boleto]

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			tok, err := c.token(ctx)
			if err != nil {
				return err
			}

			resp, err := c.rest.R().
				SetContext(ctx).
				SetHeader("Authorization", "Bearer "+tok).
				SetQueryParams(query).
				Get(path)
			if err != nil {
				return err
			}
			if resp.StatusCode() != http.StatusOK {
				c.logger.Warn("efi: non-200 response",
					zap.String("path", path),
					zap.Int("status", resp.StatusCode()),
				)
				return fmt.Errorf("efi returned status %d", resp.StatusCode())
			}

			var raw struct {
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(resp.Body(), &raw); err != nil {
				return fmt.Errorf("decode efi response: %w", err)
			}

			page.Data = nil
			if len(raw.Data) > 0 && string(raw.Data) != "null" {
				if err := json.Unmarshal(raw.Data, &page.Data); err != nil {
					c.logger.Warn("efi: unexpected data shape, treating as empty",
						zap.String("path", path),
						zap.Error(err),
					)
					page.Data = nil
				}
			}
			page.TotalCount = len(page.Data)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &domain.ErrCircuitOpen{Service: "efi" + path}
		}
		return nil, &domain.ErrExternalService{Service: "efi" + path, Err: err}
	}

	return &page, nil
}
