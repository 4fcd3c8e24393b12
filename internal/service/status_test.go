package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/medup/billing-dashboard-go/internal/domain"
	"github.com/medup/billing-dashboard-go/internal/infra/cache"
	"github.com/medup/billing-dashboard-go/internal/infra/observability"
	"github.com/medup/billing-dashboard-go/internal/port"
	"github.com/medup/billing-dashboard-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockAsaas struct {
	clientes   *domain.Pagina[domain.Cliente]
	cobrancas  *domain.Pagina[domain.Cobranca]
	historicas *domain.Pagina[domain.Cobranca]
	porCliente *domain.Pagina[domain.Cobranca]
	err        error

	mu       sync.Mutex
	chamadas []port.CobrancaParams
}

func (m *mockAsaas) GetClientes(_ context.Context, _ int) (*domain.Pagina[domain.Cliente], error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.clientes, nil
}

func (m *mockAsaas) GetCobrancas(_ context.Context, params port.CobrancaParams) (*domain.Pagina[domain.Cobranca], error) {
	m.mu.Lock()
	m.chamadas = append(m.chamadas, params)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	switch {
	case params.Customer != "":
		return m.porCliente, nil
	case params.DateCreatedGE != "":
		return m.historicas, nil
	default:
		return m.cobrancas, nil
	}
}

type mockEfi struct {
	boletos *domain.Pagina[domain.Boleto]
	err     error
}

func (m *mockEfi) GetBoletos(_ context.Context, _ string) (*domain.Pagina[domain.Boleto], error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.boletos, nil
}

func (m *mockEfi) GetCarnes(_ context.Context) (*domain.Pagina[domain.Boleto], error) {
	return m.GetBoletos(context.Background(), "")
}

func (m *mockEfi) GetAssinaturas(_ context.Context) (*domain.Pagina[domain.Boleto], error) {
	return m.GetBoletos(context.Background(), "")
}

func (m *mockEfi) GetLinks(_ context.Context) (*domain.Pagina[domain.Boleto], error) {
	return m.GetBoletos(context.Background(), "")
}

func pagina[T any](itens ...T) *domain.Pagina[T] {
	return &domain.Pagina[T]{Data: itens, TotalCount: len(itens)}
}

func novoStatusService(asaas *mockAsaas, efi port.EfiFetcher) *service.StatusService {
	return service.NewStatusService(
		asaas,
		efi,
		cache.New[*domain.DetalhesCliente](5*time.Minute),
		service.Limits{Clientes: 1000, Cobrancas: 1000, Historico: 2000},
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

// --- Tests ---

func TestGetStatusClientes_Success(t *testing.T) {
	hoje := domain.Data(time.Now().Format("2006-01-02"))

	asaas := &mockAsaas{
		clientes: pagina(
			domain.Cliente{ID: "cus_1", Nome: "Ana"},
			domain.Cliente{ID: "cus_2", Nome: "Bruno"},
		),
		cobrancas: pagina(
			domain.Cobranca{ID: "p1", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 100, DueDate: hoje},
		),
		historicas: pagina(
			// Duplicate of p1 plus one genuinely historical charge.
			domain.Cobranca{ID: "p1", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 100, DueDate: hoje},
			domain.Cobranca{ID: "p2", Customer: "cus_2", Status: domain.CobrancaReceived, Value: 50, PaymentDate: hoje},
		),
	}
	efi := &mockEfi{boletos: pagina(
		domain.Boleto{ID: "b1", Status: domain.BoletoVencido, Valor: 30, Cliente: &domain.Pessoa{ID: "efi_1", Nome: "Carla"}},
	)}

	svc := novoStatusService(asaas, efi)

	resultado, err := svc.GetStatusClientes(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(resultado) != 3 {
		t.Fatalf("expected 3 consolidated records, got %d", len(resultado))
	}

	ana := resultado[0]
	if ana.Inadimplencia != 1 {
		t.Errorf("expected inadimplencia 1 after dedupe, got %d", ana.Inadimplencia)
	}
	if ana.ValorDevido != 100 {
		t.Errorf("expected valorDevido 100 after dedupe, got %f", ana.ValorDevido)
	}

	bruno := resultado[1]
	if bruno.ValorPago != 50 {
		t.Errorf("expected valorPago 50, got %f", bruno.ValorPago)
	}

	carla := resultado[2]
	if carla.Fonte != domain.FonteEfi {
		t.Errorf("expected fonte efi, got %s", carla.Fonte)
	}
	if carla.Status != domain.StatusInadimplente {
		t.Errorf("expected status inadimplente, got %s", carla.Status)
	}
}

func TestGetStatusClientes_PrimaryFailureFailsRequest(t *testing.T) {
	asaas := &mockAsaas{err: errors.New("connection refused")}
	svc := novoStatusService(asaas, nil)

	if _, err := svc.GetStatusClientes(context.Background()); err == nil {
		t.Fatal("expected error when primary provider is down")
	}
}

func TestGetStatusClientes_SecondaryFailureIsAbsorbed(t *testing.T) {
	asaas := &mockAsaas{
		clientes:   pagina(domain.Cliente{ID: "cus_1", Nome: "Ana"}),
		cobrancas:  pagina[domain.Cobranca](),
		historicas: pagina[domain.Cobranca](),
	}
	efi := &mockEfi{err: errors.New("oauth failure")}

	svc := novoStatusService(asaas, efi)

	resultado, err := svc.GetStatusClientes(context.Background())
	if err != nil {
		t.Fatalf("expected secondary failure to be absorbed, got %v", err)
	}
	if len(resultado) != 1 {
		t.Fatalf("expected 1 record from primary data, got %d", len(resultado))
	}
}

func TestGetStatusClientes_WithoutSecondaryProvider(t *testing.T) {
	asaas := &mockAsaas{
		clientes:   pagina(domain.Cliente{ID: "cus_1", Nome: "Ana"}),
		cobrancas:  pagina[domain.Cobranca](),
		historicas: pagina[domain.Cobranca](),
	}

	svc := novoStatusService(asaas, nil)

	resultado, err := svc.GetStatusClientes(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(resultado) != 1 {
		t.Fatalf("expected 1 record, got %d", len(resultado))
	}
}

func TestGetClienteDetalhes_SummaryAndCache(t *testing.T) {
	asaas := &mockAsaas{
		porCliente: pagina(
			domain.Cobranca{ID: "p1", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 100},
			domain.Cobranca{ID: "p2", Customer: "cus_1", Status: domain.CobrancaReceived, Value: 50},
		),
	}
	svc := novoStatusService(asaas, nil)

	detalhes, err := svc.GetClienteDetalhes(context.Background(), "cus_1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if detalhes.ClienteID != "cus_1" {
		t.Errorf("expected clienteId 'cus_1', got %q", detalhes.ClienteID)
	}
	if detalhes.Resumo.TotalCobrancas != 2 {
		t.Errorf("expected 2 charges in summary, got %d", detalhes.Resumo.TotalCobrancas)
	}
	if detalhes.Resumo.Vencidas != 1 || detalhes.Resumo.Pagas != 1 {
		t.Errorf("unexpected summary buckets: %+v", detalhes.Resumo)
	}
	if detalhes.Resumo.TaxaPagamento != 50 {
		t.Errorf("expected payment rate 50, got %d", detalhes.Resumo.TaxaPagamento)
	}

	// Second call must come from cache, not the provider.
	if _, err := svc.GetClienteDetalhes(context.Background(), "cus_1"); err != nil {
		t.Fatalf("expected cached call to succeed, got %v", err)
	}
	if len(asaas.chamadas) != 1 {
		t.Errorf("expected 1 provider call, got %d", len(asaas.chamadas))
	}
}

func TestGetClienteDetalhes_EmptyIDIsValidationError(t *testing.T) {
	svc := novoStatusService(&mockAsaas{}, nil)

	_, err := svc.GetClienteDetalhes(context.Background(), "")
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	auth := service.NewAuthService("segredo", time.Hour, "Tiago", "medup1302@", "", zap.NewNop())

	resp, err := auth.Login(context.Background(), &domain.LoginRequest{Username: "Tiago", Password: "medup1302@"})
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a signed token")
	}
	if resp.User.Role != "admin" {
		t.Errorf("expected role admin, got %q", resp.User.Role)
	}

	claims, err := auth.ValidateAccessToken(resp.Token)
	if err != nil {
		t.Fatalf("expected token to validate, got %v", err)
	}
	if claims.Username != "Tiago" {
		t.Errorf("expected username claim 'Tiago', got %q", claims.Username)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	auth := service.NewAuthService("segredo", time.Hour, "Tiago", "medup1302@", "", zap.NewNop())

	_, err := auth.Login(context.Background(), &domain.LoginRequest{Username: "Tiago", Password: "errada"})
	var uErr *domain.ErrUnauthorized
	if !errors.As(err, &uErr) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	auth := service.NewAuthService("segredo", time.Hour, "Tiago", "medup1302@", "", zap.NewNop())

	_, err := auth.ValidateAccessToken("not-a-jwt")
	var fErr *domain.ErrForbidden
	if !errors.As(err, &fErr) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	emissor := service.NewAuthService("segredo-a", time.Hour, "Tiago", "x", "", zap.NewNop())
	validador := service.NewAuthService("segredo-b", time.Hour, "Tiago", "x", "", zap.NewNop())

	resp, err := emissor.Login(context.Background(), &domain.LoginRequest{Username: "Tiago", Password: "x"})
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}

	if _, err := validador.ValidateAccessToken(resp.Token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}
