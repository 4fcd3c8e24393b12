package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medup/billing-dashboard-go/internal/domain"
)

var agora = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func cliente(id, nome string) domain.Cliente {
	return domain.Cliente{ID: id, Nome: nome, Email: nome + "@example.com"}
}

func TestDedupCobrancasFirstOccurrenceWins(t *testing.T) {
	atuais := []domain.Cobranca{
		{ID: "pay_1", Status: domain.CobrancaPending, Value: 10},
		{ID: "pay_2", Status: domain.CobrancaOverdue, Value: 20},
	}
	historicas := []domain.Cobranca{
		{ID: "pay_2", Status: domain.CobrancaReceived, Value: 99},
		{ID: "pay_3", Status: domain.CobrancaReceived, Value: 30},
	}

	unicas := DedupCobrancas(atuais, historicas)

	require.Len(t, unicas, 3)
	require.Equal(t, []string{"pay_1", "pay_2", "pay_3"}, []string{unicas[0].ID, unicas[1].ID, unicas[2].ID})
	require.Equal(t, domain.CobrancaOverdue, unicas[1].Status, "current copy must shadow historical")
}

func TestMergeSeedsRegularActive(t *testing.T) {
	clientes := []domain.Cliente{
		cliente("cus_1", "Ana"),
		{ID: "cus_2", Nome: "Bia", Deleted: true},
	}
	cobrancas := []domain.Cobranca{
		{ID: "p1", Customer: "cus_1", Status: domain.CobrancaPending, Value: 1, DateCreated: "2024-02-20"},
		{ID: "p2", Customer: "cus_2", Status: domain.CobrancaPending, Value: 1, DateCreated: "2024-02-20"},
	}

	resultado := Merge(clientes, cobrancas, nil, agora)

	require.Len(t, resultado, 2)
	require.True(t, resultado[0].Ativo)
	require.False(t, resultado[1].Ativo, "deleted customer starts inactive")
	require.Equal(t, domain.FonteAsaas, resultado[0].Fonte)
}

func TestMergeCounterAndValueSums(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_1", "Ana")}
	cobrancas := []domain.Cobranca{
		{ID: "p1", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 100, DueDate: "2024-01-10"},
		{ID: "p2", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 50, DueDate: "2024-01-20"},
		{ID: "p3", Customer: "cus_1", Status: domain.CobrancaPending, Value: 30, DueDate: "2024-03-10"},
		{ID: "p4", Customer: "cus_1", Status: domain.CobrancaReceived, Value: 80, PaymentDate: "2024-02-01"},
	}

	resultado := Merge(clientes, cobrancas, nil, agora)

	require.Len(t, resultado, 1)
	s := resultado[0]
	require.Equal(t, 2, s.Inadimplencia)
	require.Equal(t, 2, s.CobrancasVencidas)
	require.InDelta(t, 180.0, s.ValorDevido, 1e-9, "overdue + pending values")
	require.InDelta(t, 80.0, s.ValorPago, 1e-9)
}

func TestMergeStatusIsLastWriteWins(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_1", "Ana")}
	cobrancas := []domain.Cobranca{
		{ID: "p1", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 100},
		{ID: "p2", Customer: "cus_1", Status: domain.CobrancaReceived, Value: 100},
	}

	resultado := Merge(clientes, cobrancas, nil, agora)
	require.Equal(t, domain.StatusRegular, resultado[0].Status, "the last folded charge decides")

	// Same charges in the opposite order flip the outcome.
	cobrancas[0], cobrancas[1] = cobrancas[1], cobrancas[0]
	resultado = Merge(clientes, cobrancas, nil, agora)
	require.Equal(t, domain.StatusInadimplente, resultado[0].Status)
}

func TestMergeMaxDateNeverRegresses(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_1", "Ana")}
	cobrancas := []domain.Cobranca{
		{ID: "p1", Customer: "cus_1", Status: domain.CobrancaReceived, Value: 10, PaymentDate: "2024-02-15", DueDate: "2024-02-10"},
		{ID: "p2", Customer: "cus_1", Status: domain.CobrancaReceived, Value: 10, PaymentDate: "2024-01-05", DueDate: "2024-01-01"},
	}

	resultado := Merge(clientes, cobrancas, nil, agora)

	s := resultado[0]
	require.Equal(t, domain.Data("2024-02-15"), s.UltimoPagamento)
	require.Equal(t, domain.Data("2024-02-10"), s.UltimoVencimento)
	require.Equal(t, domain.Data("2024-02-15"), s.UltimaAtividade)
}

func TestMergeStatusUltimoBoletoFollowsLatestDueDate(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_1", "Ana")}
	cobrancas := []domain.Cobranca{
		{ID: "p1", Customer: "cus_1", Status: domain.CobrancaPending, Value: 10, DueDate: "2024-03-10"},
		{ID: "p2", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 10, DueDate: "2024-01-10"},
	}

	resultado := Merge(clientes, cobrancas, nil, agora)

	s := resultado[0]
	require.Equal(t, domain.Data("2024-03-10"), s.UltimoVencimento)
	require.Equal(t, domain.Texto(domain.CobrancaPending), s.StatusUltimoBoleto,
		"older due date must not steal statusUltimoBoleto")
}

func TestMergeIdempotentUnderReRun(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_1", "Ana"), cliente("cus_2", "Bia")}
	cobrancas := []domain.Cobranca{
		{ID: "p1", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 100, DueDate: "2024-01-10"},
		{ID: "p2", Customer: "cus_2", Status: domain.CobrancaReceived, Value: 50, PaymentDate: "2024-02-01"},
	}
	boletos := []domain.Boleto{
		{ID: "b1", Status: domain.BoletoVencido, Valor: 25},
	}

	primeiro := Merge(clientes, cobrancas, boletos, agora)
	segundo := Merge(clientes, cobrancas, boletos, agora)

	require.Equal(t, primeiro, segundo)
}

func TestMergeInactivitySweepBoundary(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_old", "Ana"), cliente("cus_edge", "Bia")}
	cobrancas := []domain.Cobranca{
		// Exactly three months and one day before agora.
		{ID: "p1", Customer: "cus_old", Status: domain.CobrancaReceived, Value: 1, PaymentDate: "2023-11-30"},
		// Exactly three months before agora: not strictly older.
		{ID: "p2", Customer: "cus_edge", Status: domain.CobrancaReceived, Value: 1, PaymentDate: "2023-12-01"},
	}

	resultado := Merge(clientes, cobrancas, nil, agora)

	require.False(t, resultado[0].Ativo)
	require.True(t, resultado[1].Ativo)
}

func TestMergeCustomerWithoutChargesSweptInactive(t *testing.T) {
	resultado := Merge([]domain.Cliente{cliente("cus_1", "Ana")}, nil, nil, agora)

	s := resultado[0]
	require.Equal(t, domain.StatusRegular, s.Status)
	require.False(t, s.Ativo, "no activity date means inactive")
	require.Zero(t, s.ValorDevido)
}

func TestMergeExampleOverduePlusReceived(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_1", "Ana")}
	cobrancas := []domain.Cobranca{
		{ID: "p1", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 100, DueDate: "2024-01-10"},
		{ID: "p2", Customer: "cus_1", Status: domain.CobrancaReceived, Value: 50, PaymentDate: "2024-02-01"},
	}

	resultado := Merge(clientes, cobrancas, nil, agora)

	s := resultado[0]
	require.InDelta(t, 100.0, s.ValorDevido, 1e-9)
	require.InDelta(t, 50.0, s.ValorPago, 1e-9)
	require.Equal(t, domain.StatusRegular, s.Status)
	require.Equal(t, 1, s.Inadimplencia)
	require.Equal(t, domain.Data("2024-01-10"), s.UltimoVencimento)
	require.Equal(t, domain.Data("2024-02-01"), s.UltimoPagamento)
	require.True(t, s.Ativo)
}

func TestMergeEfiSynthesizesMinimalRecord(t *testing.T) {
	boletos := []domain.Boleto{
		{
			ID:     "b1",
			Status: domain.BoletoVencido,
			Valor:  200,
			Cliente: &domain.Pessoa{
				ID:   "efi_9",
				Nome: "Carlos",
			},
		},
	}

	resultado := Merge(nil, nil, boletos, agora)

	require.Len(t, resultado, 1)
	s := resultado[0]
	require.Equal(t, "efi_9", s.ID)
	require.Equal(t, "Carlos", s.Nome)
	require.Equal(t, domain.FonteEfi, s.Fonte)
	require.Equal(t, domain.StatusInadimplente, s.Status)
	require.InDelta(t, 200.0, s.ValorDevido, 1e-9)
	require.False(t, s.Ativo, "synthetic records carry no activity date")
	require.Equal(t, domain.Data(""), s.UltimaAtividade)
}

func TestMergeEfiPagoOnlyMovesPaymentDate(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_1", "Ana")}
	cobrancas := []domain.Cobranca{
		{ID: "p1", Customer: "cus_1", Status: domain.CobrancaOverdue, Value: 100, DueDate: "2024-02-01"},
	}
	boletos := []domain.Boleto{
		{ID: "b1", Cliente: &domain.Pessoa{ID: "cus_1"}, Status: domain.BoletoPago, Valor: 100, DataPagamento: "2024-02-20"},
	}

	resultado := Merge(clientes, cobrancas, boletos, agora)

	s := resultado[0]
	require.Equal(t, domain.Data("2024-02-20"), s.UltimoPagamento)
	require.Zero(t, s.ValorPago, "paid boletos do not add to valorPago")
	require.Equal(t, domain.StatusInadimplente, s.Status, "paid boletos do not change status")
}

func TestMergeEfiPendenteAddsNoValue(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_1", "Ana")}
	boletos := []domain.Boleto{
		{ID: "b1", Cliente: &domain.Pessoa{ID: "cus_1"}, Status: domain.BoletoPendente, Valor: 75},
	}

	resultado := Merge(clientes, nil, boletos, agora)

	s := resultado[0]
	require.Equal(t, domain.StatusACobrar, s.Status)
	require.Zero(t, s.ValorDevido)
}

func TestMergeUnparseableDateNeverAdvances(t *testing.T) {
	clientes := []domain.Cliente{cliente("cus_1", "Ana")}
	cobrancas := []domain.Cobranca{
		{ID: "p1", Customer: "cus_1", Status: domain.CobrancaReceived, Value: 1, PaymentDate: "2024-02-01"},
		{ID: "p2", Customer: "cus_1", Status: domain.CobrancaReceived, Value: 1, PaymentDate: "not-a-date"},
	}

	resultado := Merge(clientes, cobrancas, nil, agora)
	require.Equal(t, domain.Data("2024-02-01"), resultado[0].UltimoPagamento)
}

func TestResumir(t *testing.T) {
	cobrancas := []domain.Cobranca{
		{ID: "p1", Status: domain.CobrancaOverdue, Value: 100},
		{ID: "p2", Status: domain.CobrancaPending, Value: 50},
		{ID: "p3", Status: domain.CobrancaReceived, Value: 75},
		{ID: "p4", Status: domain.CobrancaCancelled, Value: 10},
	}

	resumo := Resumir(cobrancas)

	require.Equal(t, 4, resumo.TotalCobrancas)
	require.Equal(t, 1, resumo.Pendentes)
	require.Equal(t, 1, resumo.Pagas)
	require.Equal(t, 1, resumo.Vencidas)
	require.Equal(t, 1, resumo.Canceladas)
	require.InDelta(t, 235.0, resumo.ValorTotal, 1e-9)
	require.Equal(t, 50, resumo.TaxaPagamento, "75 paid over 150 owed")
}

func TestResumirEmpty(t *testing.T) {
	resumo := Resumir(nil)
	require.Zero(t, resumo.TotalCobrancas)
	require.Zero(t, resumo.TaxaPagamento)
}
