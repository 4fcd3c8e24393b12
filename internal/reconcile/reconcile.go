// Package reconcile merges customer and charge records from both
// payment providers into one consolidated per-customer delinquency
// view. The merge is pure and request-scoped: build the map, return the
// ordered values, discard.
package reconcile

import (
	"math"
	"time"

	"github.com/medup/billing-dashboard-go/internal/domain"
)

// Customers with no activity for this long are swept inactive.
const inactivityCutoff = 3 // months

// DedupCobrancas concatenates the current and historical charge lists
// removing duplicates by charge id. The first occurrence wins and
// insertion order is preserved, so current charges shadow their
// historical copies.
func DedupCobrancas(atuais, historicas []domain.Cobranca) []domain.Cobranca {
	seen := make(map[string]struct{}, len(atuais)+len(historicas))
	unicas := make([]domain.Cobranca, 0, len(atuais)+len(historicas))

	for _, lista := range [][]domain.Cobranca{atuais, historicas} {
		for _, c := range lista {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			unicas = append(unicas, c)
		}
	}
	return unicas
}

// Merge builds the consolidated status list: primary customers seed the
// map, primary charges fold into it, secondary boletos fold (creating
// synthetic entries for unknown ids) and an inactivity sweep runs last.
// The result preserves insertion order: primary customers first, then
// secondary-only customers in boleto order.
//
// The status field is overwritten by whichever charge folds last, not
// by the most severe or most recent one. That mirrors the behavior the
// dashboard has always shown and is kept on purpose.
func Merge(clientes []domain.Cliente, cobrancas []domain.Cobranca, boletos []domain.Boleto, agora time.Time) []*domain.ClienteStatus {
	mapa := make(map[string]*domain.ClienteStatus, len(clientes))
	ordem := make([]string, 0, len(clientes))

	// Seed from primary customers.
	for _, cli := range clientes {
		if _, ok := mapa[cli.ID]; ok {
			continue
		}
		mapa[cli.ID] = &domain.ClienteStatus{
			ID:       cli.ID,
			Nome:     cli.Nome,
			Email:    cli.Email,
			CpfCnpj:  cli.CpfCnpj,
			Telefone: cli.Phone,
			Status:   domain.StatusRegular,
			Ativo:    !cli.Deleted,
			Fonte:    domain.FonteAsaas,
		}
		ordem = append(ordem, cli.ID)
	}

	// Fold primary charges. Charges for unknown customers are dropped.
	for i := range cobrancas {
		cob := &cobrancas[i]
		status, ok := mapa[cob.Customer]
		if !ok {
			continue
		}
		foldCobranca(status, cob)
	}

	// Fold secondary boletos, synthesizing entries for new ids.
	for i := range boletos {
		bol := &boletos[i]
		id := bol.ID
		if bol.Cliente != nil && bol.Cliente.ID != "" {
			id = bol.Cliente.ID
		}
		status, ok := mapa[id]
		if !ok {
			status = novoClienteEfi(id, bol)
			mapa[id] = status
			ordem = append(ordem, id)
		}
		foldBoleto(status, bol)
	}

	// Inactivity sweep: can only ever turn ativo off.
	corte := agora.AddDate(0, -inactivityCutoff, 0)
	for _, status := range mapa {
		if status.UltimaAtividade == "" || status.UltimaAtividade.Before(corte) {
			status.Ativo = false
		}
	}

	resultado := make([]*domain.ClienteStatus, 0, len(ordem))
	for _, id := range ordem {
		resultado = append(resultado, mapa[id])
	}
	return resultado
}

func foldCobranca(status *domain.ClienteStatus, cob *domain.Cobranca) {
	switch cob.Status {
	case domain.CobrancaOverdue:
		status.Inadimplencia++
		status.CobrancasVencidas++
		status.ValorDevido += cob.Value
		status.Status = domain.StatusInadimplente
	case domain.CobrancaPending:
		status.ValorDevido += cob.Value
		status.Status = domain.StatusACobrar
	case domain.CobrancaReceived:
		status.ValorPago += cob.Value
		status.Status = domain.StatusRegular
	}

	if cob.PaymentDate != "" {
		avancarData(&status.UltimoPagamento, cob.PaymentDate)
		avancarData(&status.UltimaAtividade, cob.PaymentDate)
	}

	if cob.DueDate != "" {
		// statusUltimoBoleto follows the charge holding the most recent
		// due date, so it only moves when the due date advances.
		if avancarData(&status.UltimoVencimento, cob.DueDate) {
			status.StatusUltimoBoleto = domain.Texto(cob.Status)
		}
		avancarData(&status.UltimaAtividade, cob.DueDate)
	}

	if cob.DateCreated != "" {
		avancarData(&status.UltimaAtividade, cob.DateCreated)
	}
}

// novoClienteEfi synthesizes a minimal record for a boleto whose
// customer is unknown to the primary provider. Unlike primary-seeded
// records it starts with no ultimaAtividade and ativo unset, so the
// sweep marks it inactive unless a later fold sets activity (none of
// the boleto transitions do).
func novoClienteEfi(id string, bol *domain.Boleto) *domain.ClienteStatus {
	status := &domain.ClienteStatus{
		ID:     id,
		Nome:   "Cliente Efí",
		Status: domain.StatusRegular,
		Fonte:  domain.FonteEfi,
	}
	for _, pessoa := range []*domain.Pessoa{bol.Cliente, bol.Pagador} {
		if pessoa == nil {
			continue
		}
		if status.Nome == "Cliente Efí" && pessoa.Nome != "" {
			status.Nome = pessoa.Nome
		}
		if status.Email == "" {
			status.Email = pessoa.Email
		}
		if status.CpfCnpj == "" {
			status.CpfCnpj = pessoa.CpfCnpj
		}
		if status.Telefone == "" {
			status.Telefone = pessoa.Telefone
		}
	}
	return status
}

func foldBoleto(status *domain.ClienteStatus, bol *domain.Boleto) {
	switch bol.Status {
	case domain.BoletoVencido:
		status.Inadimplencia++
		status.CobrancasVencidas++
		status.ValorDevido += bol.Valor
		status.Status = domain.StatusInadimplente
	case domain.BoletoPendente:
		status.Status = domain.StatusACobrar
	case domain.BoletoPago:
		// Only the last-payment date moves; paid totals and the
		// consolidated status stay untouched for secondary charges.
		if bol.DataPagamento != "" {
			status.UltimoPagamento = bol.DataPagamento
		}
	}
}

// avancarData applies the max-date rule: campo takes candidato only
// when unset or strictly older. Unparseable dates never advance and are
// never overtaken, matching how invalid dates compare in the feeds.
// Reports whether the field moved.
func avancarData(campo *domain.Data, candidato domain.Data) bool {
	candT, ok := candidato.Time()
	if !ok {
		return false
	}
	if *campo == "" {
		*campo = candidato
		return true
	}
	atualT, ok := campo.Time()
	if !ok {
		return false
	}
	if candT.After(atualT) {
		*campo = candidato
		return true
	}
	return false
}

// Resumir derives the detail-view summary from a customer's fetched
// charges: per-status counts, total value and the payment rate
// (paid/owed, rounded percentage, 0 when nothing is owed).
func Resumir(cobrancas []domain.Cobranca) domain.ResumoCobrancas {
	resumo := domain.ResumoCobrancas{TotalCobrancas: len(cobrancas)}

	var devido, pago float64
	for _, c := range cobrancas {
		resumo.ValorTotal += c.Value
		switch c.Status {
		case domain.CobrancaPending:
			resumo.Pendentes++
			devido += c.Value
		case domain.CobrancaReceived:
			resumo.Pagas++
			pago += c.Value
		case domain.CobrancaOverdue:
			resumo.Vencidas++
			devido += c.Value
		case domain.CobrancaCancelled:
			resumo.Canceladas++
		}
	}

	if devido > 0 {
		resumo.TaxaPagamento = int(math.Round(pago / devido * 100))
	}
	return resumo
}
