// Package view is the presentation engine for the consolidated status
// table: filter, sort, paginate and aggregate, all pure functions over
// the reconciled list. Handlers stay thin shells around Montar.
package view

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/medup/billing-dashboard-go/internal/domain"
)

// TamanhoPagina is the fixed page size of the status table.
const TamanhoPagina = 20

// Sort directions.
const (
	Ascendente  = "asc"
	Descendente = "desc"
)

// Filtros holds the table's filter predicates. Every field is optional;
// the zero value disables its predicate and all active predicates are
// combined with AND.
type Filtros struct {
	Nome    string // case-insensitive substring
	CpfCnpj string // case-insensitive substring
	Status  string // exact
	Ativo   string // "", "true" or "false"
	Fonte   string // exact

	// Numeric thresholds match only records whose field is non-zero
	// and at least the threshold.
	InadimplenciaMin float64
	ValorDevidoMin   float64
	ValorPagoMin     float64

	// Date thresholds match only records whose field is set and not
	// before the threshold.
	UltimoPagamentoMin  domain.Data
	UltimoVencimentoMin domain.Data
	UltimaAtividadeMin  domain.Data
}

// Match reports whether the record passes every active predicate.
func (f Filtros) Match(c *domain.ClienteStatus) bool {
	if f.Nome != "" && !strings.Contains(strings.ToLower(c.Nome), strings.ToLower(f.Nome)) {
		return false
	}
	if f.CpfCnpj != "" && !strings.Contains(strings.ToLower(c.CpfCnpj), strings.ToLower(f.CpfCnpj)) {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Ativo != "" && strconv.FormatBool(c.Ativo) != f.Ativo {
		return false
	}
	if f.Fonte != "" && c.Fonte != f.Fonte {
		return false
	}

	if f.InadimplenciaMin != 0 && !atingeMinimo(float64(c.Inadimplencia), f.InadimplenciaMin) {
		return false
	}
	if f.ValorDevidoMin != 0 && !atingeMinimo(c.ValorDevido, f.ValorDevidoMin) {
		return false
	}
	if f.ValorPagoMin != 0 && !atingeMinimo(c.ValorPago, f.ValorPagoMin) {
		return false
	}

	if !dataAtingeMinimo(c.UltimoPagamento, f.UltimoPagamentoMin) {
		return false
	}
	if !dataAtingeMinimo(c.UltimoVencimento, f.UltimoVencimentoMin) {
		return false
	}
	return dataAtingeMinimo(c.UltimaAtividade, f.UltimaAtividadeMin)
}

// Numeric thresholds skip zero-valued fields even when zero would
// satisfy the comparison.
func atingeMinimo(valor, minimo float64) bool {
	return valor != 0 && valor >= minimo
}

func dataAtingeMinimo(valor, minimo domain.Data) bool {
	if minimo == "" {
		return true
	}
	minT, ok := minimo.Time()
	if !ok {
		return false
	}
	valT, ok := valor.Time()
	if !ok {
		return false
	}
	return !valT.Before(minT)
}

// Filtrar returns the records passing f, preserving order.
func Filtrar(lista []*domain.ClienteStatus, f Filtros) []*domain.ClienteStatus {
	filtrados := make([]*domain.ClienteStatus, 0, len(lista))
	for _, c := range lista {
		if f.Match(c) {
			filtrados = append(filtrados, c)
		}
	}
	return filtrados
}

// Ordenacao is a single-field sort directive. The zero value sorts
// nothing.
type Ordenacao struct {
	Campo   string
	Direcao string
}

// Alternar returns the directive after a click on campo: the same field
// flips direction, a new field resets to ascending.
func (o Ordenacao) Alternar(campo string) Ordenacao {
	if o.Campo == campo {
		if o.Direcao == Ascendente {
			return Ordenacao{Campo: campo, Direcao: Descendente}
		}
		return Ordenacao{Campo: campo, Direcao: Ascendente}
	}
	return Ordenacao{Campo: campo, Direcao: Ascendente}
}

// Ordenar sorts lista in place. The comparison is type-aware by field
// name: date fields compare as dates with missing values at epoch zero,
// value and count fields compare numerically, ativo compares as 1/0 and
// everything else compares as text with missing values as the empty
// string. The sort is stable so records tied on the key keep their
// reconciliation order.
func Ordenar(lista []*domain.ClienteStatus, o Ordenacao) {
	if o.Campo == "" {
		return
	}
	menor := menorPor(o.Campo)
	sort.SliceStable(lista, func(i, j int) bool {
		a, b := lista[i], lista[j]
		if o.Direcao == Descendente {
			a, b = b, a
		}
		return menor(a, b)
	})
}

func menorPor(campo string) func(a, b *domain.ClienteStatus) bool {
	switch campo {
	case "ativo":
		return func(a, b *domain.ClienteStatus) bool {
			return !a.Ativo && b.Ativo
		}
	case "ultimoPagamento", "ultimoVencimento", "ultimaAtividade":
		return func(a, b *domain.ClienteStatus) bool {
			return dataOrdenavel(campoData(a, campo)).Before(dataOrdenavel(campoData(b, campo)))
		}
	case "inadimplencia", "cobrancasVencidas", "valorDevido", "valorPago":
		return func(a, b *domain.ClienteStatus) bool {
			return campoNumero(a, campo) < campoNumero(b, campo)
		}
	default:
		return func(a, b *domain.ClienteStatus) bool {
			return campoTexto(a, campo) < campoTexto(b, campo)
		}
	}
}

func campoData(c *domain.ClienteStatus, campo string) domain.Data {
	switch campo {
	case "ultimoPagamento":
		return c.UltimoPagamento
	case "ultimoVencimento":
		return c.UltimoVencimento
	case "ultimaAtividade":
		return c.UltimaAtividade
	}
	return ""
}

func dataOrdenavel(d domain.Data) time.Time {
	t, ok := d.Time()
	if !ok {
		return time.Unix(0, 0).UTC()
	}
	return t
}

func campoNumero(c *domain.ClienteStatus, campo string) float64 {
	switch campo {
	case "inadimplencia":
		return float64(c.Inadimplencia)
	case "cobrancasVencidas":
		return float64(c.CobrancasVencidas)
	case "valorDevido":
		return c.ValorDevido
	case "valorPago":
		return c.ValorPago
	}
	return 0
}

func campoTexto(c *domain.ClienteStatus, campo string) string {
	switch campo {
	case "id":
		return c.ID
	case "nome":
		return c.Nome
	case "email":
		return c.Email
	case "cpfCnpj":
		return c.CpfCnpj
	case "telefone":
		return c.Telefone
	case "status":
		return c.Status
	case "statusUltimoBoleto":
		return string(c.StatusUltimoBoleto)
	case "fonte":
		return c.Fonte
	}
	return ""
}

// TotalPaginas is the page count for n records: zero for an empty set,
// otherwise ceil(n / TamanhoPagina).
func TotalPaginas(n int) int {
	return (n + TamanhoPagina - 1) / TamanhoPagina
}

// Paginar slices the 1-based page out of lista. An out-of-range request
// is ignored and falls back to the first page, never clamped to the
// nearest valid one.
func Paginar(lista []*domain.ClienteStatus, pagina int) []*domain.ClienteStatus {
	if pagina < 1 || pagina > TotalPaginas(len(lista)) {
		pagina = 1
	}
	inicio := (pagina - 1) * TamanhoPagina
	if inicio >= len(lista) {
		return nil
	}
	fim := inicio + TamanhoPagina
	if fim > len(lista) {
		fim = len(lista)
	}
	return lista[inicio:fim]
}

// JanelaPaginas returns the page numbers to render: up to two pages on
// each side of the current one, bounded by the page count.
func JanelaPaginas(pagina, totalPaginas int) []int {
	inicio := pagina - 2
	if inicio < 1 {
		inicio = 1
	}
	fim := pagina + 2
	if fim > totalPaginas {
		fim = totalPaginas
	}
	if fim < inicio {
		return nil
	}
	janela := make([]int, 0, fim-inicio+1)
	for i := inicio; i <= fim; i++ {
		janela = append(janela, i)
	}
	return janela
}

// Estatisticas are the summary cards above the table, computed over the
// filtered set rather than the visible page.
type Estatisticas struct {
	TotalClientes      int     `json:"totalClientes"`
	TotalInadimplentes int     `json:"totalInadimplentes"`
	TotalACobrar       int     `json:"totalACobrar"`
	ValorDevido        float64 `json:"valorDevido"`
}

// CalcularEstatisticas aggregates the filtered set.
func CalcularEstatisticas(filtrados []*domain.ClienteStatus) Estatisticas {
	est := Estatisticas{TotalClientes: len(filtrados)}
	for _, c := range filtrados {
		switch c.Status {
		case domain.StatusInadimplente:
			est.TotalInadimplentes++
		case domain.StatusACobrar:
			est.TotalACobrar++
		}
		est.ValorDevido += c.ValorDevido
	}
	return est
}

// Resultado is one assembled table view: the current page plus the
// metadata the client needs to render filters, sort state and the
// pagination bar.
type Resultado struct {
	Clientes       []*domain.ClienteStatus `json:"clientes"`
	Pagina         int                     `json:"pagina"`
	TotalPaginas   int                     `json:"totalPaginas"`
	TotalRegistros int                     `json:"totalRegistros"`
	Paginas        []int                   `json:"paginas"`
	Estatisticas   Estatisticas            `json:"estatisticas"`
}

// Montar runs the whole pipeline: filter, sort, paginate, aggregate.
// The statistics come from the same filtered set as the page, so table
// and summary cards can never disagree.
func Montar(lista []*domain.ClienteStatus, f Filtros, o Ordenacao, pagina int) Resultado {
	filtrados := Filtrar(lista, f)
	Ordenar(filtrados, o)

	if pagina < 1 || pagina > TotalPaginas(len(filtrados)) {
		pagina = 1
	}
	return Resultado{
		Clientes:       Paginar(filtrados, pagina),
		Pagina:         pagina,
		TotalPaginas:   TotalPaginas(len(filtrados)),
		TotalRegistros: len(filtrados),
		Paginas:        JanelaPaginas(pagina, TotalPaginas(len(filtrados))),
		Estatisticas:   CalcularEstatisticas(filtrados),
	}
}
