package domain

// Asaas charge statuses folded by the reconciliation engine. The
// provider vocabulary is larger (CANCELLED, REFUNDED, ...); anything
// outside these three leaves the consolidated status untouched.
const (
	CobrancaOverdue   = "OVERDUE"
	CobrancaPending   = "PENDING"
	CobrancaReceived  = "RECEIVED"
	CobrancaCancelled = "CANCELLED"
)

// Cobranca is a single invoice/payment record from the primary
// provider. It belongs to exactly one customer and is discarded after
// being folded into that customer's consolidated status.
type Cobranca struct {
	ID          string  `json:"id"`
	Customer    string  `json:"customer"`
	Value       float64 `json:"value"`
	Status      string  `json:"status"`
	DateCreated Data    `json:"dateCreated"`
	DueDate     Data    `json:"dueDate"`
	PaymentDate Data    `json:"paymentDate"`
	Description string  `json:"description,omitempty"`
}

// Pagina is the primary provider's list envelope.
type Pagina[T any] struct {
	Data       []T  `json:"data"`
	HasMore    bool `json:"hasMore"`
	TotalCount int  `json:"totalCount,omitempty"`
}

// Efí boleto statuses. PAGO only advances the last-payment date; it
// does not change the consolidated status or the paid total.
const (
	BoletoVencido  = "VENCIDO"
	BoletoPendente = "PENDENTE"
	BoletoPago     = "PAGO"
)

// Pessoa is the customer/payer sub-object embedded in an Efí boleto.
type Pessoa struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	CpfCnpj  string `json:"cpfCnpj"`
	Telefone string `json:"telefone"`
}

// Boleto is a charge from the secondary provider. The owning customer
// is resolved from Cliente.ID, falling back to the boleto's own id.
type Boleto struct {
	ID            string  `json:"id"`
	Status        string  `json:"status"`
	Valor         float64 `json:"valor"`
	DataPagamento Data    `json:"dataPagamento"`
	Cliente       *Pessoa `json:"cliente,omitempty"`
	Pagador       *Pessoa `json:"pagador,omitempty"`
}

// ResumoCobrancas summarizes a customer's charges for the detail view.
type ResumoCobrancas struct {
	TotalCobrancas int     `json:"totalCobrancas"`
	Pendentes      int     `json:"pendentes"`
	Pagas          int     `json:"pagas"`
	Vencidas       int     `json:"vencidas"`
	Canceladas     int     `json:"canceladas"`
	ValorTotal     float64 `json:"valorTotal"`
	TaxaPagamento  int     `json:"taxaPagamento"`
}

// DetalhesCliente is the response of GET /api/cliente-detalhes/{id}.
type DetalhesCliente struct {
	ClienteID string           `json:"clienteId"`
	Cobrancas []Cobranca       `json:"cobrancas"`
	Resumo    *ResumoCobrancas `json:"resumo,omitempty"`
}
