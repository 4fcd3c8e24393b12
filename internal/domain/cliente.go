// Package domain holds the entities shared across the dashboard:
// provider records, the consolidated per-customer status and the
// error types used for HTTP mapping.
package domain

import (
	"encoding/json"
	"time"
)

// Consolidated status values.
const (
	StatusRegular      = "regular"
	StatusInadimplente = "inadimplente"
	StatusACobrar      = "a_cobrar"
	StatusVencido      = "vencido"
)

// Provenance of a consolidated record.
const (
	FonteAsaas = "asaas"
	FonteEfi   = "efi"
)

// Data is a provider-supplied date string (YYYY-MM-DD or RFC 3339).
// The zero value means "no date" and serializes as JSON null, matching
// what the table UI expects.
type Data string

// MarshalJSON emits null for the empty value.
func (d Data) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalJSON accepts null as the empty value.
func (d *Data) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = Data(s)
	return nil
}

// Time parses the date. ok is false for the empty value or for a string
// no layout matches.
func (d Data) Time() (time.Time, bool) {
	if d == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, string(d)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Before reports whether d parses to a moment before t. Unparseable
// dates compare before nothing, the way an invalid date compares in the
// source feeds.
func (d Data) Before(t time.Time) bool {
	parsed, ok := d.Time()
	if !ok {
		return false
	}
	return parsed.Before(t)
}

// Texto is an optional provider string. Like Data, the zero value means
// "not set" and serializes as JSON null.
type Texto string

// MarshalJSON emits null for the empty value.
func (t Texto) MarshalJSON() ([]byte, error) {
	if t == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(t))
}

// UnmarshalJSON accepts null as the empty value.
func (t *Texto) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*t = Texto(s)
	return nil
}

// Cliente is a customer record from the primary provider (Asaas).
type Cliente struct {
	ID      string `json:"id"`
	Nome    string `json:"name"`
	Email   string `json:"email"`
	CpfCnpj string `json:"cpfCnpj"`
	Phone   string `json:"phone"`
	Deleted bool   `json:"deleted"`
}

// ClienteStatus is the consolidated per-customer delinquency view, one
// per unique customer id across both providers. It lives for a single
// request: the reconciliation map is rebuilt from scratch every time.
type ClienteStatus struct {
	ID                 string  `json:"id"`
	Nome               string  `json:"nome"`
	Email              string  `json:"email"`
	CpfCnpj            string  `json:"cpfCnpj"`
	Telefone           string  `json:"telefone"`
	Status             string  `json:"status"`
	Inadimplencia      int     `json:"inadimplencia"`
	CobrancasVencidas  int     `json:"cobrancasVencidas"`
	ValorDevido        float64 `json:"valorDevido"`
	ValorPago          float64 `json:"valorPago"`
	UltimoPagamento    Data    `json:"ultimoPagamento"`
	UltimoVencimento   Data    `json:"ultimoVencimento"`
	StatusUltimoBoleto Texto   `json:"statusUltimoBoleto"`
	UltimaAtividade    Data    `json:"ultimaAtividade"`
	Ativo              bool    `json:"ativo"`
	Fonte              string  `json:"fonte"`
}
