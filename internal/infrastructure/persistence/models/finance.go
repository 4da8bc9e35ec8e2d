package models

import (
	"time"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// TransactionDoc is the stored form of a ledger record
type TransactionDoc struct {
	ID              string `json:"id,omitempty"`
	Tipo            string `json:"tipo"`
	Categoria       string `json:"categoria"`
	Valor           Amount `json:"valor"`
	Mes             string `json:"mes,omitempty"`
	Timestamp       int64  `json:"timestamp"`
	Descricao       string `json:"descricao"`
	Observacoes     string `json:"observacoes,omitempty"`
	Data            string `json:"data"`
	CriadoEm        string `json:"criadoEm,omitempty"`
	CriadoPor       string `json:"criadoPor,omitempty"`
	CriadoPorLogin  string `json:"criadoPorLogin,omitempty"`
	Editavel        bool   `json:"editavel"`
	EditadoEm       string `json:"editadoEm,omitempty"`
	EditadoPor      string `json:"editadoPor,omitempty"`
	EditadoPorLogin string `json:"editadoPorLogin,omitempty"`
}

// FromTransaction converts a domain transaction
func FromTransaction(t *finance.Transaction) *TransactionDoc {
	doc := &TransactionDoc{
		ID:              t.ID,
		Tipo:            t.Tipo.String(),
		Categoria:       t.Categoria,
		Valor:           NewAmount(t.Valor),
		Mes:             t.Mes,
		Timestamp:       t.Timestamp,
		Descricao:       t.Descricao,
		Observacoes:     t.Observacoes,
		Data:            t.Data,
		CriadoPor:       t.CriadoPor,
		CriadoPorLogin:  t.CriadoPorLogin,
		Editavel:        t.Editavel,
		EditadoPor:      t.EditadoPor,
		EditadoPorLogin: t.EditadoPorLogin,
	}
	if !t.CriadoEm.IsZero() {
		doc.CriadoEm = t.CriadoEm.UTC().Format(time.RFC3339Nano)
	}
	if t.EditadoEm != nil {
		doc.EditadoEm = t.EditadoEm.UTC().Format(time.RFC3339Nano)
	}
	return doc
}

// ToDomain converts the document into a transaction with the given id. It
// reports false when the amount cannot be read.
func (d *TransactionDoc) ToDomain(id string) (*finance.Transaction, bool) {
	if !d.Valor.Valid() {
		return nil, false
	}
	t := &finance.Transaction{
		ID:              id,
		Tipo:            finance.NormalizeLegacyTipo(d.Tipo),
		Categoria:       d.Categoria,
		Valor:           d.Valor.Value,
		Mes:             d.Mes,
		Timestamp:       d.Timestamp,
		Descricao:       d.Descricao,
		Observacoes:     d.Observacoes,
		Data:            d.Data,
		CriadoPor:       d.CriadoPor,
		CriadoPorLogin:  d.CriadoPorLogin,
		Editavel:        d.Editavel,
		EditadoPor:      d.EditadoPor,
		EditadoPorLogin: d.EditadoPorLogin,
	}
	if t.Mes == "" {
		if mes, err := finance.MesFromData(d.Data); err == nil {
			t.Mes = mes
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, d.CriadoEm); err == nil {
		t.CriadoEm = ts
	} else if d.Timestamp > 0 {
		t.CriadoEm = time.UnixMilli(d.Timestamp).UTC()
	}
	if ts, err := time.Parse(time.RFC3339Nano, d.EditadoEm); err == nil {
		t.EditadoEm = &ts
	}
	return t, true
}

// CategoryDoc is the stored form of a category
type CategoryDoc struct {
	Nome     string `json:"nome"`
	Tipo     string `json:"tipo,omitempty"`
	CriadoEm string `json:"criadoEm,omitempty"`
}

// FromCategory converts a domain category
func FromCategory(c *finance.Category, now time.Time) *CategoryDoc {
	return &CategoryDoc{
		Nome:     c.Nome,
		Tipo:     c.Tipo.String(),
		CriadoEm: now.UTC().Format(time.RFC3339Nano),
	}
}

// ToDomain converts the document. Bucket is the tipo of the bucket the
// document was read from, which wins over the stored field.
func (d *CategoryDoc) ToDomain(id string, bucket finance.Tipo) finance.Category {
	return finance.Category{ID: id, Nome: d.Nome, Tipo: bucket}
}

// BalanceCacheDoc is the stored form of the balance cache
type BalanceCacheDoc struct {
	Balance           Amount `json:"balance"`
	TotalReceitas     Amount `json:"totalReceitas"`
	TotalDespesas     Amount `json:"totalDespesas"`
	Timestamp         int64  `json:"timestamp"`
	CalculatedBy      string `json:"calculatedBy"`
	LastUpdate        string `json:"lastUpdate,omitempty"`
	IncrementalUpdate bool   `json:"incrementalUpdate,omitempty"`
}

// FromBalanceCache converts a domain cache entry
func FromBalanceCache(c *finance.BalanceCache) *BalanceCacheDoc {
	return &BalanceCacheDoc{
		Balance:           NewAmount(c.Balance),
		TotalReceitas:     NewAmount(c.TotalReceitas),
		TotalDespesas:     NewAmount(c.TotalDespesas),
		Timestamp:         c.Timestamp,
		CalculatedBy:      c.CalculatedBy,
		LastUpdate:        c.LastUpdate,
		IncrementalUpdate: c.IncrementalUpdate,
	}
}

// ToDomain converts the document. The balance is derived from the totals so
// that a damaged balance field cannot be served.
func (d *BalanceCacheDoc) ToDomain() *finance.BalanceCache {
	receitas, despesas := d.TotalReceitas.Value, d.TotalDespesas.Value
	return &finance.BalanceCache{
		Balance:           receitas.Sub(despesas),
		TotalReceitas:     receitas,
		TotalDespesas:     despesas,
		Timestamp:         d.Timestamp,
		CalculatedBy:      d.CalculatedBy,
		LastUpdate:        d.LastUpdate,
		IncrementalUpdate: d.IncrementalUpdate,
	}
}

// MensalidadeDoc is one month inside a player document
type MensalidadeDoc struct {
	Pago          bool    `json:"pago"`
	Valor         Amount  `json:"valor"`
	ValorPago     *Amount `json:"valorPago,omitempty"`
	DataPagamento string  `json:"dataPagamento,omitempty"`
}

// FromMensalidade converts a domain mensalidade
func FromMensalidade(m finance.Mensalidade) MensalidadeDoc {
	doc := MensalidadeDoc{
		Pago:          m.Pago,
		Valor:         NewAmount(m.Valor),
		DataPagamento: m.DataPagamento,
	}
	if m.Pago {
		v := NewAmount(m.ValorPago)
		doc.ValorPago = &v
	}
	return doc
}

// ToDomain converts the document
func (d MensalidadeDoc) ToDomain() finance.Mensalidade {
	m := finance.Mensalidade{
		Pago:          d.Pago,
		Valor:         d.Valor.Value,
		DataPagamento: d.DataPagamento,
	}
	if d.ValorPago != nil {
		m.ValorPago = d.ValorPago.Value
	}
	return m
}

// MensalidadesToDomain converts a month map
func MensalidadesToDomain(docs map[string]MensalidadeDoc) map[string]finance.Mensalidade {
	out := make(map[string]finance.Mensalidade, len(docs))
	for k, d := range docs {
		out[finance.NormalizeMonthKey(k)] = d.ToDomain()
	}
	return out
}

// FromMensalidades converts a domain month map
func FromMensalidades(m map[string]finance.Mensalidade) map[string]MensalidadeDoc {
	out := make(map[string]MensalidadeDoc, len(m))
	for k, v := range m {
		out[k] = FromMensalidade(v)
	}
	return out
}

// zeroIfInvalid returns the amount or zero
func zeroIfInvalid(a Amount) decimal.Decimal {
	if !a.Valid() {
		return decimal.Zero
	}
	return a.Value
}
