package finance

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BalanceResponse is the result of GetBalance
type BalanceResponse struct {
	Balance       decimal.Decimal `json:"balance"`
	TotalReceitas decimal.Decimal `json:"totalReceitas"`
	TotalDespesas decimal.Decimal `json:"totalDespesas"`
	Cached        bool            `json:"cached"`
	CacheAge      *int64          `json:"cacheAge,omitempty"` // seconds, only on cache hits
}

// CacheUpdateResponse is the result of UpdateBalanceCache. Success is false
// when there was no cache entry to adjust.
type CacheUpdateResponse struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	TotalReceitas *decimal.Decimal `json:"totalReceitas,omitempty"`
	TotalDespesas *decimal.Decimal `json:"totalDespesas,omitempty"`
}

// AddTransactionRequest holds the fields of a new ledger record
type AddTransactionRequest struct {
	Tipo        string          `json:"tipo" binding:"required,tipo"`
	Categoria   string          `json:"categoria" binding:"required"`
	Valor       decimal.Decimal `json:"valor"`
	Descricao   string          `json:"descricao" binding:"max=500"`
	Data        string          `json:"data" binding:"required"`
	Observacoes string          `json:"observacoes" binding:"max=2000"`
}

// AddTransactionResponse is the result of AddFinancialTransaction
type AddTransactionResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
}

// TransactionResponse is a ledger record in API responses
type TransactionResponse struct {
	ID              string          `json:"id"`
	Tipo            string          `json:"tipo"`
	Categoria       string          `json:"categoria"`
	Valor           decimal.Decimal `json:"valor"`
	Mes             string          `json:"mes"`
	Timestamp       int64           `json:"timestamp"`
	Descricao       string          `json:"descricao"`
	Observacoes     string          `json:"observacoes"`
	Data            string          `json:"data"`
	CriadoEm        *time.Time      `json:"criadoEm,omitempty"`
	CriadoPor       string          `json:"criadoPor,omitempty"`
	CriadoPorLogin  string          `json:"criadoPorLogin,omitempty"`
	Editavel        bool            `json:"editavel"`
	EditadoEm       *time.Time      `json:"editadoEm,omitempty"`
	EditadoPor      string          `json:"editadoPor,omitempty"`
	EditadoPorLogin string          `json:"editadoPorLogin,omitempty"`
}

// ToTransactionResponse converts a domain transaction
func ToTransactionResponse(t *finance.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID,
		Tipo:            t.Tipo.String(),
		Categoria:       t.Categoria,
		Valor:           t.Valor,
		Mes:             t.Mes,
		Timestamp:       t.Timestamp,
		Descricao:       t.Descricao,
		Observacoes:     t.Observacoes,
		Data:            t.Data,
		CriadoPor:       t.CriadoPor,
		CriadoPorLogin:  t.CriadoPorLogin,
		Editavel:        t.Editavel,
		EditadoEm:       t.EditadoEm,
		EditadoPor:      t.EditadoPor,
		EditadoPorLogin: t.EditadoPorLogin,
	}
	if !t.CriadoEm.IsZero() {
		criado := t.CriadoEm
		resp.CriadoEm = &criado
	}
	return resp
}

// ListTransactionsRequest filters the ledger listing
type ListTransactionsRequest struct {
	Mes      string `form:"mes"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=200"`
}

// CategoryResponse is a category in API responses
type CategoryResponse struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
	Tipo string `json:"tipo"`
}

// CategoryListResponse groups categories by tipo
type CategoryListResponse struct {
	Entrada []CategoryResponse `json:"entrada"`
	Saida   []CategoryResponse `json:"saida"`
}

// CreateCategoryRequest holds the fields of a new category
type CreateCategoryRequest struct {
	Nome string `json:"nome" binding:"required,max=100"`
	Tipo string `json:"tipo" binding:"required,tipo"`
}

func toCategoryResponses(list []finance.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, CategoryResponse{ID: c.ID, Nome: c.Nome, Tipo: c.Tipo.String()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Nome) < strings.ToLower(out[j].Nome)
	})
	return out
}

// UpdateCacheRequest carries the deltas of UpdateBalanceCache
type UpdateCacheRequest struct {
	DeltaReceitas decimal.Decimal `json:"deltaReceitas"`
	DeltaDespesas decimal.Decimal `json:"deltaDespesas"`
}

// RecordPaymentRequest marks a mensalidade as paid or unpaid
type RecordPaymentRequest struct {
	Pago      bool            `json:"pago"`
	ValorPago decimal.Decimal `json:"valorPago"`
}

// PaymentResponse is the result of RecordPayment
type PaymentResponse struct {
	PlayerID     string          `json:"playerId"`
	Month        string          `json:"month"`
	Pago         bool            `json:"pago"`
	ValorPago    decimal.Decimal `json:"valorPago"`
	Delta        decimal.Decimal `json:"delta"`
	CacheUpdated bool            `json:"cacheUpdated"`
}

// ParseTransactionPatch converts raw update fields into a patch. Keys outside
// the updatable set are rejected together.
func ParseTransactionPatch(updates map[string]json.RawMessage) (finance.TransactionPatch, error) {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	if err := finance.CheckUpdatableFields(keys); err != nil {
		return finance.TransactionPatch{}, err
	}

	var p finance.TransactionPatch
	for key, raw := range updates {
		if isNull(raw) {
			continue
		}
		switch key {
		case "tipo":
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return p, shared.InvalidArgument("Tipo inválido. Use: entrada ou saida")
			}
			tipo := finance.Tipo(strings.TrimSpace(v))
			p.Tipo = &tipo
		case "valor":
			var v decimal.Decimal
			if err := v.UnmarshalJSON(raw); err != nil {
				return p, shared.InvalidArgument("Valor inválido")
			}
			p.Valor = &v
		default:
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return p, shared.InvalidArgument("Campo " + key + " deve ser texto")
			}
			switch key {
			case "categoria":
				p.Categoria = &v
			case "descricao":
				p.Descricao = &v
			case "observacoes":
				p.Observacoes = &v
			case "data":
				p.Data = &v
			}
		}
	}
	return p, p.Validate()
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// transactionData is the audit representation of a record
func transactionData(t *finance.Transaction) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"tipo":        t.Tipo.String(),
		"categoria":   t.Categoria,
		"valor":       t.Valor.InexactFloat64(),
		"mes":         t.Mes,
		"descricao":   t.Descricao,
		"observacoes": t.Observacoes,
		"data":        t.Data,
	}
}

// patchData is the audit representation of the requested changes
func patchData(p finance.TransactionPatch) map[string]any {
	out := map[string]any{}
	if p.Tipo != nil {
		out["tipo"] = p.Tipo.String()
	}
	if p.Categoria != nil {
		out["categoria"] = *p.Categoria
	}
	if p.Valor != nil {
		out["valor"] = p.Valor.InexactFloat64()
	}
	if p.Descricao != nil {
		out["descricao"] = *p.Descricao
	}
	if p.Observacoes != nil {
		out["observacoes"] = *p.Observacoes
	}
	if p.Data != nil {
		out["data"] = *p.Data
	}
	return out
}
