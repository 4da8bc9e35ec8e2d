// Package audit holds the action log written by every mutating operation.
package audit

import (
	"context"
	"time"
)

// SourceServer marks entries written by the server, as opposed to the client
const SourceServer = "cloud-function"

// Actions recorded by the finance operations
const (
	ActionFinancialAdd    = "financial-add"
	ActionFinancialUpdate = "financial-update"
	ActionFinancialDelete = "financial-delete"
	ActionCategoryCreate  = "category-create"
	ActionCategoryDelete  = "category-delete"
	ActionCacheInvalidate = "balance-cache-invalidate"
	ActionMensalidadePago = "pagamento_mensalidade"
	ActionLegacyMigration = "finance-migration"
)

// Entry is one line of the club action log
type Entry struct {
	ID        string         `json:"id"`
	Usuario   string         `json:"usuario"`
	Role      string         `json:"role"`
	Acao      string         `json:"acao"`
	Descricao string         `json:"descricao"`
	Dados     map[string]any `json:"dados"`
	Timestamp string         `json:"timestamp"` // RFC 3339, UTC, millisecond precision
	Data      string         `json:"data"`      // YYYY-MM-DD, UTC
	Hora      string         `json:"hora"`      // HH:MM:SS, club local time
	Source    string         `json:"source"`
}

// NewEntry stamps an entry with the given time. Hora is rendered in loc.
func NewEntry(usuario, role, acao, descricao string, dados map[string]any, now time.Time, loc *time.Location) *Entry {
	if dados == nil {
		dados = map[string]any{}
	}
	if loc == nil {
		loc = time.UTC
	}
	utc := now.UTC()
	return &Entry{
		Usuario:   usuario,
		Role:      role,
		Acao:      acao,
		Descricao: descricao,
		Dados:     dados,
		Timestamp: utc.Format("2006-01-02T15:04:05.000Z"),
		Data:      utc.Format("2006-01-02"),
		Hora:      now.In(loc).Format("15:04:05"),
		Source:    SourceServer,
	}
}

// Repository appends entries to the action log of a club
type Repository interface {
	// Append stores e under a new id and sets e.ID
	Append(ctx context.Context, clubID string, e *Entry) error
	Recent(ctx context.Context, clubID string, limit int) ([]Entry, error)
}
