package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clubhub/backend/internal/domain/finance"
)

// PlayerDoc holds the fields of a roster entry the ledger reads. The stored
// document carries many more fields; they are preserved by MergePlayer.
type PlayerDoc struct {
	Nome                 string          `json:"nome"`
	Isento               bool            `json:"isento"`
	ValorMensalidade     Amount          `json:"valorMensalidade"`
	Mensalidades         json.RawMessage `json:"mensalidades,omitempty"`
	MensalidadesBaseYear int             `json:"mensalidadesBaseYear,omitempty"`
	CreatedAt            json.RawMessage `json:"createdAt,omitempty"`
}

// ToDomain converts the document. Mensalidades stored as a twelve entry array
// are keyed by month of the base year, which is mensalidadesBaseYear, the
// year of createdAt, or fallbackYear, in that order.
func (d *PlayerDoc) ToDomain(id string, fallbackYear int) (*finance.Player, error) {
	p := &finance.Player{
		ID:               id,
		Nome:             d.Nome,
		Isento:           d.Isento,
		ValorMensalidade: zeroIfInvalid(d.ValorMensalidade),
		Mensalidades:     map[string]finance.Mensalidade{},
	}

	raw := bytes.TrimSpace(d.Mensalidades)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return p, nil
	}

	switch raw[0] {
	case '{':
		var byMonth map[string]MensalidadeDoc
		if err := json.Unmarshal(raw, &byMonth); err != nil {
			return nil, fmt.Errorf("player %s: decode mensalidades: %w", id, err)
		}
		p.Mensalidades = MensalidadesToDomain(byMonth)
	case '[':
		var list []*MensalidadeDoc
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("player %s: decode mensalidades: %w", id, err)
		}
		year := d.baseYear(fallbackYear)
		for i, m := range list {
			if m == nil {
				continue
			}
			p.Mensalidades[finance.MonthKeyFromIndex(year, i)] = m.ToDomain()
		}
	default:
		return nil, fmt.Errorf("player %s: unexpected mensalidades shape", id)
	}
	return p, nil
}

func (d *PlayerDoc) baseYear(fallback int) int {
	if d.MensalidadesBaseYear > 0 {
		return d.MensalidadesBaseYear
	}
	if t, ok := parseCreatedAt(d.CreatedAt); ok {
		return t.Year()
	}
	return fallback
}

// parseCreatedAt accepts epoch milliseconds or an RFC 3339 string
func parseCreatedAt(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 {
		return time.Time{}, false
	}
	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil && millis > 0 {
		return time.UnixMilli(millis).UTC(), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MergePlayer writes the mensalidades of p into the stored player document,
// leaving every other field untouched. The array base year marker is dropped
// since mensalidades are always written keyed by month.
func MergePlayer(current []byte, p *finance.Player) ([]byte, error) {
	obj := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &obj); err != nil {
		return nil, fmt.Errorf("player %s: decode document: %w", p.ID, err)
	}
	encoded, err := json.Marshal(FromMensalidades(p.Mensalidades))
	if err != nil {
		return nil, err
	}
	obj["mensalidades"] = encoded
	delete(obj, "mensalidadesBaseYear")
	return json.Marshal(obj)
}
