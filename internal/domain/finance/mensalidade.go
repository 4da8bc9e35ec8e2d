package finance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Mensalidade is the membership fee record of one player for one month
type Mensalidade struct {
	Pago          bool
	Valor         decimal.Decimal
	ValorPago     decimal.Decimal
	DataPagamento string
}

// Contribution returns the amount this record adds to the club revenue
func (m Mensalidade) Contribution() decimal.Decimal {
	if !m.Pago {
		return decimal.Zero
	}
	if !m.ValorPago.IsZero() {
		return m.ValorPago
	}
	return m.Valor
}

// Player is the part of a roster entry the ledger needs
type Player struct {
	ID               string
	Nome             string
	Isento           bool
	ValorMensalidade decimal.Decimal
	Mensalidades     map[string]Mensalidade // keyed by YYYY-MM
}

// PaymentChange describes the effect of recording a payment
type PaymentChange struct {
	Month  string
	Before decimal.Decimal
	After  decimal.Decimal
}

// Delta is the change in club revenue caused by the payment
func (c PaymentChange) Delta() decimal.Decimal {
	return c.After.Sub(c.Before)
}

// RecordPayment marks the month as paid or unpaid and reports the change in
// contribution.
func (p *Player) RecordPayment(month string, pago bool, valorPago decimal.Decimal, now time.Time) (PaymentChange, error) {
	key := NormalizeMonthKey(month)
	if !monthKeyRegex.MatchString(key) {
		return PaymentChange{}, shared.InvalidArgument("Mês inválido")
	}
	if p.Isento {
		return PaymentChange{}, shared.FailedPrecondition("Jogador isento não possui mensalidade")
	}
	if pago && !valorPago.IsPositive() {
		return PaymentChange{}, shared.InvalidArgument("Informe um valor válido")
	}

	if p.Mensalidades == nil {
		p.Mensalidades = make(map[string]Mensalidade)
	}
	current := p.Mensalidades[key]
	change := PaymentChange{Month: key, Before: current.Contribution()}

	base := current.Valor
	if base.IsZero() {
		base = p.ValorMensalidade
	}
	next := Mensalidade{Pago: pago, Valor: base}
	if pago {
		next.ValorPago = valorPago
		next.DataPagamento = now.Format(DateLayout)
	}
	p.Mensalidades[key] = next
	change.After = next.Contribution()
	return change, nil
}

var (
	monthKeyRegex   = regexp.MustCompile(`^\d{4}-\d{2}$`)
	isoDateRegex    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	legacyKeyRegex  = regexp.MustCompile(`^([a-z]{3})/(\d{2})$`)
	legacyMonthAbbr = map[string]int{
		"jan": 1, "fev": 2, "mar": 3, "abr": 4, "mai": 5, "jun": 6,
		"jul": 7, "ago": 8, "set": 9, "out": 10, "nov": 11, "dez": 12,
	}
)

// NormalizeMonthKey converts the month formats found in player records
// (YYYY-MM, ISO dates and "jan/25" style abbreviations) into YYYY-MM. Values
// it cannot interpret are returned lower-cased and trimmed.
func NormalizeMonthKey(value string) string {
	raw := strings.ToLower(strings.TrimSpace(value))
	if raw == "" || monthKeyRegex.MatchString(raw) {
		return raw
	}
	if m := isoDateRegex.FindStringSubmatch(raw); m != nil {
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%s-%02d", m[1], month)
	}
	m := legacyKeyRegex.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	month, ok := legacyMonthAbbr[m[1]]
	if !ok {
		return raw
	}
	year, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%d-%02d", 2000+year, month)
}

// MonthKeyFromIndex returns the key of the idx-th (zero based) month of year,
// used to convert array-shaped mensalidades.
func MonthKeyFromIndex(year, idx int) string {
	return fmt.Sprintf("%d-%02d", year, idx+1)
}
