package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcomes recorded on balance reads and cache updates
const (
	OutcomeCacheHit   = "cache_hit"
	OutcomeRecomputed = "recomputed"
	OutcomeCommitted  = "committed"
	OutcomeSkipped    = "skipped"
)

// FinanceMetrics counts balance reads, cache updates and ledger mutations.
// A nil *FinanceMetrics is valid and records nothing.
type FinanceMetrics struct {
	balanceReads    *Counter
	cacheUpdates    *Counter
	ledgerMutations *Counter
	authDenials     *Counter
	recompute       *Histogram
}

// NewFinanceMetrics registers the finance instruments on meter
func NewFinanceMetrics(meter metric.Meter) (*FinanceMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	var (
		m   FinanceMetrics
		err error
	)
	if m.balanceReads, err = NewCounter(meter, "finance.balance.reads", "Balance reads by outcome", "{read}"); err != nil {
		return nil, err
	}
	if m.cacheUpdates, err = NewCounter(meter, "finance.balance_cache.updates", "Incremental balance cache updates by outcome", "{update}"); err != nil {
		return nil, err
	}
	if m.ledgerMutations, err = NewCounter(meter, "finance.ledger.mutations", "Ledger mutations by operation", "{mutation}"); err != nil {
		return nil, err
	}
	if m.authDenials, err = NewCounter(meter, "finance.auth.denials", "Rejected finance requests by error code", "{request}"); err != nil {
		return nil, err
	}
	if m.recompute, err = NewHistogram(meter, "finance.balance.recompute.duration", "Full balance recomputation time", "s", SmallDurationBuckets); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordBalanceRead counts a balance read
func (m *FinanceMetrics) RecordBalanceRead(ctx context.Context, clubID, outcome string) {
	if m == nil {
		return
	}
	m.balanceReads.Inc(ctx, AttrClubID.String(clubID), AttrOutcome.String(outcome))
}

// RecordRecompute records the duration of a full recomputation
func (m *FinanceMetrics) RecordRecompute(ctx context.Context, clubID string, d time.Duration) {
	if m == nil {
		return
	}
	m.recompute.RecordDuration(ctx, d, AttrClubID.String(clubID))
}

// RecordCacheUpdate counts an incremental cache update
func (m *FinanceMetrics) RecordCacheUpdate(ctx context.Context, clubID, outcome string) {
	if m == nil {
		return
	}
	m.cacheUpdates.Inc(ctx, AttrClubID.String(clubID), AttrOutcome.String(outcome))
}

// RecordLedgerMutation counts a committed ledger change
func (m *FinanceMetrics) RecordLedgerMutation(ctx context.Context, clubID, operation, tipo string) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrClubID.String(clubID), AttrOperation.String(operation)}
	if tipo != "" {
		attrs = append(attrs, AttrTipo.String(tipo))
	}
	m.ledgerMutations.Inc(ctx, attrs...)
}

// RecordDenial counts a request rejected by the authorization guard
func (m *FinanceMetrics) RecordDenial(ctx context.Context, clubID, code string) {
	if m == nil {
		return
	}
	m.authDenials.Inc(ctx, AttrClubID.String(clubID), AttrOutcome.String(code))
}
