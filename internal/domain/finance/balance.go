package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// CacheTTL is the freshness window of the balance cache
const CacheTTL = 5 * time.Minute

// Sources that stamp the lastUpdate field of an incrementally adjusted cache
const (
	UpdateSourceDelta       = "delta"
	UpdateSourceMensalidade = "mensalidade"
)

// Balance is the aggregate returned to callers
type Balance struct {
	Balance       decimal.Decimal
	TotalReceitas decimal.Decimal
	TotalDespesas decimal.Decimal
}

// BalanceCache is the cached aggregate stored per club.
// Balance is always TotalReceitas - TotalDespesas.
type BalanceCache struct {
	Balance           decimal.Decimal
	TotalReceitas     decimal.Decimal
	TotalDespesas     decimal.Decimal
	Timestamp         int64 // epoch millis
	CalculatedBy      string
	LastUpdate        string
	IncrementalUpdate bool
}

// NewBalanceCache builds a cache entry from totals
func NewBalanceCache(receitas, despesas decimal.Decimal, calculatedBy string, now time.Time) *BalanceCache {
	return &BalanceCache{
		Balance:       receitas.Sub(despesas),
		TotalReceitas: receitas,
		TotalDespesas: despesas,
		Timestamp:     now.UnixMilli(),
		CalculatedBy:  calculatedBy,
	}
}

// Age returns the time elapsed since the cache was written
func (c *BalanceCache) Age(now time.Time) time.Duration {
	return now.Sub(time.UnixMilli(c.Timestamp))
}

// AgeSeconds returns the cache age in whole seconds
func (c *BalanceCache) AgeSeconds(now time.Time) int64 {
	return int64(c.Age(now) / time.Second)
}

// IsFresh reports whether the cache can be served without recomputation
func (c *BalanceCache) IsFresh(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = CacheTTL
	}
	return c.Age(now) < ttl
}

// ApplyDelta adjusts the cached totals and recomputes the balance.
func (c *BalanceCache) ApplyDelta(deltaReceitas, deltaDespesas decimal.Decimal, by, source string, now time.Time) {
	c.TotalReceitas = c.TotalReceitas.Add(deltaReceitas)
	c.TotalDespesas = c.TotalDespesas.Add(deltaDespesas)
	c.Balance = c.TotalReceitas.Sub(c.TotalDespesas)
	c.Timestamp = now.UnixMilli()
	c.CalculatedBy = by
	c.LastUpdate = source
	c.IncrementalUpdate = true
}

// Snapshot returns the balance triple of the cache
func (c *BalanceCache) Snapshot() Balance {
	return Balance{
		Balance:       c.TotalReceitas.Sub(c.TotalDespesas),
		TotalReceitas: c.TotalReceitas,
		TotalDespesas: c.TotalDespesas,
	}
}

// Totals accumulates a full recomputation of a club balance
type Totals struct {
	Receitas decimal.Decimal
	Despesas decimal.Decimal
}

// AddTransaction adds a ledger record to the totals. Records with an unknown
// tipo are ignored.
func (t *Totals) AddTransaction(tipo Tipo, valor decimal.Decimal) {
	switch tipo {
	case TipoEntrada:
		t.Receitas = t.Receitas.Add(valor)
	case TipoSaida:
		t.Despesas = t.Despesas.Add(valor)
	}
}

// AddPlayer adds every paid mensalidade of the player to the revenue
func (t *Totals) AddPlayer(p *Player) {
	for _, m := range p.Mensalidades {
		t.Receitas = t.Receitas.Add(m.Contribution())
	}
}

// Balance returns the balance triple of the totals
func (t *Totals) Balance() Balance {
	return Balance{
		Balance:       t.Receitas.Sub(t.Despesas),
		TotalReceitas: t.Receitas,
		TotalDespesas: t.Despesas,
	}
}

// Cache converts the totals into a cache entry
func (t *Totals) Cache(calculatedBy string, now time.Time) *BalanceCache {
	return NewBalanceCache(t.Receitas, t.Despesas, calculatedBy, now)
}
