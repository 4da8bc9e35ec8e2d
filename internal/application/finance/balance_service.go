package finance

import (
	"context"
	"errors"
	"time"

	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceService serves the club balance from the cache and keeps the cache
// consistent with the ledger
type BalanceService struct {
	transactions finance.TransactionRepository
	players      finance.PlayerRepository
	cache        finance.BalanceCacheRepository
	guard        Authorizer
	audit        ActionRecorder
	ttl          time.Duration
	settings
}

// NewBalanceService creates a new BalanceService. A non-positive ttl uses
// finance.CacheTTL.
func NewBalanceService(
	transactions finance.TransactionRepository,
	players finance.PlayerRepository,
	cache finance.BalanceCacheRepository,
	guard Authorizer,
	recorder ActionRecorder,
	ttl time.Duration,
	opts ...Option,
) *BalanceService {
	if ttl <= 0 {
		ttl = finance.CacheTTL
	}
	return &BalanceService{
		transactions: transactions,
		players:      players,
		cache:        cache,
		guard:        guard,
		audit:        recorder,
		ttl:          ttl,
		settings:     newSettings(opts),
	}
}

// GetBalance returns the club balance. A fresh cache entry is served as is
// unless force is set; otherwise the balance is recomputed from the ledger
// and the paid mensalidades and written back to the cache.
func (s *BalanceService) GetBalance(ctx context.Context, caller *identity.Caller, clubID string, force bool) (*BalanceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "BalanceService", "GetBalance", "club_id", clubID, "force", force)
	defer span.End()

	p, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceReaders...)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if !force {
		cached, err := s.cache.Get(ctx, clubID)
		if err != nil {
			s.log(ctx).Warn("balance cache read failed, recomputing",
				zap.String("club_id", clubID),
				zap.Error(err),
			)
		}
		if cached != nil && cached.IsFresh(now, s.ttl) {
			s.metrics.RecordBalanceRead(ctx, clubID, telemetry.OutcomeCacheHit)
			telemetry.SetAttributes(span, "cached", true)
			snap := cached.Snapshot()
			age := cached.AgeSeconds(now)
			if age < 0 {
				age = 0
			}
			return &BalanceResponse{
				Balance:       snap.Balance,
				TotalReceitas: snap.TotalReceitas,
				TotalDespesas: snap.TotalDespesas,
				Cached:        true,
				CacheAge:      &age,
			}, nil
		}
	}

	totals, err := s.recompute(ctx, clubID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.metrics.RecordBalanceRead(ctx, clubID, telemetry.OutcomeRecomputed)

	entry := totals.Cache(p.UID, now)
	if err := s.cache.Put(ctx, clubID, entry); err != nil {
		s.log(ctx).Warn("failed to write balance cache",
			zap.String("club_id", clubID),
			zap.Error(err),
		)
	}

	b := totals.Balance()
	return &BalanceResponse{
		Balance:       b.Balance,
		TotalReceitas: b.TotalReceitas,
		TotalDespesas: b.TotalDespesas,
		Cached:        false,
	}, nil
}

func (s *BalanceService) recompute(ctx context.Context, clubID string) (*finance.Totals, error) {
	start := s.clock()
	ledger, err := s.transactions.FindAll(ctx, clubID)
	if err != nil {
		return nil, s.internal(ctx, "Erro ao calcular saldo", err, zap.String("club_id", clubID))
	}
	players, err := s.players.FindAll(ctx, clubID)
	if err != nil {
		return nil, s.internal(ctx, "Erro ao calcular saldo", err, zap.String("club_id", clubID))
	}

	var totals finance.Totals
	for i := range ledger {
		totals.AddTransaction(ledger[i].Tipo, ledger[i].Valor)
	}
	for i := range players {
		totals.AddPlayer(&players[i])
	}

	elapsed := s.clock().Sub(start)
	s.metrics.RecordRecompute(ctx, clubID, elapsed)
	s.log(ctx).Debug("balance recomputed",
		zap.String("club_id", clubID),
		zap.Int("transactions", len(ledger)),
		zap.Int("players", len(players)),
		zap.Duration("elapsed", elapsed),
	)
	return &totals, nil
}

// UpdateBalanceCache adds the deltas to the cached totals in a single store
// transaction. When there is no cache entry nothing is written and Success
// is false; callers should then read the balance with force.
func (s *BalanceService) UpdateBalanceCache(ctx context.Context, caller *identity.Caller, clubID string, deltaReceitas, deltaDespesas decimal.Decimal) (*CacheUpdateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "BalanceService", "UpdateBalanceCache", "club_id", clubID)
	defer span.End()

	p, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceWriters...)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	updated, err := s.cache.Adjust(ctx, clubID, func(c *finance.BalanceCache) {
		c.ApplyDelta(deltaReceitas, deltaDespesas, p.UID, finance.UpdateSourceDelta, now)
	})
	if errors.Is(err, finance.ErrCacheAbsent) {
		s.metrics.RecordCacheUpdate(ctx, clubID, telemetry.OutcomeSkipped)
		s.log(ctx).Info("balance cache absent, incremental update skipped", zap.String("club_id", clubID))
		return &CacheUpdateResponse{Success: false, Message: "Cache não atualizado (não existe)"}, nil
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, s.internal(ctx, "Erro ao atualizar cache de saldo", err, zap.String("club_id", clubID))
	}
	s.metrics.RecordCacheUpdate(ctx, clubID, telemetry.OutcomeCommitted)

	snap := updated.Snapshot()
	return &CacheUpdateResponse{
		Success:       true,
		Balance:       &snap.Balance,
		TotalReceitas: &snap.TotalReceitas,
		TotalDespesas: &snap.TotalDespesas,
	}, nil
}

// InvalidateBalanceCache removes the cache entry so the next read recomputes
func (s *BalanceService) InvalidateBalanceCache(ctx context.Context, caller *identity.Caller, clubID string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "BalanceService", "InvalidateBalanceCache", "club_id", clubID)
	defer span.End()

	p, err := s.guard.Authorize(ctx, caller, clubID, identity.AdminOnly...)
	if err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, clubID); err != nil {
		telemetry.RecordError(span, err)
		return s.internal(ctx, "Erro ao invalidar cache de saldo", err, zap.String("club_id", clubID))
	}

	s.audit.RecordAfterCommit(ctx, clubID, actorOf(p),
		audit.ActionCacheInvalidate, "Invalidou cache de saldo", nil)
	return nil
}
