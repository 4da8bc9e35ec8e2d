package finance

import (
	"context"
	"errors"
	"strings"

	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MensalidadeService records membership fee payments on player entries
type MensalidadeService struct {
	players finance.PlayerRepository
	cache   finance.BalanceCacheRepository
	guard   Authorizer
	audit   ActionRecorder
	settings
}

// NewMensalidadeService creates a new MensalidadeService
func NewMensalidadeService(
	players finance.PlayerRepository,
	cache finance.BalanceCacheRepository,
	guard Authorizer,
	recorder ActionRecorder,
	opts ...Option,
) *MensalidadeService {
	return &MensalidadeService{
		players:  players,
		cache:    cache,
		guard:    guard,
		audit:    recorder,
		settings: newSettings(opts),
	}
}

// RecordPayment marks the month of a player as paid (or unpaid) and nudges
// the cached revenue by the change in contribution. An absent cache stays
// absent; a failed adjustment invalidates it.
func (s *MensalidadeService) RecordPayment(ctx context.Context, caller *identity.Caller, clubID, playerID, month string, req RecordPaymentRequest) (*PaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "MensalidadeService", "RecordPayment", "club_id", clubID, "player_id", playerID)
	defer span.End()

	p, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceWriters...)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(playerID) == "" {
		return nil, shared.InvalidArgument("ID do jogador obrigatório")
	}
	if req.Pago && !req.ValorPago.IsPositive() {
		return nil, shared.InvalidArgument("Informe um valor válido")
	}

	now := s.clock()
	var change finance.PaymentChange
	player, err := s.players.Modify(ctx, clubID, playerID, func(pl *finance.Player) error {
		c, err := pl.RecordPayment(month, req.Pago, req.ValorPago, now)
		if err != nil {
			return err
		}
		change = c
		return nil
	})
	if err != nil {
		return nil, s.internal(ctx, "Erro ao registrar pagamento", err,
			zap.String("club_id", clubID),
			zap.String("player_id", playerID),
		)
	}

	cacheUpdated := false
	if delta := change.Delta(); !delta.IsZero() {
		cacheUpdated = s.adjustCache(ctx, clubID, p.UID, delta)
		s.metrics.RecordLedgerMutation(ctx, clubID, "mensalidade", finance.TipoEntrada.String())
	}

	descricao := "Removeu registro de pagamento"
	if req.Pago {
		descricao = "Registrou pagamento de mensalidade: R$ " + req.ValorPago.StringFixed(2)
	}
	s.audit.RecordAfterCommit(ctx, clubID, actorOf(p), audit.ActionMensalidadePago, descricao,
		map[string]any{
			"jogadorId":   playerID,
			"jogadorNome": player.Nome,
			"mes":         change.Month,
			"pago":        req.Pago,
			"valorPago":   req.ValorPago.InexactFloat64(),
		})

	return &PaymentResponse{
		PlayerID:     playerID,
		Month:        change.Month,
		Pago:         req.Pago,
		ValorPago:    req.ValorPago,
		Delta:        change.Delta(),
		CacheUpdated: cacheUpdated,
	}, nil
}

func (s *MensalidadeService) adjustCache(ctx context.Context, clubID, uid string, delta decimal.Decimal) bool {
	now := s.clock()
	_, err := s.cache.Adjust(ctx, clubID, func(c *finance.BalanceCache) {
		c.ApplyDelta(delta, decimal.Zero, uid, finance.UpdateSourceMensalidade, now)
	})
	switch {
	case err == nil:
		s.metrics.RecordCacheUpdate(ctx, clubID, telemetry.OutcomeCommitted)
		return true
	case errors.Is(err, finance.ErrCacheAbsent):
		s.metrics.RecordCacheUpdate(ctx, clubID, telemetry.OutcomeSkipped)
		return false
	default:
		s.log(ctx).Warn("incremental cache update failed, invalidating",
			zap.String("club_id", clubID),
			zap.Error(err),
		)
		s.invalidate(ctx, s.cache, clubID)
		return false
	}
}
