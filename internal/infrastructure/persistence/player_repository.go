package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/clubhub/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

// DocPlayerRepository implements finance.PlayerRepository on the roster
// stored at clubs/{club}/jogadores
type DocPlayerRepository struct {
	store  docstore.Store
	logger *zap.Logger
	now    func() time.Time
}

var _ finance.PlayerRepository = (*DocPlayerRepository)(nil)

// NewDocPlayerRepository creates a new DocPlayerRepository
func NewDocPlayerRepository(store docstore.Store, logger *zap.Logger) *DocPlayerRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocPlayerRepository{store: store, logger: logger, now: time.Now}
}

// FindAll returns every player of the club. Players whose document cannot
// be read are skipped.
func (r *DocPlayerRepository) FindAll(ctx context.Context, clubID string) ([]finance.Player, error) {
	docs, err := r.store.Children(ctx, docstore.ClubPlayers(clubID))
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	year := r.now().Year()
	out := make([]finance.Player, 0, len(docs))
	for _, d := range docs {
		var doc models.PlayerDoc
		if err := d.Decode(&doc); err != nil {
			r.logger.Warn("skipping unreadable player", zap.String("path", d.Path), zap.Error(err))
			continue
		}
		p, err := doc.ToDomain(d.Key, year)
		if err != nil {
			r.logger.Warn("skipping player", zap.String("path", d.Path), zap.Error(err))
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

// Modify applies fn to the player inside a store transaction and writes the
// mensalidades back keyed by month
func (r *DocPlayerRepository) Modify(ctx context.Context, clubID, playerID string, fn func(p *finance.Player) error) (*finance.Player, error) {
	if docstore.ValidateKey(playerID) != nil {
		return nil, shared.NotFound("Jogador não encontrado")
	}
	year := r.now().Year()
	var (
		updated *finance.Player
		fnErr   error
	)
	res, err := r.store.Transaction(ctx, docstore.ClubPlayer(clubID, playerID), func(current []byte) ([]byte, error) {
		updated, fnErr = nil, nil
		if current == nil {
			fnErr = shared.NotFound("Jogador não encontrado")
			return nil, docstore.ErrAbort
		}
		var doc models.PlayerDoc
		if err := json.Unmarshal(current, &doc); err != nil {
			return nil, fmt.Errorf("decode player %s: %w", playerID, err)
		}
		p, err := doc.ToDomain(playerID, year)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			fnErr = err
			return nil, docstore.ErrAbort
		}
		updated = p
		return models.MergePlayer(current, p)
	})
	if err != nil {
		return nil, fmt.Errorf("update player %s: %w", playerID, err)
	}
	if fnErr != nil {
		return nil, fnErr
	}
	if !res.Committed || updated == nil {
		return nil, errors.New("player update was not committed")
	}
	return updated, nil
}
