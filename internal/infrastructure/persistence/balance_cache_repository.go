package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/clubhub/backend/internal/infrastructure/persistence/models"
)

// DocBalanceCacheRepository implements finance.BalanceCacheRepository at
// clubs/{club}/cache/balance
type DocBalanceCacheRepository struct {
	store docstore.Store
}

var _ finance.BalanceCacheRepository = (*DocBalanceCacheRepository)(nil)

// NewDocBalanceCacheRepository creates a new DocBalanceCacheRepository
func NewDocBalanceCacheRepository(store docstore.Store) *DocBalanceCacheRepository {
	return &DocBalanceCacheRepository{store: store}
}

// Get returns the cache entry, or nil when there is none. An entry that
// cannot be decoded is treated as absent.
func (r *DocBalanceCacheRepository) Get(ctx context.Context, clubID string) (*finance.BalanceCache, error) {
	var doc models.BalanceCacheDoc
	err := docstore.GetJSON(ctx, r.store, docstore.ClubBalanceCache(clubID), &doc)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read balance cache: %w", err)
	}
	return doc.ToDomain(), nil
}

// Put overwrites the cache entry
func (r *DocBalanceCacheRepository) Put(ctx context.Context, clubID string, c *finance.BalanceCache) error {
	if err := r.store.Set(ctx, docstore.ClubBalanceCache(clubID), models.FromBalanceCache(c)); err != nil {
		return fmt.Errorf("write balance cache: %w", err)
	}
	return nil
}

// Invalidate removes the cache entry
func (r *DocBalanceCacheRepository) Invalidate(ctx context.Context, clubID string) error {
	if err := r.store.Remove(ctx, docstore.ClubBalanceCache(clubID)); err != nil {
		return fmt.Errorf("invalidate balance cache: %w", err)
	}
	return nil
}

// Adjust applies fn to the entry inside a store transaction
func (r *DocBalanceCacheRepository) Adjust(ctx context.Context, clubID string, fn func(c *finance.BalanceCache)) (*finance.BalanceCache, error) {
	res, err := r.store.Transaction(ctx, docstore.ClubBalanceCache(clubID), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, docstore.ErrAbort
		}
		var doc models.BalanceCacheDoc
		if err := json.Unmarshal(current, &doc); err != nil {
			return nil, docstore.ErrAbort
		}
		c := doc.ToDomain()
		fn(c)
		return json.Marshal(models.FromBalanceCache(c))
	})
	if err != nil {
		return nil, fmt.Errorf("adjust balance cache: %w", err)
	}
	if !res.Committed {
		return nil, finance.ErrCacheAbsent
	}

	var doc models.BalanceCacheDoc
	if err := json.Unmarshal(res.Snapshot, &doc); err != nil {
		return nil, fmt.Errorf("decode balance cache: %w", err)
	}
	return doc.ToDomain(), nil
}
