package finance

import (
	"context"
	"errors"
)

// ErrCacheAbsent is returned by an incremental cache update when there is no
// cache entry to adjust.
var ErrCacheAbsent = errors.New("balance cache absent")

// TransactionRepository is the ledger of a club
type TransactionRepository interface {
	// FindByID returns shared.ErrNotFound (code not-found) when absent
	FindByID(ctx context.Context, clubID, id string) (*Transaction, error)
	// FindAll returns every record of the ledger. Records whose amount cannot
	// be read are skipped.
	FindAll(ctx context.Context, clubID string) ([]Transaction, error)
	FindByMes(ctx context.Context, clubID, mes string) ([]Transaction, error)
	ExistsByCategoria(ctx context.Context, clubID, categoria string) (bool, error)
	// Create stores t under a new id and sets t.ID
	Create(ctx context.Context, clubID string, t *Transaction) error
	Save(ctx context.Context, clubID string, t *Transaction) error
	Delete(ctx context.Context, clubID, id string) error
}

// CategoryRepository stores categories under their tipo bucket
type CategoryRepository interface {
	FindByTipo(ctx context.Context, clubID string, tipo Tipo) ([]Category, error)
	FindByName(ctx context.Context, clubID, nome string) (*Category, error)
	Create(ctx context.Context, clubID string, c *Category) error
	Delete(ctx context.Context, clubID string, c *Category) error
}

// BalanceCacheRepository holds the single cached aggregate of a club
type BalanceCacheRepository interface {
	// Get returns nil and no error when the cache is absent
	Get(ctx context.Context, clubID string) (*BalanceCache, error)
	Put(ctx context.Context, clubID string, c *BalanceCache) error
	Invalidate(ctx context.Context, clubID string) error
	// Adjust atomically applies fn to the current entry. It returns
	// ErrCacheAbsent without writing when there is no entry.
	Adjust(ctx context.Context, clubID string, fn func(c *BalanceCache)) (*BalanceCache, error)
}

// PlayerRepository reads roster entries and updates their mensalidades
type PlayerRepository interface {
	FindAll(ctx context.Context, clubID string) ([]Player, error)
	// Modify atomically applies fn to the player. Returning an error from fn
	// aborts without writing.
	Modify(ctx context.Context, clubID, playerID string, fn func(p *Player) error) (*Player, error)
}

// LegacySource reads finance data from storage locations used before
// categories and the ledger were scoped per club. It backs the one-time
// migration only.
type LegacySource interface {
	// RootCategories returns the categories of the root buckets
	RootCategories(ctx context.Context) ([]Category, error)
	// ClubCategories returns the name-keyed categories of a club. Entries
	// without a recognizable tipo are counted in skipped.
	ClubCategories(ctx context.Context, clubID string) (cats []Category, skipped int, err error)
	// RootTransactions returns the root ledger
	RootTransactions(ctx context.Context) ([]Transaction, error)
}
