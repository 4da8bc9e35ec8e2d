package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/clubhub/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

// DocTransactionRepository implements finance.TransactionRepository on the
// document store
type DocTransactionRepository struct {
	store  docstore.Store
	logger *zap.Logger
}

var _ finance.TransactionRepository = (*DocTransactionRepository)(nil)

// NewDocTransactionRepository creates a new DocTransactionRepository
func NewDocTransactionRepository(store docstore.Store, logger *zap.Logger) *DocTransactionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocTransactionRepository{store: store, logger: logger}
}

// FindByID finds a transaction by its id
func (r *DocTransactionRepository) FindByID(ctx context.Context, clubID, id string) (*finance.Transaction, error) {
	if docstore.ValidateKey(id) != nil {
		return nil, shared.NotFound("Transação não encontrada")
	}
	var doc models.TransactionDoc
	err := docstore.GetJSON(ctx, r.store, docstore.ClubTransaction(clubID, id), &doc)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, shared.NotFound("Transação não encontrada")
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction %s: %w", id, err)
	}
	t, ok := doc.ToDomain(id)
	if !ok {
		return nil, shared.FailedPrecondition("Transação com valor inválido")
	}
	return t, nil
}

// FindAll returns the whole ledger ordered by id
func (r *DocTransactionRepository) FindAll(ctx context.Context, clubID string) ([]finance.Transaction, error) {
	docs, err := r.store.Children(ctx, docstore.ClubLedger(clubID))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return r.decode(docs), nil
}

// FindByMes returns the transactions dated in the given YYYY-MM month
func (r *DocTransactionRepository) FindByMes(ctx context.Context, clubID, mes string) ([]finance.Transaction, error) {
	docs, err := r.store.Query(ctx, docstore.ClubLedger(clubID), docstore.Query{Field: "mes", Equal: mes})
	if err != nil {
		return nil, fmt.Errorf("list transactions of %s: %w", mes, err)
	}
	return r.decode(docs), nil
}

// ExistsByCategoria reports whether any transaction references the category
func (r *DocTransactionRepository) ExistsByCategoria(ctx context.Context, clubID, categoria string) (bool, error) {
	docs, err := r.store.Query(ctx, docstore.ClubLedger(clubID), docstore.Query{
		Field: "categoria",
		Equal: categoria,
		Limit: 1,
	})
	if err != nil {
		return false, fmt.Errorf("check category usage: %w", err)
	}
	return len(docs) > 0, nil
}

// Create stores a new transaction under a fresh id
func (r *DocTransactionRepository) Create(ctx context.Context, clubID string, t *finance.Transaction) error {
	t.ID = docstore.NewID()
	if err := r.store.Set(ctx, docstore.ClubTransaction(clubID, t.ID), models.FromTransaction(t)); err != nil {
		t.ID = ""
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// Save overwrites an existing transaction
func (r *DocTransactionRepository) Save(ctx context.Context, clubID string, t *finance.Transaction) error {
	if err := r.store.Set(ctx, docstore.ClubTransaction(clubID, t.ID), models.FromTransaction(t)); err != nil {
		return fmt.Errorf("save transaction %s: %w", t.ID, err)
	}
	return nil
}

// Delete removes a transaction
func (r *DocTransactionRepository) Delete(ctx context.Context, clubID, id string) error {
	if err := r.store.Remove(ctx, docstore.ClubTransaction(clubID, id)); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

func (r *DocTransactionRepository) decode(docs []docstore.Document) []finance.Transaction {
	out := make([]finance.Transaction, 0, len(docs))
	for _, d := range docs {
		var doc models.TransactionDoc
		if err := d.Decode(&doc); err != nil {
			r.logger.Warn("skipping unreadable transaction", zap.String("path", d.Path), zap.Error(err))
			continue
		}
		t, ok := doc.ToDomain(d.Key)
		if !ok {
			r.logger.Warn("skipping transaction with invalid amount", zap.String("path", d.Path))
			continue
		}
		out = append(out, *t)
	}
	return out
}
