package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/clubhub/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

// DocLegacyRepository implements finance.LegacySource over the root
// categorias_financeiras and financeiro paths and the name-keyed
// clubs/{club}/categorias list
type DocLegacyRepository struct {
	store  docstore.Store
	ledger *DocTransactionRepository
	logger *zap.Logger
}

var _ finance.LegacySource = (*DocLegacyRepository)(nil)

// NewDocLegacyRepository creates a new DocLegacyRepository
func NewDocLegacyRepository(store docstore.Store, logger *zap.Logger) *DocLegacyRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocLegacyRepository{
		store:  store,
		ledger: NewDocTransactionRepository(store, logger),
		logger: logger,
	}
}

// RootCategories implements finance.LegacySource
func (r *DocLegacyRepository) RootCategories(ctx context.Context) ([]finance.Category, error) {
	var out []finance.Category
	for _, tipo := range finance.AllTipos() {
		docs, err := r.store.Children(ctx, docstore.LegacyRootCategoryBucket(tipo.String()))
		if err != nil {
			return nil, fmt.Errorf("list legacy categories %s: %w", tipo, err)
		}
		for _, d := range docs {
			var doc models.CategoryDoc
			if err := d.Decode(&doc); err != nil || strings.TrimSpace(doc.Nome) == "" {
				r.logger.Warn("skipping unreadable legacy category", zap.String("path", d.Path))
				continue
			}
			out = append(out, doc.ToDomain(d.Key, tipo))
		}
	}
	return out, nil
}

// ClubCategories implements finance.LegacySource. The key of each entry is
// the category name; the value is either an object carrying tipo or a bare
// marker.
func (r *DocLegacyRepository) ClubCategories(ctx context.Context, clubID string) ([]finance.Category, int, error) {
	docs, err := r.store.Children(ctx, docstore.LegacyClubCategories(clubID))
	if err != nil {
		return nil, 0, fmt.Errorf("list legacy club categories: %w", err)
	}
	var (
		out     []finance.Category
		skipped int
	)
	for _, d := range docs {
		var doc models.CategoryDoc
		if err := json.Unmarshal(d.Data, &doc); err != nil {
			doc = models.CategoryDoc{}
		}
		nome := strings.TrimSpace(doc.Nome)
		if nome == "" {
			nome = d.Key
		}
		tipo := finance.NormalizeLegacyTipo(doc.Tipo)
		if !tipo.IsValid() {
			skipped++
			r.logger.Warn("legacy category has no tipo", zap.String("path", d.Path))
			continue
		}
		out = append(out, finance.Category{ID: d.Key, Nome: nome, Tipo: tipo})
	}
	return out, skipped, nil
}

// RootTransactions implements finance.LegacySource
func (r *DocLegacyRepository) RootTransactions(ctx context.Context) ([]finance.Transaction, error) {
	docs, err := r.store.Children(ctx, docstore.LegacyRootLedger())
	if err != nil {
		return nil, fmt.Errorf("list legacy ledger: %w", err)
	}
	return r.ledger.decode(docs), nil
}
