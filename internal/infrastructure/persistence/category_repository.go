package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/clubhub/backend/internal/infrastructure/persistence/models"
)

// DocCategoryRepository implements finance.CategoryRepository. Categories
// live under clubs/{club}/categorias_financeiras/{tipo}/{id}.
type DocCategoryRepository struct {
	store docstore.Store
	now   func() time.Time
}

var _ finance.CategoryRepository = (*DocCategoryRepository)(nil)

// NewDocCategoryRepository creates a new DocCategoryRepository
func NewDocCategoryRepository(store docstore.Store) *DocCategoryRepository {
	return &DocCategoryRepository{store: store, now: time.Now}
}

// FindByTipo returns the categories of one bucket ordered by id
func (r *DocCategoryRepository) FindByTipo(ctx context.Context, clubID string, tipo finance.Tipo) ([]finance.Category, error) {
	docs, err := r.store.Children(ctx, docstore.ClubCategoryBucket(clubID, tipo.String()))
	if err != nil {
		return nil, fmt.Errorf("list %s categories: %w", tipo, err)
	}
	out := make([]finance.Category, 0, len(docs))
	for _, d := range docs {
		var doc models.CategoryDoc
		if err := d.Decode(&doc); err != nil || doc.Nome == "" {
			continue
		}
		out = append(out, doc.ToDomain(d.Key, tipo))
	}
	return out, nil
}

// FindByName searches every bucket for a category with the exact name
func (r *DocCategoryRepository) FindByName(ctx context.Context, clubID, nome string) (*finance.Category, error) {
	for _, tipo := range finance.AllTipos() {
		list, err := r.FindByTipo(ctx, clubID, tipo)
		if err != nil {
			return nil, err
		}
		if c, ok := finance.FindByName(list, nome); ok {
			return c, nil
		}
	}
	return nil, shared.NotFound("Categoria não encontrada")
}

// Create stores the category under a fresh id in its tipo bucket
func (r *DocCategoryRepository) Create(ctx context.Context, clubID string, c *finance.Category) error {
	c.ID = docstore.NewID()
	path := docstore.ClubCategory(clubID, c.Tipo.String(), c.ID)
	if err := r.store.Set(ctx, path, models.FromCategory(c, r.now())); err != nil {
		c.ID = ""
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Delete removes the category from its bucket
func (r *DocCategoryRepository) Delete(ctx context.Context, clubID string, c *finance.Category) error {
	if err := r.store.Remove(ctx, docstore.ClubCategory(clubID, c.Tipo.String(), c.ID)); err != nil {
		return fmt.Errorf("delete category %s: %w", c.Nome, err)
	}
	return nil
}
