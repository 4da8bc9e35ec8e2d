package persistence

import (
	"context"
	"fmt"

	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
)

// DocAuditRepository implements audit.Repository at clubs/{club}/logs
type DocAuditRepository struct {
	store docstore.Store
}

var _ audit.Repository = (*DocAuditRepository)(nil)

// NewDocAuditRepository creates a new DocAuditRepository
func NewDocAuditRepository(store docstore.Store) *DocAuditRepository {
	return &DocAuditRepository{store: store}
}

// Append stores the entry with its id embedded
func (r *DocAuditRepository) Append(ctx context.Context, clubID string, e *audit.Entry) error {
	e.ID = docstore.NewID()
	if err := r.store.Set(ctx, docstore.Join(docstore.ClubLogs(clubID), e.ID), e); err != nil {
		e.ID = ""
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (r *DocAuditRepository) Recent(ctx context.Context, clubID string, limit int) ([]audit.Entry, error) {
	docs, err := r.store.Children(ctx, docstore.ClubLogs(clubID))
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	out := make([]audit.Entry, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		var e audit.Entry
		if err := docs[i].Decode(&e); err != nil {
			continue
		}
		if e.ID == "" {
			e.ID = docs[i].Key
		}
		out = append(out, e)
	}
	return out, nil
}
