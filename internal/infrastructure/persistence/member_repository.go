package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/clubhub/backend/internal/infrastructure/persistence/models"
)

// DocMemberRepository implements identity.MemberRepository
type DocMemberRepository struct {
	store docstore.Store
}

var _ identity.MemberRepository = (*DocMemberRepository)(nil)

// NewDocMemberRepository creates a new DocMemberRepository
func NewDocMemberRepository(store docstore.Store) *DocMemberRepository {
	return &DocMemberRepository{store: store}
}

// FindByUID reads the membership of uid in the club
func (r *DocMemberRepository) FindByUID(ctx context.Context, clubID, uid string) (*identity.Member, error) {
	if docstore.ValidateKey(clubID) != nil || docstore.ValidateKey(uid) != nil {
		return nil, shared.NotFound("Membro não encontrado")
	}
	var doc models.MemberDoc
	err := docstore.GetJSON(ctx, r.store, docstore.ClubMember(clubID, uid), &doc)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, shared.NotFound("Membro não encontrado")
	}
	if err != nil {
		return nil, fmt.Errorf("find member %s: %w", uid, err)
	}
	return doc.ToDomain(uid), nil
}

// Save writes a membership record. Used by provisioning tools and tests.
func (r *DocMemberRepository) Save(ctx context.Context, clubID string, m *identity.Member) error {
	if err := r.store.Set(ctx, docstore.ClubMember(clubID, m.UID), models.FromMember(m)); err != nil {
		return fmt.Errorf("save member %s: %w", m.UID, err)
	}
	return nil
}
