package finance

import (
	"context"
	"fmt"
	"strings"

	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CategoryService manages the category registry of a club
type CategoryService struct {
	categories   finance.CategoryRepository
	transactions finance.TransactionRepository
	guard        Authorizer
	audit        ActionRecorder
	settings
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categories finance.CategoryRepository,
	transactions finance.TransactionRepository,
	guard Authorizer,
	recorder ActionRecorder,
	opts ...Option,
) *CategoryService {
	return &CategoryService{
		categories:   categories,
		transactions: transactions,
		guard:        guard,
		audit:        recorder,
		settings:     newSettings(opts),
	}
}

// CreateCategory adds a category to its tipo bucket. Names are unique within
// a bucket.
func (s *CategoryService) CreateCategory(ctx context.Context, caller *identity.Caller, clubID string, req CreateCategoryRequest) (*CategoryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CategoryService", "CreateCategory", "club_id", clubID, "tipo", req.Tipo)
	defer span.End()

	p, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceWriters...)
	if err != nil {
		return nil, err
	}
	c, err := finance.NewCategory(req.Nome, req.Tipo)
	if err != nil {
		return nil, err
	}

	bucket, err := s.categories.FindByTipo(ctx, clubID, c.Tipo)
	if err != nil {
		return nil, s.internal(ctx, "Erro ao buscar categorias", err, zap.String("club_id", clubID))
	}
	if _, exists := finance.FindByName(bucket, c.Nome); exists {
		return nil, shared.AlreadyExists("Categoria já existe")
	}

	if err := s.categories.Create(ctx, clubID, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, s.internal(ctx, "Erro ao criar categoria", err, zap.String("club_id", clubID))
	}

	s.audit.RecordAfterCommit(ctx, clubID, actorOf(p), audit.ActionCategoryCreate,
		fmt.Sprintf("Criou categoria %s: %s", c.Tipo, c.Nome),
		map[string]any{"categoryName": c.Nome, "tipo": c.Tipo.String(), "categoryId": c.ID})

	return &CategoryResponse{ID: c.ID, Nome: c.Nome, Tipo: c.Tipo.String()}, nil
}

// DeleteCategory removes a category that no ledger record references
func (s *CategoryService) DeleteCategory(ctx context.Context, caller *identity.Caller, clubID, nome string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "CategoryService", "DeleteCategory", "club_id", clubID)
	defer span.End()

	p, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceWriters...)
	if err != nil {
		return err
	}
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return shared.InvalidArgument("Nome da categoria obrigatório")
	}

	c, err := s.categories.FindByName(ctx, clubID, nome)
	if err != nil {
		return s.internal(ctx, "Erro ao buscar categoria", err, zap.String("club_id", clubID))
	}
	inUse, err := s.transactions.ExistsByCategoria(ctx, clubID, c.Nome)
	if err != nil {
		return s.internal(ctx, "Erro ao verificar uso da categoria", err, zap.String("club_id", clubID))
	}
	if inUse {
		return shared.FailedPrecondition("Categoria em uso. Delete as transações primeiro.")
	}

	if err := s.categories.Delete(ctx, clubID, c); err != nil {
		telemetry.RecordError(span, err)
		return s.internal(ctx, "Erro ao excluir categoria", err, zap.String("club_id", clubID))
	}

	s.audit.RecordAfterCommit(ctx, clubID, actorOf(p), audit.ActionCategoryDelete,
		fmt.Sprintf("Deletou categoria %s: %s", c.Tipo, c.Nome),
		map[string]any{"categoryName": c.Nome, "tipo": c.Tipo.String()})
	return nil
}

// ListCategories returns both buckets sorted by name
func (s *CategoryService) ListCategories(ctx context.Context, caller *identity.Caller, clubID string) (*CategoryListResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "CategoryService", "ListCategories", "club_id", clubID)
	defer span.End()

	if _, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceReaders...); err != nil {
		return nil, err
	}

	resp := &CategoryListResponse{}
	for _, tipo := range finance.AllTipos() {
		list, err := s.categories.FindByTipo(ctx, clubID, tipo)
		if err != nil {
			return nil, s.internal(ctx, "Erro ao listar categorias", err, zap.String("club_id", clubID))
		}
		if tipo == finance.TipoEntrada {
			resp.Entrada = toCategoryResponses(list)
		} else {
			resp.Saida = toCategoryResponses(list)
		}
	}
	return resp, nil
}
