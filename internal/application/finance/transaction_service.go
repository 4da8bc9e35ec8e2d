package finance

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/identity"
	"github.com/clubhub/backend/internal/domain/shared"
	"github.com/clubhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

var mesRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

// TransactionService manages the ledger records of a club. Every committed
// write invalidates the balance cache.
type TransactionService struct {
	transactions     finance.TransactionRepository
	categories       finance.CategoryRepository
	cache            finance.BalanceCacheRepository
	guard            Authorizer
	audit            ActionRecorder
	immutabilityDays int
	settings
}

// NewTransactionService creates a new TransactionService. Records dated more
// than immutabilityDays ago cannot be edited or deleted; 0 disables the check.
func NewTransactionService(
	transactions finance.TransactionRepository,
	categories finance.CategoryRepository,
	cache finance.BalanceCacheRepository,
	guard Authorizer,
	recorder ActionRecorder,
	immutabilityDays int,
	opts ...Option,
) *TransactionService {
	return &TransactionService{
		transactions:     transactions,
		categories:       categories,
		cache:            cache,
		guard:            guard,
		audit:            recorder,
		immutabilityDays: immutabilityDays,
		settings:         newSettings(opts),
	}
}

// AddFinancialTransaction validates and appends a ledger record
func (s *TransactionService) AddFinancialTransaction(ctx context.Context, caller *identity.Caller, clubID string, req AddTransactionRequest) (*AddTransactionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "TransactionService", "AddFinancialTransaction", "club_id", clubID, "tipo", req.Tipo)
	defer span.End()

	p, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceWriters...)
	if err != nil {
		return nil, err
	}

	t, err := finance.NewTransaction(finance.NewTransactionInput{
		Tipo:        req.Tipo,
		Categoria:   req.Categoria,
		Valor:       req.Valor,
		Descricao:   req.Descricao,
		Observacoes: req.Observacoes,
		Data:        req.Data,
	}, authorOf(p), s.clock())
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, clubID, t.Categoria); err != nil {
		return nil, err
	}

	if err := s.transactions.Create(ctx, clubID, t); err != nil {
		telemetry.RecordError(span, err)
		return nil, s.internal(ctx, "Erro ao salvar transação", err, zap.String("club_id", clubID))
	}
	s.invalidate(ctx, s.cache, clubID)
	s.metrics.RecordLedgerMutation(ctx, clubID, "add", t.Tipo.String())

	s.audit.RecordAfterCommit(ctx, clubID, actorOf(p), audit.ActionFinancialAdd,
		fmt.Sprintf("Adicionou %s: %s - R$ %s", t.Tipo, t.Descricao, t.Valor.String()),
		map[string]any{
			"transactionId": t.ID,
			"tipo":          t.Tipo.String(),
			"categoria":     t.Categoria,
			"valor":         t.Valor.InexactFloat64(),
		})

	s.log(ctx).Info("transaction created",
		zap.String("club_id", clubID),
		zap.String("transaction_id", t.ID),
	)
	return &AddTransactionResponse{Success: true, TransactionID: t.ID}, nil
}

// UpdateFinancialTransaction merges the allowed fields of updates into an
// existing record and stamps the edit fields
func (s *TransactionService) UpdateFinancialTransaction(ctx context.Context, caller *identity.Caller, clubID, transactionID string, updates map[string]json.RawMessage) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "TransactionService", "UpdateFinancialTransaction", "club_id", clubID, "transaction_id", transactionID)
	defer span.End()

	p, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceWriters...)
	if err != nil {
		return err
	}
	t, err := s.loadMutable(ctx, clubID, transactionID)
	if err != nil {
		return err
	}

	patch, err := ParseTransactionPatch(updates)
	if err != nil {
		return err
	}
	if patch.ChangesCategoria(t.Categoria) {
		if err := s.requireCategory(ctx, clubID, strings.TrimSpace(*patch.Categoria)); err != nil {
			return err
		}
	}

	oldData := transactionData(t)
	oldDescricao := t.Descricao
	t.Apply(patch, authorOf(p), s.clock())
	if err := s.transactions.Save(ctx, clubID, t); err != nil {
		telemetry.RecordError(span, err)
		return s.internal(ctx, "Erro ao atualizar transação", err,
			zap.String("club_id", clubID),
			zap.String("transaction_id", transactionID),
		)
	}
	s.invalidate(ctx, s.cache, clubID)
	s.metrics.RecordLedgerMutation(ctx, clubID, "update", t.Tipo.String())

	s.audit.RecordAfterCommit(ctx, clubID, actorOf(p), audit.ActionFinancialUpdate,
		"Editou transação: "+oldDescricao,
		map[string]any{
			"transactionId": transactionID,
			"oldData":       oldData,
			"newData":       patchData(patch),
		})
	return nil
}

// DeleteFinancialTransaction removes a ledger record
func (s *TransactionService) DeleteFinancialTransaction(ctx context.Context, caller *identity.Caller, clubID, transactionID string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "TransactionService", "DeleteFinancialTransaction", "club_id", clubID, "transaction_id", transactionID)
	defer span.End()

	p, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceWriters...)
	if err != nil {
		return err
	}
	t, err := s.loadMutable(ctx, clubID, transactionID)
	if err != nil {
		return err
	}

	if err := s.transactions.Delete(ctx, clubID, t.ID); err != nil {
		telemetry.RecordError(span, err)
		return s.internal(ctx, "Erro ao excluir transação", err,
			zap.String("club_id", clubID),
			zap.String("transaction_id", transactionID),
		)
	}
	s.invalidate(ctx, s.cache, clubID)
	s.metrics.RecordLedgerMutation(ctx, clubID, "delete", t.Tipo.String())

	s.audit.RecordAfterCommit(ctx, clubID, actorOf(p), audit.ActionFinancialDelete,
		fmt.Sprintf("Excluiu %s: %s - R$ %s", t.Tipo, t.Descricao, t.Valor.String()),
		map[string]any{
			"transactionId": t.ID,
			"tipo":          t.Tipo.String(),
			"categoria":     t.Categoria,
			"valor":         t.Valor.InexactFloat64(),
		})
	return nil
}

// ListTransactions returns a page of the ledger, newest first, optionally
// restricted to one YYYY-MM month
func (s *TransactionService) ListTransactions(ctx context.Context, caller *identity.Caller, clubID string, req ListTransactionsRequest) (shared.Paginated[TransactionResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "TransactionService", "ListTransactions", "club_id", clubID, "mes", req.Mes)
	defer span.End()

	if _, err := s.guard.Authorize(ctx, caller, clubID, identity.FinanceReaders...); err != nil {
		return shared.Paginated[TransactionResponse]{}, err
	}

	var (
		list []finance.Transaction
		err  error
	)
	if req.Mes != "" {
		if !mesRegex.MatchString(req.Mes) {
			return shared.Paginated[TransactionResponse]{}, shared.InvalidArgument("Mês inválido. Use o formato AAAA-MM")
		}
		list, err = s.transactions.FindByMes(ctx, clubID, req.Mes)
	} else {
		list, err = s.transactions.FindAll(ctx, clubID)
	}
	if err != nil {
		return shared.Paginated[TransactionResponse]{}, s.internal(ctx, "Erro ao listar transações", err, zap.String("club_id", clubID))
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Data != list[j].Data {
			return list[i].Data > list[j].Data
		}
		return list[i].Timestamp > list[j].Timestamp
	})
	items := make([]TransactionResponse, len(list))
	for i := range list {
		items[i] = ToTransactionResponse(&list[i])
	}
	return shared.Paginate(items, shared.Filter{Page: req.Page, PageSize: req.PageSize}), nil
}

// requireCategory checks that a category with the name exists in either bucket
func (s *TransactionService) requireCategory(ctx context.Context, clubID, nome string) error {
	if _, err := s.categories.FindByName(ctx, clubID, nome); err != nil {
		if shared.HasCode(err, shared.CodeNotFound) {
			return shared.NotFound("Categoria não encontrada")
		}
		return s.internal(ctx, "Erro ao verificar categoria", err, zap.String("club_id", clubID))
	}
	return nil
}

// loadMutable reads a record and enforces the immutability window
func (s *TransactionService) loadMutable(ctx context.Context, clubID, transactionID string) (*finance.Transaction, error) {
	if strings.TrimSpace(transactionID) == "" {
		return nil, shared.InvalidArgument("ID da transação obrigatório")
	}
	t, err := s.transactions.FindByID(ctx, clubID, transactionID)
	if err != nil {
		return nil, s.internal(ctx, "Erro ao buscar transação", err,
			zap.String("club_id", clubID),
			zap.String("transaction_id", transactionID),
		)
	}
	if s.immutabilityDays > 0 && t.AgeDays(s.clock()) > s.immutabilityDays {
		return nil, shared.FailedPrecondition(fmt.Sprintf("Transação imutável (>%d dias). Data: %s", s.immutabilityDays, t.Data))
	}
	return t, nil
}
