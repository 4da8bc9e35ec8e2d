package finance

import (
	"context"
	"fmt"

	appaudit "github.com/clubhub/backend/internal/application/audit"
	"github.com/clubhub/backend/internal/domain/audit"
	"github.com/clubhub/backend/internal/domain/finance"
	"github.com/clubhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MigrationActor signs the audit entry of a legacy migration
var MigrationActor = appaudit.Actor{Usuario: "migrate-cli", Role: "admin"}

// MigrationReport counts what a legacy migration copied or would copy
type MigrationReport struct {
	ClubID               string `json:"clubId"`
	DryRun               bool   `json:"dryRun"`
	CategoriesCopied     int    `json:"categoriesCopied"`
	CategoriesExisting   int    `json:"categoriesExisting"`
	CategoriesSkipped    int    `json:"categoriesSkipped"`
	TransactionsCopied   int    `json:"transactionsCopied"`
	TransactionsExisting int    `json:"transactionsExisting"`
}

// MigrationService copies finance data from the legacy storage locations
// into the canonical per-club paths. Running it twice copies nothing new.
type MigrationService struct {
	legacy       finance.LegacySource
	categories   finance.CategoryRepository
	transactions finance.TransactionRepository
	cache        finance.BalanceCacheRepository
	audit        ActionRecorder
	settings
}

// NewMigrationService creates a new MigrationService
func NewMigrationService(
	legacy finance.LegacySource,
	categories finance.CategoryRepository,
	transactions finance.TransactionRepository,
	cache finance.BalanceCacheRepository,
	recorder ActionRecorder,
	opts ...Option,
) *MigrationService {
	return &MigrationService{
		legacy:       legacy,
		categories:   categories,
		transactions: transactions,
		cache:        cache,
		audit:        recorder,
		settings:     newSettings(opts),
	}
}

// MigrateClub copies root categories, the club's name-keyed categories and
// the root ledger into the club. With dryRun nothing is written.
func (s *MigrationService) MigrateClub(ctx context.Context, clubID string, dryRun bool) (*MigrationReport, error) {
	if clubID == "" {
		return nil, shared.InvalidArgument("ID do clube obrigatório")
	}
	report := &MigrationReport{ClubID: clubID, DryRun: dryRun}

	if err := s.migrateCategories(ctx, clubID, dryRun, report); err != nil {
		return report, err
	}
	if err := s.migrateLedger(ctx, clubID, dryRun, report); err != nil {
		return report, err
	}

	s.log(ctx).Info("legacy finance migration finished",
		zap.String("club_id", clubID),
		zap.Bool("dry_run", dryRun),
		zap.Int("categories_copied", report.CategoriesCopied),
		zap.Int("categories_skipped", report.CategoriesSkipped),
		zap.Int("transactions_copied", report.TransactionsCopied),
	)
	if dryRun {
		return report, nil
	}

	if report.TransactionsCopied > 0 {
		s.invalidate(ctx, s.cache, clubID)
	}
	if report.CategoriesCopied > 0 || report.TransactionsCopied > 0 {
		s.audit.RecordAfterCommit(ctx, clubID, MigrationActor, audit.ActionLegacyMigration,
			fmt.Sprintf("Migrou %d categorias e %d transações", report.CategoriesCopied, report.TransactionsCopied),
			map[string]any{
				"categoriesCopied":   report.CategoriesCopied,
				"transactionsCopied": report.TransactionsCopied,
			})
	}
	return report, nil
}

func (s *MigrationService) migrateCategories(ctx context.Context, clubID string, dryRun bool, report *MigrationReport) error {
	root, err := s.legacy.RootCategories(ctx)
	if err != nil {
		return fmt.Errorf("read root categories: %w", err)
	}
	named, skipped, err := s.legacy.ClubCategories(ctx, clubID)
	if err != nil {
		return fmt.Errorf("read club categories: %w", err)
	}
	report.CategoriesSkipped = skipped

	buckets := make(map[finance.Tipo][]finance.Category, 2)
	for _, tipo := range finance.AllTipos() {
		list, err := s.categories.FindByTipo(ctx, clubID, tipo)
		if err != nil {
			return fmt.Errorf("read %s categories: %w", tipo, err)
		}
		buckets[tipo] = list
	}

	for _, legacy := range append(root, named...) {
		if _, exists := finance.FindByName(buckets[legacy.Tipo], legacy.Nome); exists {
			report.CategoriesExisting++
			continue
		}
		c := &finance.Category{Nome: legacy.Nome, Tipo: legacy.Tipo}
		if !dryRun {
			if err := s.categories.Create(ctx, clubID, c); err != nil {
				return fmt.Errorf("copy category %s: %w", legacy.Nome, err)
			}
		}
		buckets[c.Tipo] = append(buckets[c.Tipo], *c)
		report.CategoriesCopied++
	}
	return nil
}

func (s *MigrationService) migrateLedger(ctx context.Context, clubID string, dryRun bool, report *MigrationReport) error {
	root, err := s.legacy.RootTransactions(ctx)
	if err != nil {
		return fmt.Errorf("read root ledger: %w", err)
	}
	for i := range root {
		t := root[i]
		_, err := s.transactions.FindByID(ctx, clubID, t.ID)
		if err == nil {
			report.TransactionsExisting++
			continue
		}
		if !shared.HasCode(err, shared.CodeNotFound) {
			return fmt.Errorf("check transaction %s: %w", t.ID, err)
		}
		if !dryRun {
			if err := s.transactions.Save(ctx, clubID, &t); err != nil {
				return fmt.Errorf("copy transaction %s: %w", t.ID, err)
			}
		}
		report.TransactionsCopied++
	}
	return nil
}
