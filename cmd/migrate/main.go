package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	appaudit "github.com/clubhub/backend/internal/application/audit"
	financeapp "github.com/clubhub/backend/internal/application/finance"
	"github.com/clubhub/backend/internal/infrastructure/config"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/clubhub/backend/internal/infrastructure/logger"
	"github.com/clubhub/backend/internal/infrastructure/migration"
	"github.com/clubhub/backend/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// legacy moves documents, not schema
	if command == "legacy" {
		runLegacy(cfg, log, args[1:])
		return
	}

	migrationsPath = resolveMigrationsPath(migrationsPath, cfg.Database.MigrationsPath)
	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", migrationsPath),
	)

	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		files, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(files) == 0 {
			log.Info("No migrations found")
			return
		}
		log.Info("Available migrations", zap.Int("count", len(files)))
		for _, f := range files {
			fmt.Println("  -", f)
		}
		return
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "steps":
		n := intArg(log, args, "Step count required. Usage: migrate steps <n>")
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration steps failed", zap.Error(err))
		}

	case "version":
		status, err := m.Status()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if !status.Applied {
			log.Info("No migrations applied")
			return
		}
		log.Info("Current migration version",
			zap.Uint("version", status.Version),
			zap.Bool("dirty", status.Dirty),
		)

	case "force":
		version := intArg(log, args, "Version required. Usage: migrate force <version>")
		log.Warn("Forcing migration version - use with caution!")
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// runLegacy copies a club's finance data out of the pre-multi-club
// locations into the per-club collections of the configured store
func runLegacy(cfg *config.Config, log *zap.Logger, args []string) {
	fs := flag.NewFlagSet("legacy", flag.ExitOnError)
	clubID := fs.String("club", "", "Club ID to migrate (required)")
	dryRun := fs.Bool("dry-run", false, "Report what would be copied without writing")
	_ = fs.Parse(args)

	if *clubID == "" {
		log.Fatal("Club ID required. Usage: migrate legacy -club <id> [-dry-run]")
	}

	store, err := docstore.NewFactory(cfg, docstore.WithLogger(log)).Open()
	if err != nil {
		log.Fatal("Failed to open document store", zap.Error(err))
	}
	defer store.Close()

	recorder := appaudit.NewRecorder(persistence.NewDocAuditRepository(store), cfg.Finance.Location(), appaudit.WithLogger(log))
	service := financeapp.NewMigrationService(
		persistence.NewDocLegacyRepository(store, log),
		persistence.NewDocCategoryRepository(store),
		persistence.NewDocTransactionRepository(store, log),
		persistence.NewDocBalanceCacheRepository(store),
		recorder,
		financeapp.WithLogger(log),
	)

	report, err := service.MigrateClub(context.Background(), *clubID, *dryRun)
	if err != nil {
		log.Fatal("Legacy migration failed", zap.String("club_id", *clubID), zap.Error(err))
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
}

func intArg(log *zap.Logger, args []string, usage string) int {
	if len(args) < 2 {
		log.Fatal(usage)
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		log.Fatal("Invalid number", zap.String("value", args[1]))
	}
	return n
}

func resolveMigrationsPath(flagPath, configured string) string {
	path := flagPath
	if path == "" {
		path = configured
	}
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if execPath, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func printUsage() {
	fmt.Println(`ClubHub Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                          Apply all pending schema migrations
  down                        Roll back all schema migrations
  steps <n>                   Apply n migrations (positive=up, negative=down)
  version                     Show current schema version
  force <version>             Force set schema version (use with caution)
  create <name> [desc]        Create a new migration file pair
  list                        List available migrations
  legacy -club <id> [-dry-run]
                              Copy legacy finance documents into the club's collections

Flags:
  -path string                Path to migrations directory (default: ./migrations)
  -log-level string           Log level: debug, info, warn, error (default: info)

Environment Variables:
  CLUBHUB_DATABASE_HOST, CLUBHUB_DATABASE_PORT, CLUBHUB_DATABASE_USER,
  CLUBHUB_DATABASE_PASSWORD, CLUBHUB_DATABASE_DBNAME, CLUBHUB_STORE_DRIVER

Examples:
  # Apply all pending migrations
  migrate up

  # Preview a legacy copy for one club
  migrate legacy -club club-1 -dry-run`)
}
