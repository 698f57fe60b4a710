package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

func main() {
	var (
		migrationsPath string
		configPath     string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&configPath, "config", "", "Configuration file (default: ./config.toml)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if migrationsPath != "" {
		abs, err := filepath.Abs(migrationsPath)
		if err != nil {
			log.Fatal("Failed to resolve migrations path", zap.Error(err))
		}
		migrationsPath = abs
	}

	source := "embedded"
	if migrationsPath != "" {
		source = migrationsPath
	}
	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("source", source),
	)

	// create and list work on files only
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		dir := migrationsPath
		if dir == "" {
			dir = defaultMigrationsDir
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		created, err := migration.Create(dir, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", created.Version),
			zap.String("up_file", created.UpPath),
			zap.String("down_file", created.DownPath),
		)
		return

	case "list":
		var fsys fs.FS = migrations.FS
		if migrationsPath != "" {
			fsys = os.DirFS(migrationsPath)
		}
		entries, err := migration.List(fsys)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(entries) == 0 {
			log.Info("No migrations found")
			return
		}
		log.Info("Available migrations", zap.Int("count", len(entries)))
		for _, e := range entries {
			suffix := ""
			if !e.HasDown {
				suffix = " (no down)"
			}
			fmt.Printf("  - %s%s\n", e.BaseName(), suffix)
		}
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatal("SQL migrations only apply to postgres; sqlite and mongo are migrated by the server",
			zap.String("driver", cfg.Database.Driver))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	// Close releases db as well
	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := run(m, command, args[1:], log); err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func run(m *migration.Migrator, command string, args []string, log *zap.Logger) error {
	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step", "steps":
		if len(args) < 1 {
			return fmt.Errorf("step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return m.Steps(n)

	case "goto":
		if len(args) < 1 {
			return fmt.Errorf("version required. Usage: migrate goto <version>")
		}
		v, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.GoTo(uint(v))

	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil

	case "force":
		if len(args) < 1 {
			return fmt.Errorf("version required. Usage: migrate force <version>")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return m.Force(v)

	case "drop":
		confirmed := false
		for _, a := range args {
			if a == "-confirm" || a == "--confirm" {
				confirmed = true
			}
		}
		if !confirmed {
			return fmt.Errorf("drop cancelled. Use 'migrate drop -confirm' to confirm")
		}
		return m.Drop()

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printUsage() {
	fmt.Println(`Settings Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Migrations directory (default: embedded migrations)
  -config string        Configuration file (default: ./config.toml)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  ERP_DATABASE_HOST, ERP_DATABASE_PORT, ERP_DATABASE_USER,
  ERP_DATABASE_PASSWORD, ERP_DATABASE_DBNAME, ERP_DATABASE_SSLMODE

Examples:
  migrate up
  migrate step -1
  migrate -path ./migrations create add_audit_columns "Track who changed a setting"
  migrate version`)
}
