package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/ComunidadDecidida/mayoristas/internal/infrastructure/config"
	"github.com/ComunidadDecidida/mayoristas/internal/infrastructure/logger"
	"github.com/ComunidadDecidida/mayoristas/internal/infrastructure/migration"
)

const usage = `Usage: migrate <command> [arguments]

Commands:
  up              Apply all pending migrations
  down            Roll back the last migration
  step <n>        Apply n migrations (negative rolls back)
  version         Print the current migration version
  force <v>       Force the version without running migrations
  create <name>   Create a new migration file pair
  list            List migration files

Flags:
  -path string    Migrations directory (default "migrations")
  -log-level string  Log level (default "info")
`

func main() {
	path := flag.String("path", "migrations", "migrations directory")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command := args[0]

	zapLogger, err := logger.New(&logger.Config{Level: *logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	// create and list work without a database connection
	switch command {
	case "create":
		if len(args) < 2 {
			zapLogger.Fatal("create requires a migration name")
		}
		file, err := migration.CreateMigration(*path, args[1])
		if err != nil {
			zapLogger.Fatal("Failed to create migration", zap.Error(err))
		}
		fmt.Println(file.UpPath)
		fmt.Println(file.DownPath)
		return
	case "list":
		names, err := migration.ListMigrations(*path)
		if err != nil {
			zapLogger.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		zapLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	migrator, err := migration.New(db, *path, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize migrator", zap.Error(err))
	}
	defer migrator.Close()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "step":
		if len(args) < 2 {
			zapLogger.Fatal("step requires a count")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			zapLogger.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		err = migrator.Steps(n)
	case "version":
		version, dirty, vErr := migrator.Version()
		if vErr != nil {
			zapLogger.Fatal("Failed to read version", zap.Error(vErr))
		}
		fmt.Printf("version: %d, dirty: %v\n", version, dirty)
		return
	case "force":
		if len(args) < 2 {
			zapLogger.Fatal("force requires a version")
		}
		v, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			zapLogger.Fatal("Invalid version", zap.String("value", args[1]))
		}
		err = migrator.Force(v)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		zapLogger.Fatal("Migration failed", zap.Error(err))
	}
	zapLogger.Info("Done", zap.String("command", command))
}
