package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/gradebook/core/internal/adapters/repository"
	"github.com/gradebook/core/internal/application/services"
	"github.com/gradebook/core/internal/infrastructure/config"
	"github.com/gradebook/core/internal/infrastructure/database"
	"github.com/gradebook/core/internal/infrastructure/logger"
	"github.com/gradebook/core/internal/infrastructure/server"
	"github.com/gradebook/core/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Gradebook API server",
		Long:  "Start the Gradebook API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Staging database migration commands",
		Long:  "Manage migrations for the ingestion staging database (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewIngestCommand creates the raw-data ingestion command
func NewIngestCommand() *cobra.Command {
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a raw CSV or JSON file into a staging table",
		Run: func(cmd *cobra.Command, args []string) {
			file, _ := cmd.Flags().GetString("file")
			table, _ := cmd.Flags().GetString("table")
			schema, _ := cmd.Flags().GetString("schema")

			if file == "" || table == "" {
				log.Fatal("File and table are required")
			}

			runIngestion(file, schema, table)
		},
	}

	ingestCmd.Flags().String("file", "", "Source file, .csv or .json (required)")
	ingestCmd.Flags().String("table", "", "Destination table name (required)")
	ingestCmd.Flags().String("schema", "staging", "Destination schema")

	return ingestCmd
}

// NewHashPasswordCommand creates the admin password hashing helper
func NewHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for AUTH_ADMIN_PASSWORD",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("Failed to hash password: %v", err)
			}
			fmt.Println(string(hash))
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Gradebook version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Gradebook Core v1.1.0")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	appLogger.Info("Starting Gradebook API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"store_path", cfg.Store.Path,
	)

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			appLogger.Info("Server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server shutdown failed", "error", err)
	}
}

func runMigration(direction string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, err := migrate.New("file://migrations", cfg.Database.GetURL())
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration %s failed: %v", direction, err)
	}

	fmt.Printf("Migration %s completed\n", direction)
}

func showMigrationVersion() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, err := migrate.New("file://migrations", cfg.Database.GetURL())
	if err != nil {
		log.Fatalf("Failed to initialize migrations: %v", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to read migration version: %v", err)
	}

	fmt.Printf("Version: %d, dirty: %v\n", version, dirty)
}

func runIngestion(file, schema, table string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to staging database", "error", err)
	}
	defer db.Close()

	datasetStore := repository.NewDatasetRepository(db.DB)
	ingestService := services.NewIngestService(datasetStore, appLogger)

	result, err := ingestService.Ingest(context.Background(), ports.IngestRequest{
		FilePath: file,
		Schema:   schema,
		Table:    table,
	})
	if err != nil {
		appLogger.Fatal("Ingestion failed", "error", err, "file", file)
	}

	fmt.Printf("Ingested %d rows into %s.%s\n", result.RowCount, result.Schema, result.Table)
}
