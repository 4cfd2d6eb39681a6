package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/hirepipe/hirepipe/api"
	dbfs "github.com/hirepipe/hirepipe/db"
	"github.com/hirepipe/hirepipe/internal/ai"
	"github.com/hirepipe/hirepipe/internal/config"
	"github.com/hirepipe/hirepipe/internal/db"
	"github.com/hirepipe/hirepipe/internal/jobs"
	"github.com/hirepipe/hirepipe/internal/repository/sqlite"
	"github.com/hirepipe/hirepipe/internal/scheduler"
	"github.com/hirepipe/hirepipe/internal/workflow"
	"github.com/hirepipe/hirepipe/pkg/models"
	"github.com/hirepipe/hirepipe/pkg/ollama"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("starting hirepipe server",
		slog.String("version", version),
		slog.String("build_time", buildTime))

	ctx := context.Background()

	// Open database connection and apply migrations plus seed data
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := sqlite.New(database, logger)

	// Seed the configured panel slot pool; re-seeding is idempotent
	for role, slots := range cfg.PanelSlots {
		if err := repo.AddSlots(ctx, role, slots); err != nil {
			log.Fatalf("Failed to seed panel slots for %s: %v", role, err)
		}
	}

	// Model client and decision engine
	client, err := ollama.NewDefaultClient(cfg.Ollama)
	if err != nil {
		log.Fatalf("Failed to create ollama client: %v", err)
	}
	ollama.SetLogger(logger)

	aiEngine, err := ai.NewEngine(ctx, client, cfg.Engine, repo, repo, logger)
	if err != nil {
		log.Fatalf("Failed to create AI engine: %v", err)
	}

	// Workflow engine over the persistent state store
	sched := scheduler.New(repo, logger)
	runner := workflow.NewRunner(aiEngine, sched, aiEngine, aiEngine, cfg.Engine.MaxRounds, logger)
	engine := workflow.NewEngine(repo, runner, logger)

	// Background workers drive queued pipeline runs
	handlers := map[string]jobs.Handler{
		"workflow.run": func(ctx context.Context, j *models.BackgroundJob) error {
			var payload struct {
				JobID string `json:"job_id"`
			}
			if err := json.Unmarshal(j.Payload, &payload); err != nil {
				return err
			}
			_, err := engine.RunToCompletion(ctx, payload.JobID)
			return err
		},
	}
	pool := jobs.NewWorkerPool(repo, handlers, logger, cfg.Workers)
	pool.Start(ctx)

	api.SetLogger(logger)
	handler := api.SetupRoutes(cfg, version, buildTime, repo, engine, aiEngine, pool)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	pool.Stop()

	if err := client.Close(); err != nil {
		logger.Error("closing ollama client", slog.Any("err", err))
	}
	if err := database.Close(); err != nil {
		logger.Error("closing DB", slog.Any("err", err))
	}

	logger.Info("server exited")
}
