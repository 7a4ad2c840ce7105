package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docflow/docflow/config"
	"github.com/docflow/docflow/contract"
	"github.com/docflow/docflow/errors"
	"github.com/docflow/docflow/extract"
	"github.com/docflow/docflow/job"
	"github.com/docflow/docflow/logger"
	"github.com/docflow/docflow/server"
)

// JSONLogs switches log output to structured JSON, set by the root
// command's persistent flag
var JSONLogs bool

var (
	serveConfigPath string
	servePort       int
	serveDBPath     string
)

// ServeCmd starts the DocFlow HTTP server
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the DocFlow extraction and registration server",
	Long: `Launch the DocFlow HTTP server: document submission, extraction job
tracking with progress polling, WebSocket job updates, and the contract
registry API.`,
	RunE: runServe,
}

func init() {
	ServeCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a TOML config file (overrides discovery)")
	ServeCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config)")
	ServeCmd.Flags().StringVar(&serveDBPath, "db-path", "", "Contract database path (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Logger

	cfg, err := loadConfig()
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	if serveDBPath != "" {
		cfg.Database.Path = serveDBPath
	}

	db, err := contract.Open(cfg.Database.Path, log)
	if err != nil {
		return errors.Wrap(err, "open contract database")
	}
	defer db.Close()
	contracts := contract.NewStore(db, log)

	engine := extract.NewTesseractEngine(cfg.Extraction.TesseractPath, cfg.Extraction.Languages, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := job.NewStore(cfg.Jobs.MaxTracked, log)
	store.StartReaper(ctx, time.Minute, cfg.Jobs.Retention())

	pool := job.NewWorkerPool(ctx, store, engine, job.PoolConfig{
		Workers:    cfg.Jobs.Workers,
		QueueDepth: cfg.Jobs.MaxTracked,
		Timeout:    cfg.Jobs.Timeout(),
	}, log)
	pool.Start()
	defer pool.Stop()

	manager := job.NewManager(store, pool, cfg.Jobs.MaxUploadBytes, log)

	srv := server.NewServer(cfg, manager, contracts, log)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	log.Infow("DocFlow started",
		"port", cfg.Server.Port,
		"workers", cfg.Jobs.Workers,
		"max_tracked_jobs", cfg.Jobs.MaxTracked,
		"database", cfg.Database.Path,
	)

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Infow("Shutdown signal received, draining")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("HTTP shutdown incomplete", "error", err)
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if serveConfigPath != "" {
		return config.LoadFromFile(serveConfigPath)
	}
	return config.Load()
}
