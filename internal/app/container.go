package app

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/doeshing/reachout/internal/domain"
	"github.com/doeshing/reachout/internal/infrastructure/config"
	"github.com/doeshing/reachout/internal/infrastructure/ledger"
	"github.com/doeshing/reachout/internal/infrastructure/platform"
	"github.com/doeshing/reachout/internal/infrastructure/session"
	"github.com/doeshing/reachout/internal/pkg/logger"
	"github.com/doeshing/reachout/internal/ports"
	"github.com/doeshing/reachout/internal/services"
)

// Options configure container construction.
type Options struct {
	ConfigPath string
	Verbose    bool
}

// Container wires application services with infrastructure adapters.
type Container struct {
	Config      domain.Config
	Coordinator *services.Coordinator
	Ledger      *ledger.SQLiteStore
	Logger      ports.Logger
}

// BuildContainer constructs the dependency graph. Credentials come from the
// environment (optionally via a local .env file); everything else from the
// validated configuration file.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	log := logger.New(opts.Verbose)

	// Best effort, matching dotenv behavior: absence of a .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.NewFileLoader(opts.ConfigPath).Load(ctx)
	if err != nil {
		return nil, err
	}

	store, err := ledger.NewSQLiteStore(cfg.Settings.LedgerPath)
	if err != nil {
		return nil, err
	}

	client := platform.NewClient(cfg.Settings.APIBaseURL, log)
	creds := domain.Credentials{
		Username: os.Getenv(domain.EnvUsername),
		Password: os.Getenv(domain.EnvPassword),
	}
	holder := session.NewHolder(client, creds, cfg.Settings.SessionPath, log)

	governor := services.NewGovernor(
		cfg.Settings.MaxActionsPerSession,
		cfg.Settings.MinDelay(),
		cfg.Settings.MaxDelay(),
		log,
	)

	coordinator := services.NewCoordinator(cfg, holder, store, governor, log)

	return &Container{
		Config:      cfg,
		Coordinator: coordinator,
		Ledger:      store,
		Logger:      log,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.Ledger != nil {
		return c.Ledger.Close()
	}
	return nil
}
