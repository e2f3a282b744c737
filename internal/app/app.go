package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres/cardstate"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres/deckoptions"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/adapter/postgres/reviewevent"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/config"
	"github.com/lalabalavujon-a11y/Professional-Diver.app-sub002/internal/service/study"
)

// App is the composition root: configuration, logger, database pool, and the
// wired study service. Transports embed an App and talk to Study.
type App struct {
	Cfg   *config.Config
	Log   *slog.Logger
	Pool  *pgxpool.Pool
	Study *study.Service
}

// New loads configuration and wires every component. The returned App owns
// the connection pool; call Close when done.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	studySvc := study.NewService(
		logger,
		deckoptions.New(pool),
		cardstate.New(pool),
		reviewevent.New(pool),
		postgres.NewTxManager(pool),
		cfg.Sync.PageSize,
	)

	return &App{
		Cfg:   cfg,
		Log:   logger,
		Pool:  pool,
		Study: studySvc,
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.Pool.Close()
}
