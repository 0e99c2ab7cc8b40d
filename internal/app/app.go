package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/gobatis/internal/binding"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/loader"
	"github.com/specialistvlad/gobatis/internal/localsession"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	cfg        *config.Configuration
	mappers    *binding.Registry
	sessions   *localsession.SessionFactory
	httpServer *http.Server
}

// NewApp loads the configuration file, registers the modules, runs the final
// resolution pass and opens the session factory. Logs go to outW.
func NewApp(ctx context.Context, outW io.Writer, appConfig *Config, modules ...Module) (*App, error) {
	logger := newLogger(appConfig, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	cfg, err := loader.New().LoadConfig(ctx, appConfig.ConfigPath, loader.Options{
		Environment: appConfig.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  appConfig,
		cfg:     cfg,
		mappers: binding.NewRegistry(cfg),
	}

	for _, mod := range modules {
		if err := mod.Register(ctx, a.mappers); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to register module %T: %w", mod, err)
		}
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := cfg.ResolvePending(ctx, true); err != nil {
		a.Close()
		return nil, err
	}
	logger.Debug("All pending elements resolved.")

	if cfg.Environment != nil {
		if a.sessions, err = localsession.NewSessionFactory(cfg); err != nil {
			a.Close()
			return nil, err
		}
	} else {
		logger.Warn("No environment selected, statements cannot be run.")
	}
	return a, nil
}

// Configuration returns the loaded configuration.
func (a *App) Configuration() *config.Configuration { return a.cfg }

// Mappers returns the mapper registry modules were registered into.
func (a *App) Mappers() *binding.Registry { return a.mappers }

// Sessions returns the session factory, or nil when no environment is set.
func (a *App) Sessions() *localsession.SessionFactory { return a.sessions }

// Close releases the environment's database.
func (a *App) Close() error {
	return a.cfg.Environment.Close()
}
