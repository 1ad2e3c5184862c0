package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/internal/config"
	"dispatch/pkg/logging"

	"golang.org/x/sync/errgroup"
)

// Application represents the main application structure that bootstraps and
// runs dispatch.
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes a new application instance with the
// provided configuration. It configures logging, loads the dispatch
// configuration and wires all services. The returned application is ready to
// Run.
func NewApplication(cfg *Config) (*Application, error) {
	// Configure logging based on debug flag
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.Silent {
		logOutput = io.Discard
	}
	logging.InitForCLI(appLogLevel, logOutput)

	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}

	dispatchCfg, err := config.LoadConfig(configPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load dispatch configuration from %s", configPath)
		return nil, fmt.Errorf("failed to load dispatch configuration from %s: %w", configPath, err)
	}
	cfg.DispatchConfig = &dispatchCfg

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Run starts the MCP server and the tool-executor connection, then blocks
// until the context is cancelled or an interrupt signal arrives. Shutdown
// stops the server first, then finalizes any agents still in cooldown so
// their records land in the completed history.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.services.Tools.Connect(gctx); err != nil {
			// The tool executor may not be up yet. Agents report call
			// failures per request, so startup proceeds without it.
			logging.Warn("App", "Could not connect to tool executor: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.services.Server.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to start dispatch: %w", err)
	}

	logging.Info("App", "dispatch is running. Press Ctrl+C to stop.")
	<-ctx.Done()

	logging.Info("App", "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.services.Server.Stop(shutdownCtx); err != nil {
		logging.Error("App", err, "Error stopping server")
	}
	a.services.Orchestrator.Shutdown()
	if err := a.services.Tools.Close(); err != nil {
		logging.Warn("App", "Error closing tool executor client: %v", err)
	}

	return nil
}
