package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/bulletin/internal/api"
	"github.com/roach88/bulletin/internal/config"
	"github.com/roach88/bulletin/internal/engine"
)

// session is the wiring shared by the commands that talk to the API:
// resolved config, a fresh store and a client.
type session struct {
	cfg    config.Config
	store  *engine.Engine
	client api.Client
	out    *OutputFormatter
}

func newSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	// Configure logging: verbose wins over the configured level
	logLevel := cfg.Level()
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	client := opts.Client
	if client == nil {
		client = api.NewHTTPClient(cfg.BaseURL, api.WithTimeout(cfg.Timeout))
	}

	var engineOpts []engine.Option
	if opts.RequestIDs != nil {
		engineOpts = append(engineOpts, engine.WithRequestIDs(opts.RequestIDs))
	}

	slog.Debug("session ready", "base_url", cfg.BaseURL, "timeout", cfg.Timeout)
	return &session{
		cfg:    cfg,
		store:  engine.New(engineOpts...),
		client: client,
		out:    out,
	}, nil
}

// resolveConfig loads the config file when one is given and applies flag
// overrides on top.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// signalContext derives a context from the command's that is cancelled on
// SIGINT or SIGTERM. The returned cancel stops signal delivery.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		cancel()
		signal.Stop(sigChan) // Prevent signal handler leak
		<-done
	}
}
