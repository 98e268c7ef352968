package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/config"
	"github.com/roach88/gamify/internal/engine"
	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/points"
	"github.com/roach88/gamify/internal/script"
	"github.com/roach88/gamify/internal/state"
	"github.com/roach88/gamify/internal/store"
	"github.com/roach88/gamify/internal/telemetry"
)

// session is one opened game: configuration, database, state and API.
type session struct {
	cfg      config.Config
	db       *store.Store
	state    *state.Store
	api      *gameapi.API
	logger   *slog.Logger
	out      *OutputFormatter
	shutdown telemetry.Shutdown
}

// openSession loads the configuration, applies flag overrides and opens
// the game database.
func openSession(cmd *cobra.Command, opts *RootOptions) (*session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	if opts.Database != "" {
		cfg.DB = opts.Database
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg, opts.Verbose)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	slog.SetDefault(logger)

	shutdown, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to set up tracing", err)
	}

	db, err := store.Open(cfg.DB)
	if err != nil {
		_ = shutdown(ctx)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	st, err := state.Open(ctx, db, state.WithHistoryLimit(cfg.HistoryLimit))
	if err != nil {
		_ = db.Close()
		_ = shutdown(ctx)
		return nil, WrapExitError(ExitCommandError, "failed to load game state", err)
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	rt := script.NewRuntime(script.NewLuaHost(), script.WithLogger(logger))
	eng := engine.New(st, rt,
		engine.WithLogger(logger),
		engine.WithMaxDepth(cfg.MaxDepth),
		engine.WithMaxSteps(cfg.MaxSteps),
		engine.WithReentrancyGuard(cfg.ReentrancyGuard),
	)
	api := gameapi.New(st, eng, rt,
		gameapi.WithLogger(logger),
		gameapi.WithNotifier(newConsoleNotifier(cmd.ErrOrStderr())),
	)

	logger.Debug("session opened", "db", cfg.DB, "history_limit", cfg.HistoryLimit)
	return &session{
		cfg:      cfg,
		db:       db,
		state:    st,
		api:      api,
		logger:   logger,
		out:      out,
		shutdown: shutdown,
	}, nil
}

// Close flushes traces and closes the database.
func (s *session) Close(ctx context.Context) error {
	return errors.Join(s.shutdown(ctx), s.db.Close())
}

func newLogger(w io.Writer, cfg config.Config, verbose bool) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// withSession adapts fn into a cobra RunE that opens and closes a session.
func withSession(opts *RootOptions, fn func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, opts)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		defer func() {
			if closeErr := s.Close(ctx); closeErr != nil {
				s.logger.Error("error closing session", "error", closeErr)
			}
		}()
		return fn(ctx, s, args)
	}
}

// opError maps a game error to an exit code. Rejected input is a command
// error; everything else is an operation failure.
func opError(message string, err error) error {
	var pe *points.ValidationError
	if gameapi.IsValidationError(err) || errors.As(err, &pe) {
		return WrapExitError(ExitCommandError, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}

// refused reports an operation the game declined without an error, such as
// completing a task twice.
func refused(format string, args ...any) error {
	return NewExitError(ExitFailure, fmt.Sprintf(format, args...))
}

// consoleNotifier prints user-facing notifications to the diagnostic
// stream so JSON output stays clean.
type consoleNotifier struct {
	w     io.Writer
	theme theme
}

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w, theme: newTheme(w)}
}

func (n *consoleNotifier) Notify(_ context.Context, message, kind string) {
	fmt.Fprintln(n.w, n.theme.notice(kind, message))
}
