package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Once bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Sync a directory of .lua files into the script collection",
		Long: `Sync every .lua file in dir (default $GAMIFY_SCRIPTS_DIR) as a script
named after the file, then keep syncing as files change until interrupted.
Deleting a file leaves its script in place.

Example:
  gamify watch ./scripts
  gamify watch --once`,
		Args: cobra.MaximumNArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			dir := s.cfg.ScriptsDir
			if len(args) == 1 {
				dir = args[0]
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return NewExitError(ExitCommandError, fmt.Sprintf("scripts directory not found: %s", dir))
			}

			w := s.out.Writer
			report := func(r watch.Result) {
				t := newTheme(w)
				if r.Err != nil {
					fmt.Fprintf(w, "%s %s: %v\n", t.mark(false), r.Path, r.Err)
					return
				}
				verb := "updated"
				if r.Created {
					verb = "created"
				}
				fmt.Fprintf(w, "%s %s %s\n", t.mark(true), r.Script, verb)
			}
			watcher := watch.New(dir, s.api, watch.WithLogger(s.logger), watch.WithOnSync(report))

			if opts.Once {
				results, err := watcher.SyncAll(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "sync failed", err)
				}
				for _, r := range results {
					if r.Err != nil {
						return WrapExitError(ExitFailure, "sync failed", r.Err)
					}
				}
				return nil
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			go func() {
				select {
				case sig := <-sigChan:
					s.logger.Info("received signal, shutting down", "signal", sig)
					cancel()
				case <-ctx.Done():
				}
			}()

			s.logger.Info("watching scripts", "dir", dir)
			fmt.Fprintln(s.out.GetErrWriter(), "Watching for script changes. Press Ctrl-C to stop.")
			if err := watcher.Run(ctx); err != nil {
				return WrapExitError(ExitFailure, "watcher error", err)
			}
			s.logger.Info("watcher stopped")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&opts.Once, "once", false, "sync once and exit")
	return cmd
}
