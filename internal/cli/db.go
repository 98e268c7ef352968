package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewDBCommand creates the db command group.
func NewDBCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect the game database",
	}

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List stored collections with size and revision",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			entries, err := s.db.Entries(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list keys", err)
			}
			return s.out.Render(entries, func(w io.Writer) error {
				t := newTheme(w)
				if len(entries) == 0 {
					_, err := fmt.Fprintln(w, t.muted.Render("Empty database."))
					return err
				}
				for _, e := range entries {
					_, err := fmt.Fprintf(w, "%-24s %8d bytes  rev %-4d %s\n", e.Key, e.Size, e.Revision, t.muted.Render(e.UpdatedAt))
					if err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the database path in use",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			return s.out.Render(map[string]string{"path": s.cfg.DB}, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, s.cfg.DB)
				return err
			})
		}),
	}

	cmd.AddCommand(keys, path)
	return cmd
}
