package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/model"
	"github.com/roach88/gamify/internal/points"
)

// NewActionCommand creates the action command group. Actions are log
// entries: every point total is the sum of the log.
func NewActionCommand(rootOpts *RootOptions) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:     "action",
		Aliases: []string{"log"},
		Short:   "Log performed actions",
	}

	add := &cobra.Command{
		Use:   "add <name> <points>",
		Short: "Log an action",
		Long: `Log a performed action and re-check achievements.

Example:
  gamify action add "Morning run" "egzersiz:5, disiplin:2"`,
		Args: cobra.ExactArgs(2),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			entry, err := s.api.AddAction(ctx, args[0], description, args[1])
			if err != nil {
				return opError("failed to log action", err)
			}
			return s.out.Render(entry, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged %s [%s]\n", entry.Name, points.Format(entry.Points))
				return err
			})
		}),
	}
	add.Flags().StringVar(&description, "description", "", "action description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the log",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			logs := s.api.Logs()
			return s.out.Render(logs, func(w io.Writer) error {
				return writeLogs(w, logs)
			})
		}),
	}

	var editDescription string
	edit := &cobra.Command{
		Use:   "edit <entry> <name> <points>",
		Short: "Replace a log entry",
		Args:  cobra.ExactArgs(3),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			entry, err := findLog(s, args[0])
			if err != nil {
				return err
			}
			entry, err = s.api.EditLog(ctx, entry.ID, args[1], editDescription, args[2])
			if err != nil {
				return opError("failed to edit log entry", err)
			}
			return s.out.Render(entry, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Updated %s [%s]\n", entry.Name, points.Format(entry.Points))
				return err
			})
		}),
	}
	edit.Flags().StringVar(&editDescription, "description", "", "entry description")

	del := &cobra.Command{
		Use:   "delete <entry>",
		Short: "Delete a log entry",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			entry, err := findLog(s, args[0])
			if err != nil {
				return err
			}
			if _, err := s.api.DeleteLog(ctx, entry.ID); err != nil {
				return opError("failed to delete log entry", err)
			}
			return s.out.Render(entry, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted %s\n", entry.Name)
				return err
			})
		}),
	}

	cmd.AddCommand(add, list, edit, del)
	return cmd
}

func writeLogs(w io.Writer, logs []model.LogEntry) error {
	t := newTheme(w)
	if len(logs) == 0 {
		_, err := fmt.Fprintln(w, t.muted.Render("The log is empty."))
		return err
	}
	for _, l := range logs {
		_, err := fmt.Fprintf(w, "%s %s %s %s\n",
			t.muted.Render(l.Date.Format("2006-01-02")), l.Name,
			t.key.Render(points.Format(l.Points)), t.muted.Render(l.ID))
		if err != nil {
			return err
		}
	}
	return nil
}
