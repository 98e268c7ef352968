package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewEventsCommand creates the events command group.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect and raise events",
	}

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "Show the recent event history, oldest first",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			events := s.api.EventHistory()
			if limit > 0 && len(events) > limit {
				events = events[len(events)-limit:]
			}
			return s.out.Render(events, func(w io.Writer) error {
				t := newTheme(w)
				if len(events) == 0 {
					_, err := fmt.Fprintln(w, t.muted.Render("No events recorded."))
					return err
				}
				for _, ev := range events {
					_, err := fmt.Fprintf(w, "%d %s %s %s\n", ev.Seq,
						t.muted.Render(ev.Timestamp.Format("2006-01-02 15:04:05")),
						t.key.Render(ev.Name), t.muted.Render(fmt.Sprintf("depth=%d", ev.Depth)))
					if err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}
	history.Flags().IntVar(&limit, "limit", 0, "show only the last n events")

	trigger := &cobra.Command{
		Use:   "trigger <event> [json-data]",
		Short: "Dispatch a custom event to subscribed scripts",
		Long: `Dispatch a custom event. The optional payload is a JSON object.

Example:
  gamify events trigger ping '{"n": 1}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			data := map[string]any{}
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &data); err != nil {
					return WrapExitError(ExitCommandError, "payload must be a JSON object", err)
				}
			}
			if err := s.api.Trigger(ctx, args[0], data); err != nil {
				return opError("failed to trigger event", err)
			}
			return s.out.Render(map[string]any{"event": args[0], "data": data}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Triggered %s\n", args[0])
				return err
			})
		}),
	}

	cmd.AddCommand(history, trigger)
	return cmd
}
