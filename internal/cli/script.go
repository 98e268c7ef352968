package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/script"
	"github.com/roach88/gamify/internal/watch"
)

// ScriptOptions holds flags for script save.
type ScriptOptions struct {
	Description string
	Events      []string
}

// NewScriptCommand creates the script command group.
func NewScriptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScriptOptions{}

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Manage Lua automation scripts",
	}

	save := &cobra.Command{
		Use:   "save <name> <file.lua>",
		Short: "Create or update a script from a file",
		Long: `Create or update the script called name with the file's source.

Description and event subscriptions default to the file's header comments:

  -- description: pays a coin per completed task
  -- events: onTaskComplete, onLogAdd

A script without subscriptions runs for any event its source mentions.`,
		Args: cobra.ExactArgs(2),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			code, err := os.ReadFile(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read script file", err)
			}
			description, events := watch.ParseHeader(string(code))
			if opts.Description != "" {
				description = opts.Description
			}
			if len(opts.Events) > 0 {
				events = opts.Events
			}
			sc, created, err := s.api.SaveScript(ctx, gameapi.ScriptInput{
				Name:        args[0],
				Description: description,
				Code:        string(code),
				Events:      events,
			})
			if err != nil {
				return opError("failed to save script", err)
			}
			verb := "Updated"
			if created {
				verb = "Created"
			}
			return s.out.Render(sc, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s script %s (%s)\n", verb, sc.Name, subscriptions(sc.Events))
				return err
			})
		}),
	}
	save.Flags().StringVar(&opts.Description, "description", "", "script description (overrides the file header)")
	save.Flags().StringSliceVar(&opts.Events, "events", nil, "subscribed events (overrides the file header)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List scripts",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			list := s.api.Scripts()
			return s.out.Render(list, func(w io.Writer) error {
				t := newTheme(w)
				if len(list) == 0 {
					_, err := fmt.Fprintln(w, t.muted.Render("No scripts."))
					return err
				}
				for _, sc := range list {
					_, err := fmt.Fprintf(w, "%s %s %s\n", sc.Name, t.key.Render(subscriptions(sc.Events)), t.muted.Render(sc.Description))
					if err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}

	show := &cobra.Command{
		Use:   "show <script>",
		Short: "Print a script's source",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			sc, err := findScript(s, args[0])
			if err != nil {
				return err
			}
			return s.out.Render(sc, func(w io.Writer) error {
				_, err := io.WriteString(w, sc.Code)
				return err
			})
		}),
	}

	test := &cobra.Command{
		Use:   "test <script>",
		Short: "Run a script once against a sample task",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			sc, err := findScript(s, args[0])
			if err != nil {
				return err
			}
			res, err := s.api.TestScript(ctx, sc.ID)
			if err != nil {
				return opError("failed to test script", err)
			}
			if renderErr := s.out.Render(res, func(w io.Writer) error {
				t := newTheme(w)
				if !res.OK() {
					_, err := fmt.Fprintf(w, "%s %s: %s\n", t.mark(false), sc.Name, res.Error)
					return err
				}
				_, err := fmt.Fprintf(w, "%s %s returned %v\n", t.mark(true), sc.Name, res.Result)
				return err
			}); renderErr != nil {
				return renderErr
			}
			if !res.OK() {
				return refused("script %s failed", sc.Name)
			}
			return nil
		}),
	}

	var event string
	run := &cobra.Command{
		Use:   "run <script>",
		Short: "Execute a script now",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			sc, err := findScript(s, args[0])
			if err != nil {
				return err
			}
			result, _, err := s.api.ExecuteScript(ctx, sc.ID, script.Context{"event": event})
			if err != nil {
				return opError("script failed", err)
			}
			return s.out.Render(map[string]any{"script": sc.Name, "result": result}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%v\n", result)
				return err
			})
		}),
	}
	run.Flags().StringVar(&event, "event", "manual", "event name visible to the script")

	del := &cobra.Command{
		Use:   "delete <script>",
		Short: "Delete a script",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			sc, err := findScript(s, args[0])
			if err != nil {
				return err
			}
			if _, err := s.api.DeleteScript(ctx, sc.ID); err != nil {
				return opError("failed to delete script", err)
			}
			return s.out.Render(sc, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted script %s\n", sc.Name)
				return err
			})
		}),
	}

	cmd.AddCommand(save, list, show, test, run, del)
	return cmd
}

func subscriptions(events []string) string {
	if len(events) == 0 {
		return "source match"
	}
	return strings.Join(events, ", ")
}
