package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/gamefile"
)

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "load <file.cue|dir>",
		Short: "Apply a CUE game definition",
		Long: `Compile rewards, achievements, recurring templates and scripts declared
in CUE and merge them into the game by name.

Existing achievements are redefined in place and keep their earned state.
Scripts are created or updated. Existing rewards and templates are left
alone.

Example:
  gamify load ./game
  gamify load game.cue --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			loader, err := gamefile.NewLoader()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to initialise loader", err)
			}
			def, err := loader.Load(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to compile game definition", err)
			}
			s.out.VerboseLog("compiled %d rewards, %d achievements, %d templates, %d scripts",
				len(def.Rewards), len(def.Achievements), len(def.Recurring), len(def.Scripts))

			if dryRun {
				return s.out.Render(def, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Valid: %d rewards, %d achievements, %d templates, %d scripts\n",
						len(def.Rewards), len(def.Achievements), len(def.Recurring), len(def.Scripts))
					return err
				})
			}

			changes, err := gamefile.Apply(ctx, s.api, def)
			if err != nil {
				return opError("failed to apply game definition", err)
			}
			return s.out.Render(changes, func(w io.Writer) error {
				t := newTheme(w)
				if len(changes) == 0 {
					_, err := fmt.Fprintln(w, t.muted.Render("Nothing declared."))
					return err
				}
				for _, c := range changes {
					if _, err := fmt.Fprintf(w, "%-11s %-9s %s\n", c.Kind, c.Action, c.Name); err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate without applying")
	return cmd
}
