package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/gameapi"
)

// NewPrestigeCommand creates the prestige command group.
func NewPrestigeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prestige",
		Short: "Inspect and adjust prestige",
	}

	add := &cobra.Command{
		Use:   "add <points>",
		Short: "Add (or with a negative value, remove) prestige",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "points must be an integer", err)
			}
			total, err := s.api.AddPrestige(ctx, n)
			if err != nil {
				return opError("failed to add prestige", err)
			}
			tier := s.api.PrestigeLevel()
			return s.out.Render(map[string]any{"total": total, "tier": tier}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Prestige %d (%s %s)\n", total, tier.Icon, tier.Name)
				return err
			})
		}),
	}

	var enabled bool
	var perAchievement int
	var settings *cobra.Command
	settings = &cobra.Command{
		Use:   "settings",
		Short: "Show or change prestige settings",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			var u gameapi.SettingsUpdate
			if settings.Flags().Changed("enabled") {
				u.Enabled = &enabled
			}
			if settings.Flags().Changed("per-achievement") {
				u.PointsPerAchievement = &perAchievement
			}
			current, err := s.api.UpdatePrestigeSettings(ctx, u)
			if err != nil {
				return opError("failed to update prestige settings", err)
			}
			return s.out.Render(current, func(w io.Writer) error {
				t := newTheme(w)
				fmt.Fprintln(w, t.labelValue("Enabled", current.Enabled))
				_, err := fmt.Fprintln(w, t.labelValue("Per achievement", current.PointsPerAchievement))
				return err
			})
		}),
	}
	settings.Flags().BoolVar(&enabled, "enabled", true, "award prestige for unlocked achievements")
	settings.Flags().IntVar(&perAchievement, "per-achievement", 0, "default prestige per achievement (0-1000)")

	cmd.AddCommand(add, settings)
	return cmd
}
