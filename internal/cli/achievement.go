package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/gameapi"
)

// AchievementOptions holds flags shared by achievement add and edit.
type AchievementOptions struct {
	Description string
	Prestige    int
}

func (o *AchievementOptions) input(prestigeSet bool, name, criteria string) gameapi.AchievementInput {
	in := gameapi.AchievementInput{Name: name, Description: o.Description, Criteria: criteria}
	if prestigeSet {
		n := o.Prestige
		in.Prestige = &n
	}
	return in
}

// NewAchievementCommand creates the achievement command group.
func NewAchievementCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "achievement",
		Aliases: []string{"ach"},
		Short:   "Manage achievements",
	}

	addOpts := &AchievementOptions{}
	var add *cobra.Command
	add = &cobra.Command{
		Use:   "add <name> <criteria>",
		Short: "Define a criteria-based achievement",
		Long: `Define an achievement that unlocks once every cumulative skill total
reaches its criteria.

Example:
  gamify achievement add "Clean streak" "temizlik:100" --prestige 25`,
		Args: cobra.ExactArgs(2),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			ach, err := s.api.AddAchievement(ctx, addOpts.input(add.Flags().Changed("prestige"), args[0], args[1]))
			if err != nil {
				return opError("failed to add achievement", err)
			}
			if _, err := s.api.CheckAchievements(ctx); err != nil {
				return opError("failed to check achievements", err)
			}
			ach, _ = s.api.Achievement(ach.Name)
			return s.out.Render(ach, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Added achievement %s (%d prestige)\n", ach.Name, ach.PrestigePoints)
				return err
			})
		}),
	}
	add.Flags().StringVar(&addOpts.Description, "description", "", "achievement description")
	add.Flags().IntVar(&addOpts.Prestige, "prestige", 0, "prestige awarded on unlock (default from settings)")

	editOpts := &AchievementOptions{}
	var edit *cobra.Command
	edit = &cobra.Command{
		Use:   "edit <achievement> <name> <criteria>",
		Short: "Redefine an achievement, keeping its earned state",
		Args:  cobra.ExactArgs(3),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			ach, err := findAchievement(s, args[0])
			if err != nil {
				return err
			}
			ach, err = s.api.EditAchievement(ctx, ach.ID, editOpts.input(edit.Flags().Changed("prestige"), args[1], args[2]))
			if err != nil {
				return opError("failed to edit achievement", err)
			}
			return s.out.Render(ach, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Updated achievement %s\n", ach.Name)
				return err
			})
		}),
	}
	edit.Flags().StringVar(&editOpts.Description, "description", "", "achievement description")
	edit.Flags().IntVar(&editOpts.Prestige, "prestige", 0, "prestige awarded on unlock")

	list := &cobra.Command{
		Use:   "list",
		Short: "List achievements",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			list := s.api.Achievements()
			return s.out.Render(list, func(w io.Writer) error {
				t := newTheme(w)
				if len(list) == 0 {
					_, err := fmt.Fprintln(w, t.muted.Render("No achievements defined."))
					return err
				}
				for _, a := range list {
					line := fmt.Sprintf("%s %s", t.mark(a.Earned), a.Name)
					if a.Criteria != "" {
						line += " " + t.muted.Render("["+a.Criteria+"]")
					}
					if a.Earned && a.EarnedDate != nil {
						line += " " + t.gold.Render(a.EarnedDate.Format("2006-01-02"))
					}
					if _, err := fmt.Fprintln(w, line); err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}

	var unlockDescription string
	unlock := &cobra.Command{
		Use:   "unlock <name>",
		Short: "Unlock a one-off achievement by name",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			ok, err := s.api.Unlock(ctx, args[0], unlockDescription)
			if err != nil {
				return opError("failed to unlock achievement", err)
			}
			if !ok {
				return refused("achievement %s already exists", args[0])
			}
			ach, _ := s.api.Achievement(args[0])
			return s.out.Render(ach, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Unlocked %s\n", ach.Name)
				return err
			})
		}),
	}
	unlock.Flags().StringVar(&unlockDescription, "description", "", "achievement description")

	check := &cobra.Command{
		Use:   "check",
		Short: "Evaluate every achievement now",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			res, err := s.api.CheckAchievements(ctx)
			if err != nil {
				return opError("failed to check achievements", err)
			}
			names := make([]string, 0, len(res.Unlocked))
			for _, u := range res.Unlocked {
				names = append(names, u.Name)
			}
			data := map[string]any{"unlocked": names, "prestige": res.PrestigeDelta}
			return s.out.Render(data, func(w io.Writer) error {
				if len(names) == 0 {
					_, err := fmt.Fprintln(w, "No new achievements.")
					return err
				}
				for _, n := range names {
					if _, err := fmt.Fprintf(w, "Unlocked %s\n", n); err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}

	del := &cobra.Command{
		Use:   "delete <achievement>",
		Short: "Delete an achievement",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			ach, err := findAchievement(s, args[0])
			if err != nil {
				return err
			}
			if _, err := s.api.DeleteAchievement(ctx, ach.ID); err != nil {
				return opError("failed to delete achievement", err)
			}
			return s.out.Render(ach, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted achievement %s\n", ach.Name)
				return err
			})
		}),
	}

	cmd.AddCommand(add, edit, list, unlock, check, del)
	return cmd
}
