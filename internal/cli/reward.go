package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/gameapi"
	"github.com/roach88/gamify/internal/points"
)

// NewRewardCommand creates the reward command group.
func NewRewardCommand(rootOpts *RootOptions) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "reward",
		Short: "Manage and buy rewards",
	}

	add := &cobra.Command{
		Use:   "add <name> [criteria]",
		Short: "Define a reward",
		Long: `Define a reward priced in skill points. An empty criteria makes it free.

Example:
  gamify reward add "Movie night" "eglence:20, disiplin:5"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			criteria := ""
			if len(args) == 2 {
				criteria = args[1]
			}
			r, err := s.api.CreateReward(ctx, args[0], description, criteria)
			if err != nil {
				return opError("failed to add reward", err)
			}
			return s.out.Render(r, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Added reward %s (%s)\n", r.Name, r.ID)
				return err
			})
		}),
	}
	add.Flags().StringVar(&description, "description", "", "reward description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List rewards and whether they are affordable",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			rewards := s.api.Rewards()
			return s.out.Render(rewards, func(w io.Writer) error {
				t := newTheme(w)
				if len(rewards) == 0 {
					_, err := fmt.Fprintln(w, t.muted.Render("No rewards defined."))
					return err
				}
				for _, r := range rewards {
					criteria := r.Criteria
					if criteria == "" {
						criteria = "free"
					}
					_, err := fmt.Fprintf(w, "%s %s %s\n", t.mark(s.api.RewardEligible(r.Criteria)), r.Name, t.muted.Render("["+criteria+"]"))
					if err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}

	buy := &cobra.Command{
		Use:   "buy <reward>",
		Short: "Spend points on a reward",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			r, err := findReward(s, args[0])
			if err != nil {
				return err
			}
			entry, err := s.api.BuyReward(ctx, r.ID)
			if errors.Is(err, gameapi.ErrInsufficientPoints) {
				return WrapExitError(ExitFailure, "not enough points", err)
			}
			if err != nil {
				return opError("failed to buy reward", err)
			}
			return s.out.Render(entry, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Bought %s [%s]\n", r.Name, points.Format(entry.Points))
				return err
			})
		}),
	}

	use := &cobra.Command{
		Use:   "use <reward>",
		Short: "Announce that a reward was used",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			r, err := findReward(s, args[0])
			if err != nil {
				return err
			}
			if _, err := s.api.UseReward(ctx, r.ID, nil); err != nil {
				return opError("failed to use reward", err)
			}
			return s.out.Render(r, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Used %s\n", r.Name)
				return err
			})
		}),
	}

	del := &cobra.Command{
		Use:   "delete <reward>",
		Short: "Delete a reward",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			r, err := findReward(s, args[0])
			if err != nil {
				return err
			}
			if _, err := s.api.DeleteReward(ctx, r.ID); err != nil {
				return opError("failed to delete reward", err)
			}
			return s.out.Render(r, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted reward %s\n", r.Name)
				return err
			})
		}),
	}

	cmd.AddCommand(add, list, buy, use, del)
	return cmd
}
