package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/points"
)

// NewRecurringCommand creates the recurring template command group.
func NewRecurringCommand(rootOpts *RootOptions) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage reusable action templates",
	}

	add := &cobra.Command{
		Use:   "add <name> <points>",
		Short: "Define a template",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			r, err := s.api.AddRecurring(ctx, args[0], description, args[1])
			if err != nil {
				return opError("failed to add template", err)
			}
			return s.out.Render(r, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Added template %s [%s]\n", r.Name, points.Format(r.Points))
				return err
			})
		}),
	}
	add.Flags().StringVar(&description, "description", "", "template description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			list := s.api.Recurrings()
			return s.out.Render(list, func(w io.Writer) error {
				t := newTheme(w)
				if len(list) == 0 {
					_, err := fmt.Fprintln(w, t.muted.Render("No templates defined."))
					return err
				}
				for _, r := range list {
					_, err := fmt.Fprintf(w, "%s %s %s\n", r.Name, t.key.Render(points.Format(r.Points)),
						t.muted.Render(fmt.Sprintf("applied %d times", r.Applied)))
					if err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}

	apply := &cobra.Command{
		Use:   "apply <template>",
		Short: "Log a template once",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			r, err := findRecurring(s, args[0])
			if err != nil {
				return err
			}
			entry, err := s.api.ApplyRecurring(ctx, r.ID)
			if err != nil {
				return opError("failed to apply template", err)
			}
			return s.out.Render(entry, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Logged %s [%s]\n", entry.Name, points.Format(entry.Points))
				return err
			})
		}),
	}

	del := &cobra.Command{
		Use:   "delete <template>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			r, err := findRecurring(s, args[0])
			if err != nil {
				return err
			}
			if _, err := s.api.DeleteRecurring(ctx, r.ID); err != nil {
				return opError("failed to delete template", err)
			}
			return s.out.Render(r, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Deleted template %s\n", r.Name)
				return err
			})
		}),
	}

	cmd.AddCommand(add, list, apply, del)
	return cmd
}
