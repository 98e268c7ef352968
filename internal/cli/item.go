package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/gamify/internal/gameapi"
)

// NewItemCommand creates the inventory command group.
func NewItemCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "item",
		Aliases: []string{"inventory"},
		Short:   "Manage the inventory",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List held items",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			items := s.api.Items()
			return s.out.Render(items, func(w io.Writer) error {
				t := newTheme(w)
				if len(items) == 0 {
					_, err := fmt.Fprintln(w, t.muted.Render("The inventory is empty."))
					return err
				}
				for _, it := range items {
					if _, err := fmt.Fprintf(w, "%s x%d %s\n", it.Name, it.Amount, t.muted.Render(it.ID)); err != nil {
						return err
					}
				}
				return nil
			})
		}),
	}

	cmd.AddCommand(list,
		itemAmountCommand(rootOpts, "add", "Add units of an item", (*gameapi.API).AddItem),
		itemAmountCommand(rootOpts, "remove", "Take units of an item", (*gameapi.API).RemoveItem),
		itemRecordCommand(rootOpts, "use", "Use up an item record", (*gameapi.API).UseItem),
		itemRecordCommand(rootOpts, "delete", "Delete an item record", (*gameapi.API).DeleteItem),
	)
	return cmd
}

func itemAmountCommand(
	rootOpts *RootOptions,
	use, short string,
	op func(*gameapi.API, context.Context, string, int) (bool, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name> [amount]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			amount := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return WrapExitError(ExitCommandError, "amount must be an integer", err)
				}
				amount = n
			}
			ok, err := op(s.api, ctx, args[0], amount)
			if err != nil {
				return opError(fmt.Sprintf("failed to %s item", use), err)
			}
			if !ok {
				return refused("cannot %s %d %s", use, amount, args[0])
			}
			result := map[string]any{"name": args[0], "amount": amount, "total": s.api.ItemTotal(args[0])}
			return s.out.Render(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: %d held\n", args[0], s.api.ItemTotal(args[0]))
				return err
			})
		}),
	}
}

func itemRecordCommand(
	rootOpts *RootOptions,
	use, short string,
	op func(*gameapi.API, context.Context, string) (bool, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <item>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			it, err := findItem(s, args[0])
			if err != nil {
				return err
			}
			if _, err := op(s.api, ctx, it.ID); err != nil {
				return opError(fmt.Sprintf("failed to %s item", use), err)
			}
			return s.out.Render(it, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s: done (%s)\n", it.Name, use)
				return err
			})
		}),
	}
}
