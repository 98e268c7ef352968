package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show levels, prestige and achievements",
		Args:  cobra.NoArgs,
		RunE: withSession(rootOpts, func(ctx context.Context, s *session, args []string) error {
			st := s.api.Status()
			return s.out.Render(st, func(w io.Writer) error {
				return renderStatus(w, st)
			})
		}),
	}
}
