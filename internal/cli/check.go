package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newCheckCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the catalog file's integrity",
		Long:  "Runs the engine's full structural check over every page of the encrypted file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context) error {
				return a.Check(ctx)
			})
		},
	}
}
