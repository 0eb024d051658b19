package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newInfoCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show catalog statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context) error {
				return a.Info(ctx)
			})
		},
	}
}
