package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newListCommand(a *App) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the books in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context) error {
				return a.List(ctx, status)
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "only books with this status: unread, reading or read")
	return cmd
}
