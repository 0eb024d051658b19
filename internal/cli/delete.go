package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newDeleteCommand(a *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book permanently",
		Long:  "Removes a book from the catalog. There is no undo; the id is never reused.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withSession(cmd.Context(), func(ctx context.Context) error {
				return a.deleteWithConfirmation(ctx, id, yes)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")
	return cmd
}
