package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newReadCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a book as read",
		Long:  "Sets the book's status to read and records the finish date. Safe to repeat.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withSession(cmd.Context(), func(ctx context.Context) error {
				b, err := a.catalog.MarkRead(ctx, id)
				if err != nil {
					return err
				}
				printlnFn(fmt.Sprintf("Marked read: #%d %s (finished %s)", b.ID, b.Title, formatDate(b.FinishedAt)))
				return nil
			})
		},
	}
}
