package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCommand(a *App) *cobra.Command {
	var title, author string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Long:  "Adds a new book with status unread. Without --title the fields are prompted for.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context) error {
				if title == "" {
					return a.Add(ctx)
				}
				b, err := a.catalog.Add(ctx, title, author)
				if err != nil {
					return err
				}
				printlnFn(fmt.Sprintf("Added book #%d: %s", b.ID, b.Title))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "book title")
	cmd.Flags().StringVarP(&author, "author", "a", "", "book author")
	return cmd
}
