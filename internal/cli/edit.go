package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookvault-cli/bookvault/internal/models"
)

func newEditCommand(a *App) *cobra.Command {
	var title, author, status string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a book's title, author, or status",
		Long:  "Applies a partial update to one book. Without flags the new values are prompted for.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return a.withSession(cmd.Context(), func(ctx context.Context) error {
				flags := cmd.Flags()
				if !flags.Changed("title") && !flags.Changed("author") && !flags.Changed("status") {
					return a.editInteractive(ctx, id)
				}

				changes := models.Changes{}
				if flags.Changed("title") {
					changes.Title = &title
				}
				if flags.Changed("author") {
					changes.Author = &author
				}
				if flags.Changed("status") {
					parsed, err := models.ParseStatus(status)
					if err != nil {
						return err
					}
					changes.Status = &parsed
				}

				b, err := a.catalog.Edit(ctx, id, changes)
				if err != nil {
					return err
				}
				printlnFn(fmt.Sprintf("Updated book #%d: %s", b.ID, b.Title))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&author, "author", "a", "", "new author")
	cmd.Flags().StringVarP(&status, "status", "s", "", "new status: unread, reading or read")
	return cmd
}
