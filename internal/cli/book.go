package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bookvault-cli/bookvault/internal/common"
	"github.com/bookvault-cli/bookvault/internal/models"
)

// Add collects title and author and inserts a new unread book.
func (a *App) Add(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", os.Stdout)
	if err != nil {
		return err
	}
	author, err := GetSimpleText(a.reader, "Enter author (optional)", os.Stdout)
	if err != nil {
		return err
	}

	b, err := a.catalog.Add(ctx, title, author)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Added book #%d: %s", b.ID, b.Title))
	return nil
}

// List prints the catalog as a table, optionally filtered by status.
func (a *App) List(ctx context.Context, status string) error {
	filter := models.Status("")
	if status != "" {
		parsed, err := models.ParseStatus(status)
		if err != nil {
			return err
		}
		filter = parsed
	}

	all, err := a.catalog.List(ctx, filter)
	if err != nil {
		return err
	}
	printlnFn(renderBooks(all))
	return nil
}

// Edit prompts for a book id and applies an interactive partial update.
func (a *App) Edit(ctx context.Context) error {
	id, err := a.promptID("Enter book id to edit")
	if err != nil {
		return err
	}
	return a.editInteractive(ctx, id)
}

// editInteractive shows the current record and collects replacement values.
// An empty answer keeps the current value.
func (a *App) editInteractive(ctx context.Context, id int64) error {
	current, err := a.catalog.Get(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(renderBook(current))

	changes := models.Changes{}
	title, err := GetSimpleText(a.reader, "New title (Enter to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if title != "" {
		changes.Title = &title
	}

	author, err := GetSimpleText(a.reader, "New author (Enter to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if author != "" {
		changes.Author = &author
	}

	statusText, err := GetSimpleText(a.reader, "New status: unread, reading or read (Enter to keep)", os.Stdout)
	if err != nil {
		return err
	}
	if statusText != "" {
		status, err := models.ParseStatus(statusText)
		if err != nil {
			return err
		}
		changes.Status = &status
	}

	if changes.Empty() {
		printlnFn("Nothing to change.")
		return nil
	}

	b, err := a.catalog.Edit(ctx, id, changes)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Updated book #%d: %s", b.ID, b.Title))
	return nil
}

// MarkRead prompts for a book id and marks it read.
func (a *App) MarkRead(ctx context.Context) error {
	id, err := a.promptID("Enter book id to mark as read")
	if err != nil {
		return err
	}

	b, err := a.catalog.MarkRead(ctx, id)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Marked read: #%d %s (finished %s)", b.ID, b.Title, formatDate(b.FinishedAt)))
	return nil
}

// Delete prompts for a book id, confirms, and removes the record for good.
func (a *App) Delete(ctx context.Context) error {
	id, err := a.promptID("Enter book id to delete")
	if err != nil {
		return err
	}
	return a.deleteWithConfirmation(ctx, id, false)
}

// deleteWithConfirmation looks the record up first so the confirmation can
// name it, then deletes. With skipConfirm the question is not asked.
func (a *App) deleteWithConfirmation(ctx context.Context, id int64, skipConfirm bool) error {
	b, err := a.catalog.Get(ctx, id)
	if err != nil {
		return err
	}

	if !skipConfirm {
		ok, err := GetConfirmation(a.reader, fmt.Sprintf("Delete book #%d %q? This cannot be undone.", b.ID, b.Title), os.Stdout)
		if err != nil {
			return err
		}
		if !ok {
			printlnFn("Cancelled.")
			return nil
		}
	}

	if err := a.catalog.Delete(ctx, id); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Deleted book #%d.", id))
	return nil
}

// Info prints catalog statistics and metadata.
func (a *App) Info(ctx context.Context) error {
	stats, err := a.catalog.Stats(ctx)
	if err != nil {
		return err
	}
	printlnFn(renderStats(a.config.DBPath, stats))
	return nil
}

// Check re-runs the full integrity check on the open catalog.
func (a *App) Check(ctx context.Context) error {
	report, err := a.store.VerifyIntegrity(ctx)
	if err != nil {
		return err
	}
	if !report.Ok {
		return fmt.Errorf("%w: %s", common.ErrCorrupted, strings.Join(report.Problems, "; "))
	}
	printlnFn("Integrity check passed.")
	return nil
}

func (a *App) promptID(prompt string) (int64, error) {
	text, err := GetSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	return parseID(text)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be a number", common.ErrValidation)
	}
	return id, nil
}
