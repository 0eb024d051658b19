package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bookvault-cli/bookvault/internal/catalog"
	"github.com/bookvault-cli/bookvault/internal/models"
)

// renderBooks formats a catalog listing as an aligned table.
func renderBooks(books []models.Book) string {
	if len(books) == 0 {
		return "No books in the catalog."
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tSTATUS\tADDED\tFINISHED")
	for _, b := range books {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Author, b.Status, formatDate(&b.AddedAt), formatDate(b.FinishedAt))
	}
	_ = w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

// renderBook formats a single record as a detail block.
func renderBook(b *models.Book) string {
	lines := []string{
		fmt.Sprintf("ID:       %d", b.ID),
		fmt.Sprintf("Title:    %s", b.Title),
		fmt.Sprintf("Author:   %s", orDash(b.Author)),
		fmt.Sprintf("Status:   %s", b.Status),
		fmt.Sprintf("Added:    %s", formatDate(&b.AddedAt)),
		fmt.Sprintf("Updated:  %s", formatDate(&b.UpdatedAt)),
		fmt.Sprintf("Started:  %s", formatDate(b.StartedAt)),
		fmt.Sprintf("Finished: %s", formatDate(b.FinishedAt)),
	}
	return strings.Join(lines, "\n")
}

// renderStats formats the info block for an open catalog.
func renderStats(path string, stats *catalog.Stats) string {
	lines := []string{
		fmt.Sprintf("Catalog:      %s", path),
		fmt.Sprintf("Books:        %d", stats.Total),
		fmt.Sprintf("  unread:     %d", stats.ByStatus[models.StatusUnread]),
		fmt.Sprintf("  reading:    %d", stats.ByStatus[models.StatusReading]),
		fmt.Sprintf("  read:       %d", stats.ByStatus[models.StatusRead]),
		fmt.Sprintf("Created:      %s", formatDate(stats.CreatedAt)),
	}
	if stats.CreatedWith != "" {
		lines = append(lines, fmt.Sprintf("Created with: %s", stats.CreatedWith))
	}
	lines = append(lines, fmt.Sprintf("Last opened:  %s", formatDate(stats.LastOpenedAt)))
	return strings.Join(lines, "\n")
}

// formatDate renders a date for display, or a dash when absent.
func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
