package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/bookvault-cli/bookvault/internal/dbx"
	"github.com/bookvault-cli/bookvault/internal/models"
)

// Manifest is the plaintext JSON document Export writes. Once written it
// lives outside the encrypted catalog, so the CLI warns before producing it.
type Manifest struct {
	ID         string         `json:"id"`
	ExportedAt time.Time      `json:"exported_at"`
	Books      []ExportedBook `json:"books"`
}

// ExportedBook is one catalog record in export form. Absent dates are
// omitted instead of being rendered as null.
type ExportedBook struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Author     string     `json:"author,omitempty"`
	Status     string     `json:"status"`
	AddedAt    time.Time  `json:"added_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Export dumps the whole catalog as an indented JSON manifest to w and
// returns the manifest, including the id that identifies this export.
func (s *catalogService) Export(ctx context.Context, w io.Writer) (*Manifest, error) {
	manifest := &Manifest{
		ID:         uuid.NewString(),
		ExportedAt: time.Now().UTC(),
		Books:      []ExportedBook{},
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		all, err := bookRepo(tx).List(ctx, "")
		if err != nil {
			return err
		}
		for _, b := range all {
			manifest.Books = append(manifest.Books, exportedBook(b))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(manifest); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}

	s.log.Debug(ctx, "catalog exported", "export_id", manifest.ID, "books", len(manifest.Books))
	return manifest, nil
}

func exportedBook(b models.Book) ExportedBook {
	return ExportedBook{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Status:     string(b.Status),
		AddedAt:    b.AddedAt,
		UpdatedAt:  b.UpdatedAt,
		StartedAt:  b.StartedAt,
		FinishedAt: b.FinishedAt,
	}
}
