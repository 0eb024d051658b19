// Package catalog implements the application service behind every CLI
// command. It validates input before any transaction starts, stamps the
// record dates, enforces the status transition rules, and runs each
// operation inside exactly one store transaction.
package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bookvault-cli/bookvault/internal/common"
	"github.com/bookvault-cli/bookvault/internal/dbx"
	"github.com/bookvault-cli/bookvault/internal/logging"
	"github.com/bookvault-cli/bookvault/internal/models"
	"github.com/bookvault-cli/bookvault/internal/repository/books"
	"github.com/bookvault-cli/bookvault/internal/repository/catalogmeta"
	"github.com/bookvault-cli/bookvault/internal/store"
)

// Service defines the catalog operations the CLI dispatches to.
//
// Contract:
//   - Add: insert a new record with status unread and both dates stamped.
//   - List: all records ordered by id, optionally filtered by status.
//   - Get: one record by id.
//   - Edit: partial update; a status change re-applies the date rules.
//   - MarkRead: move a record to read; calling it again changes nothing.
//   - Delete: remove a record permanently.
//   - Stats: per-status counts plus the catalog metadata, for info.
//   - Export: plaintext JSON dump of the whole catalog.
//   - TouchOpened: record the open in the catalog metadata.
//
// Validation failures are reported as common.ErrValidation and missing ids
// as common.ErrNotFound, both before or inside the single transaction each
// method runs; callers match them with errors.Is.
type Service interface {
	Add(ctx context.Context, title, author string) (*models.Book, error)
	List(ctx context.Context, status models.Status) ([]models.Book, error)
	Get(ctx context.Context, id int64) (*models.Book, error)
	Edit(ctx context.Context, id int64, changes models.Changes) (*models.Book, error)
	MarkRead(ctx context.Context, id int64) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*Stats, error)
	Export(ctx context.Context, w io.Writer) (*Manifest, error)
	TouchOpened(ctx context.Context, appVersion string) error
}

// Stats summarizes the catalog for the info command.
type Stats struct {
	Total    int
	ByStatus map[models.Status]int

	CreatedAt    *time.Time
	CreatedWith  string
	LastOpenedAt *time.Time
}

type catalogService struct {
	store *store.Store
	log   logging.Logger
}

// NewService binds a Service to an open encrypted store.
func NewService(st *store.Store, log logging.Logger) Service {
	return &catalogService{store: st, log: log}
}

func bookRepo(tx dbx.DBTX) books.Repository {
	return books.NewSQLiteRepository(tx)
}

func metaRepo(tx dbx.DBTX) catalogmeta.Repository {
	return catalogmeta.NewSQLiteRepository(tx)
}

func (s *catalogService) Add(ctx context.Context, title, author string) (*models.Book, error) {
	now := time.Now().UTC()
	book := &models.Book{
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		Status:    models.StatusUnread,
		AddedAt:   now,
		UpdatedAt: now,
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := bookRepo(tx).Insert(ctx, book)
		if err != nil {
			return err
		}
		book.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "book added", "id", book.ID)
	return book, nil
}

func (s *catalogService) List(ctx context.Context, status models.Status) ([]models.Book, error) {
	if status != "" {
		if _, err := models.ParseStatus(string(status)); err != nil {
			return nil, err
		}
	}

	var result []models.Book
	err := s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		result, err = bookRepo(tx).List(ctx, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*models.Book, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	var book *models.Book
	err := s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		book, err = bookRepo(tx).GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *catalogService) Edit(ctx context.Context, id int64, changes models.Changes) (*models.Book, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if err := changes.Validate(); err != nil {
		return nil, err
	}

	var book *models.Book
	err := s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := bookRepo(tx)
		b, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		// An edit with nothing to change still verifies the id exists.
		if changes.Empty() {
			book = b
			return nil
		}

		now := time.Now().UTC()
		if changes.Title != nil {
			b.Title = strings.TrimSpace(*changes.Title)
		}
		if changes.Author != nil {
			b.Author = strings.TrimSpace(*changes.Author)
		}
		if changes.Status != nil && *changes.Status != b.Status {
			applyStatus(b, *changes.Status, now)
		}
		b.UpdatedAt = now

		if err := repo.Update(ctx, b); err != nil {
			return err
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "book edited", "id", id)
	return book, nil
}

func (s *catalogService) MarkRead(ctx context.Context, id int64) (*models.Book, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	var book *models.Book
	err := s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := bookRepo(tx)
		b, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		// Already read: keep the original finish date and write nothing.
		if b.Status == models.StatusRead {
			book = b
			return nil
		}

		now := time.Now().UTC()
		applyStatus(b, models.StatusRead, now)
		b.UpdatedAt = now

		if err := repo.Update(ctx, b); err != nil {
			return err
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "book marked read", "id", id)
	return book, nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	if err := validID(id); err != nil {
		return err
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return bookRepo(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Debug(ctx, "book deleted", "id", id)
	return nil
}

func (s *catalogService) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[models.Status]int)}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		counts, err := bookRepo(tx).CountByStatus(ctx)
		if err != nil {
			return err
		}
		for status, n := range counts {
			stats.ByStatus[status] = n
			stats.Total += n
		}

		meta, err := metaRepo(tx).List(ctx)
		if err != nil {
			return err
		}
		stats.CreatedAt = metaTime(meta[catalogmeta.KeyCreatedAt])
		stats.LastOpenedAt = metaTime(meta[catalogmeta.KeyLastOpenedAt])
		stats.CreatedWith = string(meta[catalogmeta.KeyCreatedWith])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// TouchOpened stamps last_opened_at and, on a catalog that has never been
// opened before, seeds created_at and created_with.
func (s *catalogService) TouchOpened(ctx context.Context, appVersion string) error {
	now := []byte(time.Now().UTC().Format(time.RFC3339Nano))

	return s.store.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		meta := metaRepo(tx)

		created, err := meta.Get(ctx, catalogmeta.KeyCreatedAt)
		if err != nil {
			return err
		}
		if created == nil {
			if err := meta.Set(ctx, catalogmeta.KeyCreatedAt, now); err != nil {
				return err
			}
			if err := meta.Set(ctx, catalogmeta.KeyCreatedWith, []byte(appVersion)); err != nil {
				return err
			}
		}
		return meta.Set(ctx, catalogmeta.KeyLastOpenedAt, now)
	})
}

// applyStatus moves b into status and keeps the reading dates consistent:
// finished_at exists only while the book is read and is written once per
// transition into read; started_at is set on the first move out of unread
// and kept from then on. Callers invoke it only on an actual change.
func applyStatus(b *models.Book, status models.Status, now time.Time) {
	if status != models.StatusUnread && b.StartedAt == nil {
		b.StartedAt = &now
	}
	if status == models.StatusRead {
		b.FinishedAt = &now
	} else {
		b.FinishedAt = nil
	}
	b.Status = status
}

func validID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", common.ErrValidation)
	}
	return nil
}

// metaTime parses a stored timestamp. Metadata is advisory; an absent or
// unreadable value hides the field rather than failing the whole info command.
func metaTime(v []byte) *time.Time {
	if v == nil {
		return nil
	}
	t, err := time.Parse(time.RFC3339, string(v))
	if err != nil {
		return nil
	}
	return &t
}
