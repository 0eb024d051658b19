// Package books provides the persistence layer for catalog records.
package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookvault-cli/bookvault/internal/common"
	"github.com/bookvault-cli/bookvault/internal/dbx"
	"github.com/bookvault-cli/bookvault/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert stores a new book and returns its database-assigned id.
func (r *SQLiteRepository) Insert(ctx context.Context, b *models.Book) (int64, error) {
	query := `INSERT INTO books (title, author, status, added_at, updated_at, started_at, finished_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		b.Title, b.Author, string(b.Status), b.AddedAt, b.UpdatedAt, b.StartedAt, b.FinishedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted id: %w", err)
	}
	return id, nil
}

// GetByID returns a single book or ErrNotFound.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	query := `SELECT id, title, author, status, added_at, updated_at, started_at, finished_at
	          FROM books WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	b := &models.Book{}
	var status string
	var started, finished sql.NullTime
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &status, &b.AddedAt, &b.UpdatedAt, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: book %d", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get book %d: %w", id, err)
	}
	b.Status = models.Status(status)
	if started.Valid {
		b.StartedAt = &started.Time
	}
	if finished.Valid {
		b.FinishedAt = &finished.Time
	}
	return b, nil
}

// List returns books ordered by id ascending, optionally filtered by status.
func (r *SQLiteRepository) List(ctx context.Context, status models.Status) ([]models.Book, error) {
	query := `SELECT id, title, author, status, added_at, updated_at, started_at, finished_at
	          FROM books`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select books: %w", err)
	}
	defer rows.Close()

	var result []models.Book
	for rows.Next() {
		var item models.Book
		var st string
		var started, finished sql.NullTime
		if err := rows.Scan(&item.ID, &item.Title, &item.Author, &st, &item.AddedAt, &item.UpdatedAt, &started, &finished); err != nil {
			return nil, err
		}
		item.Status = models.Status(st)
		if started.Valid {
			item.StartedAt = &started.Time
		}
		if finished.Valid {
			item.FinishedAt = &finished.Time
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update persists all mutable fields of the book. It expects exactly one
// row to be affected; otherwise the book does not exist.
func (r *SQLiteRepository) Update(ctx context.Context, b *models.Book) error {
	query := `UPDATE books
	          SET title = ?, author = ?, status = ?, updated_at = ?, started_at = ?, finished_at = ?
	          WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		b.Title, b.Author, string(b.Status), b.UpdatedAt, b.StartedAt, b.FinishedAt, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("%w: book %d", common.ErrNotFound, b.ID)
	}
	return nil
}

// Delete permanently removes a book. Ids are assigned by an AUTOINCREMENT
// column, so a deleted id is never handed out again.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("%w: book %d", common.ErrNotFound, id)
	}
	return nil
}

// CountByStatus returns how many books sit in each reading state.
func (r *SQLiteRepository) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM books GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}
	defer rows.Close()

	result := make(map[models.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		result[models.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
