package books

import (
	"context"

	"github.com/bookvault-cli/bookvault/internal/models"
)

// Repository describes CRUD and query operations for catalog records.
// Implementations are backed by the encrypted SQLite catalog and are bound
// to a dbx.DBTX, so the same code runs against *sql.DB or *sql.Tx.
type Repository interface {
	// Insert stores a new book and returns the id assigned by the database.
	Insert(ctx context.Context, book *models.Book) (int64, error)

	// GetByID returns a book by its identifier.
	GetByID(ctx context.Context, id int64) (*models.Book, error)

	// List returns books ordered by id ascending. An empty status returns
	// the whole catalog; otherwise only books in that reading state.
	List(ctx context.Context, status models.Status) ([]models.Book, error)

	// Update persists all mutable fields of the book identified by book.ID.
	Update(ctx context.Context, book *models.Book) error

	// Delete permanently removes a book. The freed id is never reused.
	Delete(ctx context.Context, id int64) error

	// CountByStatus returns how many books are in each reading state.
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}
