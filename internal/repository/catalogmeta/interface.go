package catalogmeta

import "context"

// Repository stores small key/value facts about the catalog itself, such as
// when it was created and last opened. The table lives inside the encrypted
// file, so its contents are protected like everything else.
type Repository interface {
	// Get returns the value for key, or nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns all stored keys and values.
	List(ctx context.Context) (map[string][]byte, error)
}
