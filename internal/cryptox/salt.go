package cryptox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bookvault-cli/bookvault/internal/common"
)

// SaltSize is the size of the sidecar salt file in bytes.
const SaltSize = 16

// SaltPath returns the conventional sidecar salt location for a catalog file.
func SaltPath(dbPath string) string {
	return dbPath + ".salt"
}

// LoadOrCreateSalt reads the salt file at path, creating it with fresh random
// bytes on first use. The file is written with 0600 permissions since it sits
// next to the catalog. A salt file of the wrong size is reported as an error
// rather than silently regenerated; regenerating would make the catalog
// permanently unreadable in raw key mode.
func LoadOrCreateSalt(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != SaltSize {
			return nil, fmt.Errorf("salt file %s has unexpected size %d", path, len(data))
		}
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read salt file: %w", err)
	}

	salt := common.GenerateRandByteArray(SaltSize)
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, fmt.Errorf("write salt file: %w", err)
	}
	return salt, nil
}
