package store

import (
	"crypto/sha256"
	"io"
	"os"
)

// fileDigest hashes the catalog file on disk so Close can report whether
// the session changed it.
func fileDigest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
