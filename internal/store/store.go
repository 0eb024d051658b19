// Package store owns the encrypted catalog file: opening or creating it,
// verifying its integrity, scoping transactions, and closing it. All key
// material stays inside the Store and is wiped on Close.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/bookvault-cli/bookvault/internal/common"
	"github.com/bookvault-cli/bookvault/internal/cryptox"
	"github.com/bookvault-cli/bookvault/internal/dbx"
	"github.com/bookvault-cli/bookvault/internal/logging"
)

// Store is an open handle to one encrypted catalog file. It is not safe for
// concurrent use; the connection pool is capped at one.
type Store struct {
	db   *sql.DB
	path string
	key  *cryptox.Key
	log  logging.Logger

	created    bool
	openDigest []byte
}

// Open opens the catalog at path with the given key, creating and
// initializing a new encrypted file when none exists.
//
// A wrong passphrase and a file the cipher cannot read are deliberately
// indistinguishable: both return ErrOpenFailed. A plaintext SQLite file at
// path is rejected before the engine touches it.
func Open(ctx context.Context, path string, key *cryptox.Key, log logging.Logger) (*Store, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: no key material", common.ErrOpenFailed)
	}

	isNew := false
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", common.ErrOpenFailed, err)
		}
		isNew = true
	} else {
		enc, err := sqlite3.IsEncrypted(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrOpenFailed, err)
		}
		if !enc {
			return nil, fmt.Errorf("%w: %s is not an encrypted catalog", common.ErrOpenFailed, path)
		}
	}

	if isNew {
		// Create the file 0600 up front so the catalog is never readable
		// by others, not even between creation and the first write.
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrOpenFailed, err)
		}
		_ = f.Close()
	}

	db, err := sql.Open("sqlite3", buildDSN(path, key))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrOpenFailed, err)
	}
	db.SetMaxOpenConns(1)

	// The key pragma is applied lazily; a wrong passphrase only surfaces on
	// the first real read of the schema.
	var n int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM sqlite_master`).Scan(&n); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: invalid passphrase or unreadable catalog: %v", common.ErrOpenFailed, err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: schema init: %v", common.ErrOpenFailed, err)
	}

	s := &Store{db: db, path: path, key: key, log: log.With("db", path), created: isNew}
	if d, err := fileDigest(path); err == nil {
		s.openDigest = d
	}
	s.log.Debug(ctx, "catalog opened", "created", isNew, "key_mode", string(key.Mode()))
	return s, nil
}

func buildDSN(path string, key *cryptox.Key) string {
	params := url.Values{}
	params.Set("_pragma_key", key.PragmaValue())
	params.Set("_pragma_cipher_page_size", "4096")
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "1")
	return "file:" + path + "?" + params.Encode()
}

// Path returns the catalog file location.
func (s *Store) Path() string {
	return s.path
}

// Created reports whether Open initialized a brand-new catalog file.
func (s *Store) Created() bool {
	return s.created
}

// IntegrityReport is the outcome of a full engine integrity check.
type IntegrityReport struct {
	Ok       bool
	Problems []string
}

// VerifyIntegrity runs the engine's full integrity check and collects any
// problem lines. Since the catalog was already opened with the right key,
// a failure here means corruption, not a wrong passphrase.
func (s *Store) VerifyIntegrity(ctx context.Context) (*IntegrityReport, error) {
	rows, err := s.db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorrupted, err)
	}
	defer rows.Close()

	report := &IntegrityReport{}
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrCorrupted, err)
		}
		if line != "ok" {
			report.Problems = append(report.Problems, line)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorrupted, err)
	}
	report.Ok = len(report.Problems) == 0
	return report, nil
}

// WithTx runs fn inside a single transaction, committing on success and
// rolling back on error or panic. Errors returned by fn pass through
// unchanged so callers can keep matching them with errors.Is; begin and
// commit failures are reported as ErrTxFailed.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	var fnErr error
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		fnErr = fn(ctx, tx)
		return fnErr
	})
	if err != nil && err != fnErr {
		return fmt.Errorf("%w: %v", common.ErrTxFailed, err)
	}
	return err
}

// Close releases the database handle and wipes the key material. The Store
// must not be used afterwards.
func (s *Store) Close(ctx context.Context) error {
	err := s.db.Close()
	s.key.Zero()

	if d, derr := fileDigest(s.path); derr == nil && s.openDigest != nil {
		s.log.Debug(ctx, "catalog closed", "changed_on_disk", !bytes.Equal(d, s.openDigest))
	} else {
		s.log.Debug(ctx, "catalog closed")
	}
	return err
}
