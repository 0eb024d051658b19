package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bookvault-cli/bookvault/internal/catalog"
	"github.com/bookvault-cli/bookvault/internal/common"
	"github.com/bookvault-cli/bookvault/internal/config"
	"github.com/bookvault-cli/bookvault/internal/cryptox"
	"github.com/bookvault-cli/bookvault/internal/logging"
	"github.com/bookvault-cli/bookvault/internal/store"
)

// passphraseEnv lets scripts supply the passphrase non-interactively.
const passphraseEnv = "BOOKVAULT_PASSPHRASE"

// passphraseAttempts bounds how often an empty interactive passphrase is
// re-prompted before giving up.
const passphraseAttempts = 3

// App carries the resolved configuration and, while a session is open, the
// store and catalog service every command handler works against.
type App struct {
	config *config.Config
	log    logging.Logger
	reader *bufio.Reader

	// Session state, set by withSession for the duration of one open catalog.
	store   *store.Store
	catalog catalog.Service
}

// NewApp returns an App reading interactive input from stdin. Configuration
// and logger are filled in by the root command before any session starts.
func NewApp() *App {
	return &App{reader: bufio.NewReader(os.Stdin)}
}

// Session opens the catalog and runs the interactive command loop until the
// user quits or input ends.
func (a *App) Session(ctx context.Context) error {
	return a.withSession(ctx, func(ctx context.Context) error {
		printlnFn("bookvault (type 'help' for commands)")
		runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
		return nil
	})
}

// withSession derives the key, opens the catalog, verifies its integrity,
// records the open, and runs fn with the session state in place. The store
// is closed and the key material wiped on every path out of this function.
func (a *App) withSession(ctx context.Context, fn func(ctx context.Context) error) error {
	key, err := a.deriveKey()
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, a.config.DBPath, key, a.log)
	if err != nil {
		key.Zero()
		return err
	}
	defer func() {
		a.store, a.catalog = nil, nil
		_ = st.Close(ctx)
	}()

	report, err := st.VerifyIntegrity(ctx)
	if err != nil {
		return err
	}
	if !report.Ok {
		return fmt.Errorf("%w: %s", common.ErrCorrupted, strings.Join(report.Problems, "; "))
	}

	if st.Created() {
		printlnFn("Created new encrypted catalog at", st.Path())
	}

	svc := catalog.NewService(st, a.log)
	if watcher, werr := startSessionWatcher(ctx, st.Path(), a.log); werr != nil {
		a.log.Warn(ctx, "session watcher unavailable", "error", werr.Error())
	} else {
		defer watcher.Close()
		svc = &watchedService{Service: svc, watcher: watcher}
	}

	if err := svc.TouchOpened(ctx, "bookvault "+version); err != nil {
		return err
	}

	a.store, a.catalog = st, svc
	return fn(ctx)
}

// deriveKey obtains the passphrase and turns it into key material for the
// configured key mode. The passphrase itself is wiped before returning.
func (a *App) deriveKey() (*cryptox.Key, error) {
	mode, err := cryptox.ParseMode(a.config.KeyMode)
	if err != nil {
		return nil, err
	}

	pass, err := a.acquirePassphrase()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pass)

	saltPath := ""
	if mode == cryptox.ModeRaw {
		saltPath = cryptox.SaltPath(a.config.DBPath)
	}
	return cryptox.DeriveKey(pass, mode, saltPath)
}

func (a *App) acquirePassphrase() ([]byte, error) {
	if env := os.Getenv(passphraseEnv); env != "" {
		return []byte(env), nil
	}

	for attempt := 0; attempt < passphraseAttempts; attempt++ {
		pass, err := GetPassword(os.Stdout)
		if err != nil {
			return nil, err
		}
		if len(pass) > 0 {
			return pass, nil
		}
		printlnFn("Passphrase must not be empty.")
	}
	return nil, fmt.Errorf("%w: no passphrase supplied", common.ErrValidation)
}

func (a *App) getStatus() string {
	return "(" + filepath.Base(a.config.DBPath) + ")"
}
