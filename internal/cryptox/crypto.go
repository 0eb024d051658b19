package cryptox

import (
	"fmt"

	"github.com/bookvault-cli/bookvault/internal/common"
	"golang.org/x/crypto/argon2"
)

// Mode selects how a passphrase becomes the cipher key for the catalog engine.
type Mode string

const (
	// ModePassphrase hands the passphrase to the engine unchanged and lets
	// the engine run its own KDF.
	ModePassphrase Mode = "passphrase"

	// ModeRaw derives a 256-bit key with argon2id and a sidecar salt file,
	// bypassing the engine KDF.
	ModeRaw Mode = "raw"
)

// ParseMode validates a mode name coming from configuration or flags.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePassphrase, ModeRaw:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: unknown key mode %q", common.ErrValidation, s)
}

// Key carries opaque key material for the catalog engine. It is held in
// memory only; nothing in this package persists or logs it.
type Key struct {
	mode     Mode
	material []byte
}

func DeriveRawKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// DeriveKey turns a passphrase into a Key usable by the encrypted store.
//
// In ModePassphrase the passphrase bytes are copied as-is and the engine
// performs its own key derivation, so the same passphrase always opens the
// same catalog. In ModeRaw the salt at saltPath is loaded (or created on
// first use) and an argon2id key is derived from passphrase and salt; the
// same passphrase with the same salt file yields the same key.
//
// An empty passphrase is rejected: the engine would treat it as "no
// encryption", silently producing a plaintext catalog.
//
// The caller owns the passphrase buffer and should wipe it after the call.
// The returned Key should be wiped with Zero when no longer needed.
//
// Example:
//
//	key, err := cryptox.DeriveKey(passphrase, cryptox.ModePassphrase, "")
//	if err != nil {
//	    return err
//	}
//	defer key.Zero()
func DeriveKey(passphrase []byte, mode Mode, saltPath string) (*Key, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: empty passphrase", common.ErrValidation)
	}

	switch mode {
	case ModePassphrase:
		material := make([]byte, len(passphrase))
		copy(material, passphrase)
		return &Key{mode: mode, material: material}, nil

	case ModeRaw:
		salt, err := LoadOrCreateSalt(saltPath)
		if err != nil {
			return nil, err
		}
		return &Key{mode: mode, material: DeriveRawKey(passphrase, salt)}, nil
	}

	return nil, fmt.Errorf("%w: unknown key mode %q", common.ErrValidation, mode)
}

// Mode reports how the key material was produced.
func (k *Key) Mode() Mode {
	return k.mode
}

// PragmaValue renders the key in the form the engine's key pragma expects:
// the passphrase itself in ModePassphrase, or a BLOB literal x'<64 hex>'
// in ModeRaw.
func (k *Key) PragmaValue() string {
	if k.mode == ModeRaw {
		return fmt.Sprintf("x'%X'", k.material)
	}
	return string(k.material)
}

// Zero wipes the key material in place. The Key must not be used afterwards.
func (k *Key) Zero() {
	common.WipeByteArray(k.material)
}
