// Package domain implements the smaller encrypted collections that sit
// alongside notes: notebooks, tags, and free-form per-vault settings. Each
// follows the same sealed-field, AAD-bound pattern as
// [github.com/dwirx/notevault/notecipher], scaled down to their single
// sensitive field.
package domain

import (
	"fmt"
	"time"

	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/payload"
	"github.com/dwirx/notevault/vaultcrypto"
)

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

func seal(key []byte, aad, plaintext []byte) (string, error) {
	alg := vaultcrypto.XChaCha20Poly1305Alg

	aead, err := vaultcrypto.NewAEAD(alg, key)
	if err != nil {
		return "", err
	}

	nonce, err := vaultcrypto.RandBytes(alg.NonceSize())
	if err != nil {
		return "", err
	}

	ct, err := aead.Seal(nonce, vaultcrypto.Pad(plaintext, vaultcrypto.PaddingBlock), aad)
	if err != nil {
		return "", err
	}

	return payload.SerializeV2(payload.V2{Algorithm: alg, Nonce: nonce, Ciphertext: ct, AAD: aad})
}

func open(key []byte, blob string, expectID, expectVaultID string) ([]byte, error) {
	if !payload.Detect([]byte(blob)) {
		return nil, noteerrors.ErrUnsupportedVersion
	}

	p, err := payload.ParseV2(blob)
	if err != nil {
		return nil, err
	}

	if !vaultcrypto.VerifyAAD(p.AAD, expectID, expectVaultID, payload.Version2) {
		return nil, noteerrors.ErrAADMismatch
	}

	aead, err := vaultcrypto.NewAEAD(p.Algorithm, key)
	if err != nil {
		return nil, err
	}

	padded, err := aead.Open(p.Nonce, p.Ciphertext, p.AAD)
	if err != nil {
		return nil, noteerrors.ErrDecrypt
	}

	plain, err := vaultcrypto.Unpad(padded, vaultcrypto.PaddingBlock)
	if err != nil {
		return nil, noteerrors.ErrInvalidPadding
	}

	return plain, nil
}

// Notebook is a named grouping notes can be filed under.
type Notebook struct {
	ID        string
	VaultID   string
	Name      string
	CreatedAt time.Time
}

// EncryptedNotebook is Notebook's on-disk form: its name sealed as a v2
// payload, bound to (ID, VaultID, "2.0").
type EncryptedNotebook struct {
	ID        string
	VaultID   string
	Name      string // payload.V2, serialized
	CreatedAt time.Time
}

// EncryptNotebook seals n's name under key.
func EncryptNotebook(n Notebook, key []byte) (EncryptedNotebook, error) {
	aad := vaultcrypto.BuildAAD(n.ID, n.VaultID, payload.Version2)

	blob, err := seal(key, aad, []byte(n.Name))
	if err != nil {
		return EncryptedNotebook{}, errf("domain: seal notebook name: %w", err)
	}

	return EncryptedNotebook{ID: n.ID, VaultID: n.VaultID, Name: blob, CreatedAt: n.CreatedAt}, nil
}

// DecryptNotebook is the inverse of [EncryptNotebook].
func DecryptNotebook(enc EncryptedNotebook, key []byte) (Notebook, error) {
	name, err := open(key, enc.Name, enc.ID, enc.VaultID)
	if err != nil {
		return Notebook{}, errf("domain: decrypt notebook name: %w", err)
	}

	return Notebook{ID: enc.ID, VaultID: enc.VaultID, Name: string(name), CreatedAt: enc.CreatedAt}, nil
}

// Tag is a short label attachable to notes.
type Tag struct {
	ID      string
	VaultID string
	Label   string
}

// EncryptedTag is Tag's on-disk form.
type EncryptedTag struct {
	ID      string
	VaultID string
	Label   string // payload.V2, serialized
}

// EncryptTag seals t's label under key.
func EncryptTag(t Tag, key []byte) (EncryptedTag, error) {
	aad := vaultcrypto.BuildAAD(t.ID, t.VaultID, payload.Version2)

	blob, err := seal(key, aad, []byte(t.Label))
	if err != nil {
		return EncryptedTag{}, errf("domain: seal tag label: %w", err)
	}

	return EncryptedTag{ID: t.ID, VaultID: t.VaultID, Label: blob}, nil
}

// DecryptTag is the inverse of [EncryptTag].
func DecryptTag(enc EncryptedTag, key []byte) (Tag, error) {
	label, err := open(key, enc.Label, enc.ID, enc.VaultID)
	if err != nil {
		return Tag{}, errf("domain: decrypt tag label: %w", err)
	}

	return Tag{ID: enc.ID, VaultID: enc.VaultID, Label: string(label)}, nil
}

// Setting is one entry in a vault's free-form key-value preference bag,
// e.g. "remember_me_duration".
type Setting struct {
	VaultID string
	Key     string
	Value   string
}

// EncryptedSetting is Setting's on-disk form.
type EncryptedSetting struct {
	VaultID string
	Key     string
	Value   string // payload.V2, serialized
}

// EncryptSetting seals s's value under key.
func EncryptSetting(s Setting, key []byte) (EncryptedSetting, error) {
	aad := vaultcrypto.BuildAAD(s.Key, s.VaultID, payload.Version2)

	blob, err := seal(key, aad, []byte(s.Value))
	if err != nil {
		return EncryptedSetting{}, errf("domain: seal setting value: %w", err)
	}

	return EncryptedSetting{VaultID: s.VaultID, Key: s.Key, Value: blob}, nil
}

// DecryptSetting is the inverse of [EncryptSetting].
func DecryptSetting(enc EncryptedSetting, key []byte) (Setting, error) {
	value, err := open(key, enc.Value, enc.Key, enc.VaultID)
	if err != nil {
		return Setting{}, errf("domain: decrypt setting value: %w", err)
	}

	return Setting{VaultID: enc.VaultID, Key: enc.Key, Value: string(value)}, nil
}
