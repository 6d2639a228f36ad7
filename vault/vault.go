// Package vault implements the vault lifecycle state machine: create,
// unlock, lock, and destroy, holding the derived key and recovery phrase in
// process memory only while unlocked and zeroizing both on every teardown.
package vault

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dwirx/notevault/mnemonic"
	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/store"
	"github.com/dwirx/notevault/vaultcrypto"
)

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// meta is the JSON shape persisted in [store.SlotVaultMeta].
//
//nolint:tagliatelle
type meta struct {
	VaultID string              `json:"vault_id"`
	Hash    string              `json:"hash"`
	KDF     vaultcrypto.KDFParams `json:"kdf"`
}

// Vault is the in-process handle to a single vault's lifecycle. It is safe
// for concurrent use; every state transition runs under mu.
type Vault struct {
	mu sync.Mutex

	storage store.Storage

	exists   bool
	unlocked bool

	vaultID   string
	vaultHash string
	kdf       vaultcrypto.KDFParams

	key      []byte // derived key; zeroized on Lock/Destroy
	phrase   []byte // normalized mnemonic bytes; zeroized on Lock/Destroy
	closeOnce sync.Once
}

// config holds options for [Create].
type config struct {
	algorithm vaultcrypto.Algorithm
}

// Option configures vault creation.
type Option func(*config)

// WithAlgorithm selects the KDF family a newly created vault uses.
// Defaults to [vaultcrypto.Argon2id].
func WithAlgorithm(alg vaultcrypto.Algorithm) Option {
	return func(c *config) { c.algorithm = alg }
}

// Exists reports whether storage already holds vault metadata.
func Exists(ctx context.Context, storage store.Storage) (bool, error) {
	_, err := storage.GetKV(ctx, store.SlotVaultMeta)
	if err == store.ErrNotFound {
		return false, nil
	}

	if err != nil {
		return false, errf("vault: exists: %w", err)
	}

	return true, nil
}

// Create validates phrase (or generates one if empty), derives a fresh key
// under newly generated argon2id params, persists vault metadata, and
// returns an unlocked [Vault]. It fails with [noteerrors.ErrVaultExists] if
// storage already holds vault metadata.
func Create(ctx context.Context, storage store.Storage, phrase string, opts ...Option) (*Vault, string, error) {
	cfg := &config{algorithm: vaultcrypto.Argon2id}
	for _, opt := range opts {
		opt(cfg)
	}

	if exists, err := Exists(ctx, storage); err != nil {
		return nil, "", err
	} else if exists {
		return nil, "", noteerrors.ErrVaultExists
	}

	if len(phrase) == 0 {
		generated, err := mnemonic.Generate()
		if err != nil {
			return nil, "", errf("vault: create: generate mnemonic: %w", err)
		}

		phrase = generated
	}

	if !mnemonic.Validate(phrase) {
		return nil, "", noteerrors.ErrInvalidMnemonic
	}

	salt, err := vaultcrypto.GenerateSalt()
	if err != nil {
		return nil, "", errf("vault: create: generate salt: %w", err)
	}

	params := vaultcrypto.DefaultParams(cfg.algorithm)
	params.Salt = salt

	norm := mnemonic.Normalize(phrase)

	key, err := vaultcrypto.Derive([]byte(norm), params)
	if err != nil && err != noteerrors.ErrKDFUnavailable {
		return nil, "", errf("vault: create: derive key: %w", err)
	}

	vaultID := mnemonic.VaultID(phrase)
	hash := mnemonic.Hash(phrase)

	m := meta{VaultID: vaultID, Hash: hash, KDF: params}

	blob, merr := json.Marshal(m)
	if merr != nil {
		return nil, "", errf("vault: create: marshal meta: %w", merr)
	}

	if err := storage.PutKV(ctx, store.SlotVaultMeta, blob); err != nil {
		return nil, "", errf("vault: create: persist meta: %w", err)
	}

	v := &Vault{
		storage:   storage,
		exists:    true,
		unlocked:  true,
		vaultID:   vaultID,
		vaultHash: hash,
		kdf:       params,
		key:       key,
		phrase:    []byte(norm),
	}

	return v, phrase, nil
}

// Unlock loads persisted vault metadata, validates phrase, and compares its
// hash to the stored [meta.Hash] in constant time before deriving the key.
// Returns [noteerrors.ErrVaultNotFound] if no vault metadata is persisted and
// [noteerrors.ErrAuthFailed] on any mismatch, deliberately without
// distinguishing the cause.
func Unlock(ctx context.Context, storage store.Storage, phrase string) (*Vault, error) {
	blob, err := storage.GetKV(ctx, store.SlotVaultMeta)
	if err == store.ErrNotFound {
		return nil, noteerrors.ErrVaultNotFound
	}

	if err != nil {
		return nil, errf("vault: unlock: load meta: %w", err)
	}

	var m meta
	if err := json.Unmarshal(blob, &m); err != nil {
		return nil, errf("vault: unlock: unmarshal meta: %w", err)
	}

	if !mnemonic.Validate(phrase) {
		return nil, noteerrors.ErrAuthFailed
	}

	got := mnemonic.Hash(phrase)
	if subtle.ConstantTimeCompare([]byte(got), []byte(m.Hash)) != 1 {
		return nil, noteerrors.ErrAuthFailed
	}

	norm := mnemonic.Normalize(phrase)

	key, err := vaultcrypto.Derive([]byte(norm), m.KDF)
	if err != nil && err != noteerrors.ErrKDFUnavailable {
		return nil, errf("vault: unlock: derive key: %w", err)
	}

	return &Vault{
		storage:   storage,
		exists:    true,
		unlocked:  true,
		vaultID:   m.VaultID,
		vaultHash: m.Hash,
		kdf:       m.KDF,
		key:       key,
		phrase:    []byte(norm),
	}, nil
}

// VaultID returns the vault's stable identifier.
func (v *Vault) VaultID() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.vaultID
}

// IsUnlocked reports whether the vault currently holds a derived key.
func (v *Vault) IsUnlocked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.unlocked
}

// KDFParams returns the vault's persisted KDF tuning, needed by callers that
// must reproduce or display the derivation parameters (e.g. backup/migrate).
func (v *Vault) KDFParams() vaultcrypto.KDFParams {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.kdf
}

// Key returns a defensive copy of the derived key. Returns
// [noteerrors.ErrVaultLocked] if the vault is not currently unlocked.
func (v *Vault) Key() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return nil, noteerrors.ErrVaultLocked
	}

	cp := make([]byte, len(v.key))
	copy(cp, v.key)

	return cp, nil
}

// Mnemonic returns a defensive copy of the in-memory normalized recovery
// phrase bytes. Returns [noteerrors.ErrVaultLocked] if locked. Used only by
// [github.com/dwirx/notevault/session] to seal a session token.
func (v *Vault) Mnemonic() ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.unlocked {
		return nil, noteerrors.ErrVaultLocked
	}

	cp := make([]byte, len(v.phrase))
	copy(cp, v.phrase)

	return cp, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Lock wipes the derived key and mnemonic from memory and transitions to
// locked. Safe to call multiple times.
func (v *Vault) Lock() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lockLocked()
}

func (v *Vault) lockLocked() {
	zero(v.key)
	zero(v.phrase)

	v.key = nil
	v.phrase = nil
	v.unlocked = false
}

// Destroy locks the vault, then purges vault metadata and every record and
// session slot scoped to its vault id.
func (v *Vault) Destroy(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lockLocked()

	vaultID := v.vaultID

	if err := v.storage.DeleteKV(ctx, store.SlotVaultMeta); err != nil {
		return errf("vault: destroy: delete meta: %w", err)
	}

	if err := v.storage.DeleteKV(ctx, store.SlotSessionToken); err != nil {
		return errf("vault: destroy: delete session token: %w", err)
	}

	if err := v.storage.DeleteKV(ctx, store.SlotSessionKey); err != nil {
		return errf("vault: destroy: delete session key: %w", err)
	}

	for _, kind := range []store.Kind{store.KindNote, store.KindNotebook, store.KindTag, store.KindSettings} {
		records, err := v.storage.Scan(ctx, kind, vaultID)
		if err != nil {
			return errf("vault: destroy: scan %s: %w", kind, err)
		}

		for id := range records {
			if err := v.storage.Delete(ctx, kind, vaultID, id); err != nil {
				return errf("vault: destroy: delete %s %s: %w", kind, id, err)
			}
		}
	}

	v.exists = false

	return nil
}

// Close is an alias for Lock provided for symmetry with callers that treat
// the vault handle as a resource to be closed; it is idempotent.
func (v *Vault) Close() error {
	v.closeOnce.Do(v.Lock)
	return nil
}
