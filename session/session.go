// Package session implements the "remember me" auto-unlock mechanism: the
// unlocked vault's mnemonic is sealed under a freshly generated, separately
// persisted session key so that compromising the session token alone never
// discloses the vault key.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/payload"
	"github.com/dwirx/notevault/store"
	"github.com/dwirx/notevault/vault"
	"github.com/dwirx/notevault/vaultcrypto"
)

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// Duration selects how long a saved session remains valid.
type Duration time.Duration

const (
	SevenDays   Duration = Duration(7 * 24 * time.Hour)
	ThirtyDays  Duration = Duration(30 * 24 * time.Hour)
	Indefinite  Duration = 0
)

// token is the JSON shape persisted in [store.SlotSessionToken]. The
// mnemonic itself lives only as the ciphertext field below; it is never
// stored or logged in the clear.
//
//nolint:tagliatelle
type token struct {
	EncryptedMnemonic string     `json:"encrypted_mnemonic"` // serialized payload.V2
	CreatedAt         time.Time  `json:"created_at"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"` // nil means indefinite
	VaultID           string     `json:"vault_id"`
	Version           string     `json:"version"`
}

const sessionAAD = "session"

// SaveSessionToken seals v's current mnemonic under a fresh, independent
// 32-byte session key and persists both the sealed token and the key in
// their own storage slots, so deleting the token alone is sufficient to
// break auto-unlock. Precondition: v is unlocked.
func SaveSessionToken(ctx context.Context, storage store.Storage, v *vault.Vault, duration Duration) error {
	mnem, err := v.Mnemonic()
	if err != nil {
		return errf("session: save: %w", err)
	}

	sessionKey, err := vaultcrypto.RandBytes(32)
	if err != nil {
		return errf("session: save: generate session key: %w", err)
	}

	alg := vaultcrypto.XChaCha20Poly1305Alg

	aead, err := vaultcrypto.NewAEAD(alg, sessionKey)
	if err != nil {
		return errf("session: save: %w", err)
	}

	nonce, err := vaultcrypto.RandBytes(alg.NonceSize())
	if err != nil {
		return errf("session: save: nonce: %w", err)
	}

	aad := []byte(v.VaultID() + "\x00" + sessionAAD)

	padded := vaultcrypto.Pad(mnem, vaultcrypto.PaddingBlock)

	ct, err := aead.Seal(nonce, padded, aad)
	if err != nil {
		return errf("session: save: seal: %w", err)
	}

	blob, err := payload.SerializeV2(payload.V2{
		Algorithm:  alg,
		KDF:        v.KDFParams(),
		Nonce:      nonce,
		Ciphertext: ct,
		AAD:        aad,
	})
	if err != nil {
		return errf("session: save: serialize payload: %w", err)
	}

	now := timeNow()

	t := token{
		EncryptedMnemonic: blob,
		CreatedAt:         now,
		VaultID:           v.VaultID(),
		Version:           payload.Version2,
	}

	if duration != Indefinite {
		exp := now.Add(time.Duration(duration))
		t.ExpiresAt = &exp
	}

	tokenBlob, err := json.Marshal(t)
	if err != nil {
		return errf("session: save: marshal token: %w", err)
	}

	if err := storage.PutKV(ctx, store.SlotSessionKey, sessionKey); err != nil {
		return errf("session: save: persist session key: %w", err)
	}

	if err := storage.PutKV(ctx, store.SlotSessionToken, tokenBlob); err != nil {
		return errf("session: save: persist token: %w", err)
	}

	return nil
}

// timeNow is a seam so tests can exercise expiry without a live clock, were
// that ever required; production callers always get the real time.
var timeNow = time.Now

// AutoUnlock loads a previously saved session token and key, validates the
// vault-id and expiry, decrypts the mnemonic, and unlocks the vault via
// [vault.Unlock]. A missing session key, an unreadable token, a vault-id
// mismatch, an expired token, or a failure to decrypt the mnemonic silently
// clears the session (it can no longer be trusted) and returns an error. A
// missing token, a storage read error, or a failure of [vault.Unlock] itself
// returns an error and leaves the session in place. It never partially
// succeeds.
func AutoUnlock(ctx context.Context, storage store.Storage) (*vault.Vault, error) {
	tokenBlob, err := storage.GetKV(ctx, store.SlotSessionToken)
	if err == store.ErrNotFound {
		return nil, noteerrors.ErrNoSessionToken
	}

	if err != nil {
		return nil, errf("session: auto-unlock: load token: %w", err)
	}

	sessionKey, err := storage.GetKV(ctx, store.SlotSessionKey)
	if err == store.ErrNotFound {
		_ = ClearSessionToken(ctx, storage)
		return nil, noteerrors.ErrNoSessionToken
	}

	if err != nil {
		return nil, errf("session: auto-unlock: load session key: %w", err)
	}

	var t token
	if err := json.Unmarshal(tokenBlob, &t); err != nil {
		_ = ClearSessionToken(ctx, storage)
		return nil, errf("session: auto-unlock: unmarshal token: %w", err)
	}

	vaultMetaID, err := currentVaultID(ctx, storage)
	if err != nil {
		return nil, err
	}

	if t.VaultID != vaultMetaID {
		_ = ClearSessionToken(ctx, storage)
		return nil, noteerrors.ErrSessionMismatch
	}

	if t.ExpiresAt != nil && timeNow().After(*t.ExpiresAt) {
		_ = ClearSessionToken(ctx, storage)
		return nil, noteerrors.ErrExpiredSession
	}

	p, err := payload.ParseV2(t.EncryptedMnemonic)
	if err != nil {
		_ = ClearSessionToken(ctx, storage)
		return nil, errf("session: auto-unlock: parse payload: %w", err)
	}

	aead, err := vaultcrypto.NewAEAD(p.Algorithm, sessionKey)
	if err != nil {
		_ = ClearSessionToken(ctx, storage)
		return nil, err
	}

	padded, err := aead.Open(p.Nonce, p.Ciphertext, p.AAD)
	if err != nil {
		_ = ClearSessionToken(ctx, storage)
		return nil, noteerrors.ErrDecrypt
	}

	mnem, err := vaultcrypto.Unpad(padded, vaultcrypto.PaddingBlock)
	if err != nil {
		_ = ClearSessionToken(ctx, storage)
		return nil, noteerrors.ErrInvalidPadding
	}

	return vault.Unlock(ctx, storage, string(mnem))
}

func currentVaultID(ctx context.Context, storage store.Storage) (string, error) {
	blob, err := storage.GetKV(ctx, store.SlotVaultMeta)
	if err == store.ErrNotFound {
		return "", noteerrors.ErrVaultNotFound
	}

	if err != nil {
		return "", errf("session: load vault meta: %w", err)
	}

	var m struct {
		VaultID string `json:"vault_id"`
	}

	if err := json.Unmarshal(blob, &m); err != nil {
		return "", errf("session: unmarshal vault meta: %w", err)
	}

	return m.VaultID, nil
}

// ClearSessionToken deletes both the session token and its key. Auto-unlock
// is impossible afterward even if an attacker recovers only one of the two.
func ClearSessionToken(ctx context.Context, storage store.Storage) error {
	if err := storage.DeleteKV(ctx, store.SlotSessionToken); err != nil {
		return errf("session: clear: delete token: %w", err)
	}

	if err := storage.DeleteKV(ctx, store.SlotSessionKey); err != nil {
		return errf("session: clear: delete key: %w", err)
	}

	return nil
}

// Logout locks v and, if clearSession is set, also clears any saved session
// token so the next launch requires the recovery phrase again. When
// clearSession is false the token is preserved so auto-unlock can resume the
// vault on next launch.
func Logout(ctx context.Context, storage store.Storage, v *vault.Vault, clearSession bool) error {
	v.Lock()

	if clearSession {
		return ClearSessionToken(ctx, storage)
	}

	return nil
}
