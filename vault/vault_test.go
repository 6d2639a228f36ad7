package vault_test

import (
	"testing"

	"github.com/dwirx/notevault/mnemonic"
	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/storesqlite"
	"github.com/dwirx/notevault/vault"
)

func newTestStorage(t *testing.T) *storesqlite.Store {
	t.Helper()

	s, err := storesqlite.New(":memory:")
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestCreate_ThenUnlock(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	v, phrase, err := vault.Create(ctx, storage, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if !v.IsUnlocked() {
		t.Fatalf("expected vault to be unlocked after create")
	}

	wantID := mnemonic.VaultID(phrase)
	if v.VaultID() != wantID {
		t.Errorf("got vault id %q, want %q", v.VaultID(), wantID)
	}

	v.Lock()

	if v.IsUnlocked() {
		t.Fatalf("expected vault to be locked")
	}

	if _, err := v.Key(); err != noteerrors.ErrVaultLocked {
		t.Errorf("got err = %v, want ErrVaultLocked", err)
	}

	v2, err := vault.Unlock(ctx, storage, phrase)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}

	if !v2.IsUnlocked() || v2.VaultID() != wantID {
		t.Errorf("unlock did not restore expected state: %+v", v2)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	if _, _, err := vault.Create(ctx, storage, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := vault.Create(ctx, storage, ""); err != noteerrors.ErrVaultExists {
		t.Errorf("got err = %v, want ErrVaultExists", err)
	}
}

func TestUnlock_WrongPhrase(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	_, phrase, err := vault.Create(ctx, storage, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	other, err := mnemonic.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if other == phrase {
		t.Skip("collided with the original phrase, vanishingly unlikely")
	}

	if _, err := vault.Unlock(ctx, storage, other); err != noteerrors.ErrAuthFailed {
		t.Errorf("got err = %v, want ErrAuthFailed", err)
	}
}

func TestUnlock_NoVault(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	phrase, err := mnemonic.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := vault.Unlock(ctx, storage, phrase); err != noteerrors.ErrVaultNotFound {
		t.Errorf("got err = %v, want ErrVaultNotFound", err)
	}
}

func TestDestroy_PurgesState(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	v, phrase, err := vault.Create(ctx, storage, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := v.Destroy(ctx); err != nil {
		t.Fatalf("destroy: %v", err)
	}

	if exists, err := vault.Exists(ctx, storage); err != nil || exists {
		t.Errorf("expected vault metadata to be purged, exists=%v err=%v", exists, err)
	}

	if _, err := vault.Unlock(ctx, storage, phrase); err != noteerrors.ErrVaultNotFound {
		t.Errorf("got err = %v, want ErrVaultNotFound after destroy", err)
	}
}

func TestKeyIsolation_DifferentVaultsDifferentKeys(t *testing.T) {
	s1 := newTestStorage(t)
	s2 := newTestStorage(t)
	ctx := t.Context()

	v1, _, err := vault.Create(ctx, s1, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	v2, _, err := vault.Create(ctx, s2, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	k1, _ := v1.Key()
	k2, _ := v2.Key()

	if string(k1) == string(k2) {
		t.Errorf("expected distinct vaults to derive distinct keys")
	}
}
