package session_test

import (
	"testing"
	"time"

	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/session"
	"github.com/dwirx/notevault/store"
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

func TestSaveAndAutoUnlock(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	v, _, err := vault.Create(ctx, storage, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	wantID := v.VaultID()

	if err := session.SaveSessionToken(ctx, storage, v, session.ThirtyDays); err != nil {
		t.Fatalf("save session token: %v", err)
	}

	v.Lock()

	got, err := session.AutoUnlock(ctx, storage)
	if err != nil {
		t.Fatalf("auto-unlock: %v", err)
	}

	if !got.IsUnlocked() || got.VaultID() != wantID {
		t.Errorf("auto-unlock did not restore expected vault: %+v", got)
	}
}

func TestAutoUnlock_NoSession(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	if _, err := session.AutoUnlock(ctx, storage); err != noteerrors.ErrNoSessionToken {
		t.Errorf("got err = %v, want ErrNoSessionToken", err)
	}
}

func TestAutoUnlock_Expired(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	v, _, err := vault.Create(ctx, storage, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := session.SaveSessionToken(ctx, storage, v, session.Duration(time.Millisecond)); err != nil {
		t.Fatalf("save session token: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := session.AutoUnlock(ctx, storage); err != noteerrors.ErrExpiredSession {
		t.Errorf("got err = %v, want ErrExpiredSession", err)
	}

	// session is cleared on expiry, a second attempt reports no session.
	if _, err := session.AutoUnlock(ctx, storage); err != noteerrors.ErrNoSessionToken {
		t.Errorf("got err = %v, want ErrNoSessionToken after expiry clears session", err)
	}
}

func TestClearSessionToken(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	v, _, err := vault.Create(ctx, storage, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := session.SaveSessionToken(ctx, storage, v, session.Indefinite); err != nil {
		t.Fatalf("save session token: %v", err)
	}

	if err := session.ClearSessionToken(ctx, storage); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if _, err := session.AutoUnlock(ctx, storage); err != noteerrors.ErrNoSessionToken {
		t.Errorf("got err = %v, want ErrNoSessionToken", err)
	}
}

func TestLogout_PreservesSessionUnlessCleared(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	v, _, err := vault.Create(ctx, storage, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := session.SaveSessionToken(ctx, storage, v, session.Indefinite); err != nil {
		t.Fatalf("save session token: %v", err)
	}

	if err := session.Logout(ctx, storage, v, false); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if v.IsUnlocked() {
		t.Errorf("expected vault locked after logout")
	}

	if _, err := session.AutoUnlock(ctx, storage); err != nil {
		t.Errorf("expected session to survive logout without clear, got %v", err)
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	storage := newTestStorage(t)
	ctx := t.Context()

	v, _, err := vault.Create(ctx, storage, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := session.SaveSessionToken(ctx, storage, v, session.Indefinite); err != nil {
		t.Fatalf("save session token: %v", err)
	}

	if err := session.Logout(ctx, storage, v, true); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := session.AutoUnlock(ctx, storage); err != noteerrors.ErrNoSessionToken {
		t.Errorf("got err = %v, want ErrNoSessionToken after logout clears session", err)
	}
}

func TestAutoUnlock_VaultMismatch(t *testing.T) {
	s1 := newTestStorage(t)
	s2 := newTestStorage(t)
	ctx := t.Context()

	v1, _, err := vault.Create(ctx, s1, "")
	if err != nil {
		t.Fatalf("create v1: %v", err)
	}

	if _, _, err := vault.Create(ctx, s2, ""); err != nil {
		t.Fatalf("create v2: %v", err)
	}

	if err := session.SaveSessionToken(ctx, s1, v1, session.Indefinite); err != nil {
		t.Fatalf("save session token: %v", err)
	}

	// Splice s1's token into s2's storage to simulate a token that belongs
	// to a different vault than the one currently persisted.
	tokenBlob, err := s1.GetKV(ctx, store.SlotSessionToken)
	if err != nil {
		t.Fatalf("get kv: %v", err)
	}

	keyBlob, err := s1.GetKV(ctx, store.SlotSessionKey)
	if err != nil {
		t.Fatalf("get kv: %v", err)
	}

	if err := s2.PutKV(ctx, store.SlotSessionToken, tokenBlob); err != nil {
		t.Fatalf("put kv: %v", err)
	}

	if err := s2.PutKV(ctx, store.SlotSessionKey, keyBlob); err != nil {
		t.Fatalf("put kv: %v", err)
	}

	if _, err := session.AutoUnlock(ctx, s2); err != noteerrors.ErrSessionMismatch {
		t.Errorf("got err = %v, want ErrSessionMismatch", err)
	}
}
