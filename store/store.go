// Package store defines the external storage collaborator interface the
// vault cryptography subsystem is built against. It never decrypts or
// interprets record contents; every value it moves is already a sealed
// payload produced by [github.com/dwirx/notevault/notecipher] or a small
// opaque blob produced by [github.com/dwirx/notevault/vault],
// [github.com/dwirx/notevault/session], or [github.com/dwirx/notevault/backup].
package store

import "context"

// Kind identifies the class of record a [Storage] call addresses.
type Kind string

const (
	KindNote     Kind = "note"
	KindNotebook Kind = "notebook"
	KindTag      Kind = "tag"
	KindSettings Kind = "settings"
)

// Slot identifies a single-value key-value item, scoped globally rather
// than per-vault-id (the vault has not necessarily been identified yet when
// vault-meta is read).
type Slot string

const (
	SlotVaultMeta      Slot = "vault-meta"
	SlotSessionToken   Slot = "session-token"
	SlotSessionKey     Slot = "session-key"
	SlotLastBackupDate Slot = "last-backup-date"
)

// Storage is the external collaborator every vault component is built
// against. A concrete implementation (see package storesqlite) owns
// persistence; this package only describes the contract.
type Storage interface {
	// Put upserts a record of the given kind, scoped to vaultID, under id.
	Put(ctx context.Context, kind Kind, vaultID, id string, record []byte) error
	// Get retrieves a previously put record. Implementations return
	// [ErrNotFound] when absent.
	Get(ctx context.Context, kind Kind, vaultID, id string) ([]byte, error)
	// Delete removes a record if present; deleting an absent record is not
	// an error.
	Delete(ctx context.Context, kind Kind, vaultID, id string) error
	// Scan returns every record of kind scoped to vaultID.
	Scan(ctx context.Context, kind Kind, vaultID string) (map[string][]byte, error)

	// PutKV upserts a single opaque value in slot.
	PutKV(ctx context.Context, slot Slot, value []byte) error
	// GetKV retrieves the value in slot. Implementations return
	// [ErrNotFound] when absent.
	GetKV(ctx context.Context, slot Slot) ([]byte, error)
	// DeleteKV removes the value in slot if present.
	DeleteKV(ctx context.Context, slot Slot) error
}
