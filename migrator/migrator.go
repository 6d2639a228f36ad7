// Package migrator upgrades legacy v1 encrypted notes to the self-describing
// v2 payload format, tolerating individual failures across a batch.
package migrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dwirx/notevault/notecipher"
	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/store"
)

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// FailedNote records why a single note's migration did not complete.
type FailedNote struct {
	NoteID string
	Reason error
}

// Result summarizes a batch migration run. A single note's failure never
// aborts the rest of the batch.
type Result struct {
	Migrated int
	Failed   int
	Errors   []FailedNote
}

// MigrateNoteV1ToV2 decrypts a v1-encrypted note under key, fills in
// defaults for fields v1 never carried (empty tags, section "notes"), and
// re-encrypts it as a v2 record scoped to vaultID under the same key — no
// key rotation is implied by a format migration.
func MigrateNoteV1ToV2(enc notecipher.EncryptedNoteV1, key []byte, vaultID string) (notecipher.EncryptedNoteV2, error) {
	note, err := notecipher.DecryptNoteV1(enc, key, vaultID)
	if err != nil {
		return notecipher.EncryptedNoteV2{}, errf("migrator: decrypt v1 note %s: %w", enc.ID, err)
	}

	if note.Tags == nil {
		note.Tags = []string{}
	}

	if note.Section == "" {
		note.Section = notecipher.SectionNotes
	}

	out, err := notecipher.EncryptNoteV2(note, key)
	if err != nil {
		return notecipher.EncryptedNoteV2{}, errf("migrator: encrypt v2 note %s: %w", enc.ID, err)
	}

	return out, nil
}

// record is the on-disk envelope every note, v1 or v2, is stored under: a
// format tag alongside the version-specific payload, so a scan can tell
// which decoder to use without touching the sealed fields.
//
//nolint:tagliatelle
type record struct {
	Format string          `json:"format"`
	Note   json.RawMessage `json:"note"`
}

const (
	formatV1 = "1.0"
	formatV2 = "2.0"
)

// EncodeV1 renders a v1 note record to its on-disk form.
func EncodeV1(enc notecipher.EncryptedNoteV1) ([]byte, error) {
	return encodeRecord(formatV1, enc)
}

// EncodeV2 renders a v2 note record to its on-disk form.
func EncodeV2(enc notecipher.EncryptedNoteV2) ([]byte, error) {
	return encodeRecord(formatV2, enc)
}

func encodeRecord(format string, note any) ([]byte, error) {
	noteJSON, err := json.Marshal(note)
	if err != nil {
		return nil, errf("migrator: marshal note: %w", err)
	}

	return json.Marshal(record{Format: format, Note: noteJSON})
}

// decodeV1 reports whether blob is a v1 record and, if so, decodes it.
func decodeV1(blob []byte, out *notecipher.EncryptedNoteV1) (bool, error) {
	var r record
	if err := json.Unmarshal(blob, &r); err != nil {
		return false, errf("migrator: unmarshal record envelope: %w", err)
	}

	if r.Format != formatV1 {
		return false, nil
	}

	if err := json.Unmarshal(r.Note, out); err != nil {
		return true, errf("migrator: unmarshal v1 note: %w", err)
	}

	return true, nil
}

// DecodeV2 decodes blob as a v2 note record. It returns
// [noteerrors.ErrUnsupportedVersion] wrapped in context if blob is still a
// v1 record — callers that need every note in v2 form (e.g. backup) should
// run [MigrateAll] first.
func DecodeV2(blob []byte) (notecipher.EncryptedNoteV2, error) {
	var r record
	if err := json.Unmarshal(blob, &r); err != nil {
		return notecipher.EncryptedNoteV2{}, errf("migrator: unmarshal record envelope: %w", err)
	}

	if r.Format != formatV2 {
		return notecipher.EncryptedNoteV2{}, errf("migrator: record is not v2 (format %q): %w", r.Format, noteerrors.ErrUnsupportedVersion)
	}

	var enc notecipher.EncryptedNoteV2
	if err := json.Unmarshal(r.Note, &enc); err != nil {
		return notecipher.EncryptedNoteV2{}, errf("migrator: unmarshal v2 note: %w", err)
	}

	return enc, nil
}

// MigrateAll upgrades every v1 note in storage scoped to vaultID. A
// migrated note's v2 record is written over its v1 record under the same id
// in a single upsert, so each note is stored in either its v1 or its v2 form.
func MigrateAll(ctx context.Context, storage store.Storage, vaultID string, key []byte) (Result, error) {
	raw, err := storage.Scan(ctx, store.KindNote, vaultID)
	if err != nil {
		return Result{}, errf("migrator: scan notes: %w", err)
	}

	var res Result

	for id, blob := range raw {
		var enc notecipher.EncryptedNoteV1

		isV1, err := decodeV1(blob, &enc)
		if err != nil || !isV1 {
			// Not a legacy record (already v2 or malformed); skip.
			continue
		}

		migrated, err := MigrateNoteV1ToV2(enc, key, vaultID)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, FailedNote{NoteID: id, Reason: err})

			continue
		}

		v2Blob, err := EncodeV2(migrated)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, FailedNote{NoteID: id, Reason: err})

			continue
		}

		if err := storage.Put(ctx, store.KindNote, vaultID, id, v2Blob); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, FailedNote{NoteID: id, Reason: errf("migrator: persist v2 note %s: %w", id, err)})

			continue
		}

		res.Migrated++
	}

	return res, nil
}
