package notecipher_test

import (
	"testing"
	"time"

	"github.com/dwirx/notevault/notecipher"
	"github.com/dwirx/notevault/vaultcrypto"
)

func testNote() notecipher.Note {
	return notecipher.Note{
		ID:         "note-1",
		VaultID:    "vault-abc123",
		Title:      "Groceries",
		Body:       "milk, eggs, bread",
		Preview:    "milk, eggs...",
		Tags:       []string{"home", "errands"},
		NotebookID: "nb-1",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 3, 6, 7, 8, 0, time.UTC),
		IsFavorite: true,
		Section:    notecipher.SectionNotes,
		Order:      3,
	}
}

func TestEncryptDecryptNoteV2_RoundTrip(t *testing.T) {
	key, _ := vaultcrypto.RandBytes(32)
	note := testNote()

	enc, err := notecipher.EncryptNoteV2(note, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if enc.CoarseCreatedAt != "2026-01-02" || enc.CoarseUpdatedAt != "2026-01-03" {
		t.Errorf("coarse timestamps wrong: %+v", enc)
	}

	got, err := notecipher.DecryptNoteV2(enc, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	if got.Title != note.Title || got.Body != note.Body || got.Preview != note.Preview {
		t.Errorf("field mismatch: got %+v", got)
	}

	if len(got.Tags) != 2 || got.Tags[0] != "home" {
		t.Errorf("tags mismatch: got %+v", got.Tags)
	}

	if got.NotebookID != note.NotebookID {
		t.Errorf("notebook id mismatch: got %q want %q", got.NotebookID, note.NotebookID)
	}

	if !got.CreatedAt.Equal(note.CreatedAt) || !got.UpdatedAt.Equal(note.UpdatedAt) {
		t.Errorf("timestamp mismatch: got %+v", got)
	}
}

func TestDecryptNoteV2_WrongKeyFails(t *testing.T) {
	key1, _ := vaultcrypto.RandBytes(32)
	key2, _ := vaultcrypto.RandBytes(32)

	enc, err := notecipher.EncryptNoteV2(testNote(), key1)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if _, err := notecipher.DecryptNoteV2(enc, key2); err == nil {
		t.Errorf("expected error decrypting under the wrong key")
	}
}

func TestDecryptNoteV2_RelocationDetected(t *testing.T) {
	key, _ := vaultcrypto.RandBytes(32)

	enc, err := notecipher.EncryptNoteV2(testNote(), key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	enc.ID = "note-2" // simulate the record being relocated to a different id

	if _, err := notecipher.DecryptNoteV2(enc, key); err == nil {
		t.Errorf("expected AAD mismatch error after relocation")
	}
}

func TestEncryptNoteV2_EmptyFieldsRoundTrip(t *testing.T) {
	key, _ := vaultcrypto.RandBytes(32)

	note := notecipher.Note{
		ID:      "note-empty",
		VaultID: "vault-abc123",
		Section: notecipher.SectionNotes,
	}

	enc, err := notecipher.EncryptNoteV2(note, key)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	got, err := notecipher.DecryptNoteV2(enc, key)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	if got.Title != "" || got.Body != "" || len(got.Tags) != 0 || got.NotebookID != "" {
		t.Errorf("expected empty fields to round-trip losslessly, got %+v", got)
	}
}

func TestEncryptDecryptNoteV1_RoundTrip(t *testing.T) {
	key, _ := vaultcrypto.RandBytes(32)
	note := testNote()

	enc, err := notecipher.EncryptNoteV1(note, key, vaultcrypto.AES256GCMAlg)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	got, err := notecipher.DecryptNoteV1(enc, key, note.VaultID)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	if got.Title != note.Title || got.Body != note.Body || got.Preview != note.Preview {
		t.Errorf("field mismatch: got %+v", got)
	}
}
