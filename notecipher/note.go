// Package notecipher implements per-note authenticated encryption: mapping
// a plaintext [Note] to its on-disk [EncryptedNoteV2] (or legacy
// [EncryptedNoteV1]) form and back, with every sensitive field bound to the
// note's (id, vault-id, version) via AAD and padded before sealing.
package notecipher

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/payload"
	"github.com/dwirx/notevault/vaultcrypto"
)

// Section is the UI bucket a note belongs to.
type Section string

const (
	SectionNotes      Section = "notes"
	SectionFavorites  Section = "favorites"
	SectionReminders  Section = "reminders"
	SectionMonographs Section = "monographs"
	SectionTrash      Section = "trash"
	SectionArchive    Section = "archive"
)

// Note is the plaintext, in-memory representation of a single vault note.
type Note struct {
	ID         string
	VaultID    string
	Title      string
	Body       string
	Preview    string
	Tags       []string
	NotebookID string // empty when unfiled
	CreatedAt  time.Time
	UpdatedAt  time.Time
	IsFavorite bool
	Section    Section
	Order      int
}

const coarseDateLayout = "2006-01-02"

// timestamps is the JSON shape sealed as the "timestamps" field so exact
// creation/update instants stay confidential; only a coarse date is kept in
// the clear on [EncryptedNoteV2].
type timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EncryptedNoteV2 is the on-disk v2 record: every sensitive field is a
// serialized [payload.V2] string, AAD-bound to (ID, VaultID, "2.0").
type EncryptedNoteV2 struct {
	ID         string
	VaultID    string
	Title      string // payload.V2, serialized
	BodyText   string // payload.V2, serialized
	Preview    string // payload.V2, serialized
	Tags       string // payload.V2, serialized (JSON array)
	NotebookID string // payload.V2, serialized; sealed empty plaintext if note has none
	Timestamps string // payload.V2, serialized
	CoarseCreatedAt string
	CoarseUpdatedAt string
	FormatVersion   string
	Algorithm       vaultcrypto.AEADAlgorithm
	IsFavorite      bool
	Section         Section
	Order           int
}

// EncryptedNoteV1 is the legacy on-disk record: only title, body, and
// preview are encrypted, with no AAD and no padding; everything else is
// plaintext metadata.
type EncryptedNoteV1 struct {
	ID         string
	Title      string // base64 nonce||ciphertext
	BodyText   string // base64 nonce||ciphertext
	Preview    string // base64 nonce||ciphertext
	Algorithm  vaultcrypto.AEADAlgorithm
	Tags       []string
	NotebookID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	IsFavorite bool
	Section    Section
	Order      int
}

// fieldResult carries one field's sealed payload or the error that aborted
// it back to the fan-in step.
type fieldResult struct {
	name string
	blob string
	err  error
}

func sealField(key []byte, alg vaultcrypto.AEADAlgorithm, aad, plaintext []byte) (string, error) {
	aead, err := vaultcrypto.NewAEAD(alg, key)
	if err != nil {
		return "", err
	}

	nonce, err := vaultcrypto.RandBytes(alg.NonceSize())
	if err != nil {
		return "", err
	}

	padded := vaultcrypto.Pad(plaintext, vaultcrypto.PaddingBlock)

	ct, err := aead.Seal(nonce, padded, aad)
	if err != nil {
		return "", err
	}

	return payload.SerializeV2(payload.V2{
		Algorithm:  alg,
		Nonce:      nonce,
		Ciphertext: ct,
		AAD:        aad,
	})
}

func openField(key []byte, blob string, expectNoteID, expectVaultID string) ([]byte, error) {
	if !payload.Detect([]byte(blob)) {
		return nil, noteerrors.ErrUnsupportedVersion
	}

	p, err := payload.ParseV2(blob)
	if err != nil {
		return nil, err
	}

	if !vaultcrypto.VerifyAAD(p.AAD, expectNoteID, expectVaultID, payload.Version2) {
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

// EncryptNoteV2 seals note's sensitive fields under key as XChaCha20-Poly1305
// v2 payloads, each bound by AAD to (note.ID, note.VaultID, "2.0").
func EncryptNoteV2(note Note, key []byte) (EncryptedNoteV2, error) {
	alg := vaultcrypto.XChaCha20Poly1305Alg
	aad := vaultcrypto.BuildAAD(note.ID, note.VaultID, payload.Version2)

	tagsJSON, err := json.Marshal(note.Tags)
	if err != nil {
		return EncryptedNoteV2{}, fmt.Errorf("notecipher: marshal tags: %w", err)
	}

	tsJSON, err := json.Marshal(timestamps{CreatedAt: note.CreatedAt, UpdatedAt: note.UpdatedAt})
	if err != nil {
		return EncryptedNoteV2{}, fmt.Errorf("notecipher: marshal timestamps: %w", err)
	}

	fields := map[string][]byte{
		"title":      []byte(note.Title),
		"body":       []byte(note.Body),
		"preview":    []byte(note.Preview),
		"tags":       tagsJSON,
		"notebookID": []byte(note.NotebookID),
		"timestamps": tsJSON,
	}

	results := make(chan fieldResult, len(fields))

	var wg sync.WaitGroup

	for name, pt := range fields {
		wg.Add(1)

		go func(name string, pt []byte) {
			defer wg.Done()

			blob, err := sealField(key, alg, aad, pt)
			results <- fieldResult{name: name, blob: blob, err: err}
		}(name, pt)
	}

	wg.Wait()
	close(results)

	sealed := make(map[string]string, len(fields))

	for r := range results {
		if r.err != nil {
			return EncryptedNoteV2{}, fmt.Errorf("notecipher: seal %s: %w", r.name, r.err)
		}

		sealed[r.name] = r.blob
	}

	return EncryptedNoteV2{
		ID:              note.ID,
		VaultID:         note.VaultID,
		Title:           sealed["title"],
		BodyText:        sealed["body"],
		Preview:         sealed["preview"],
		Tags:            sealed["tags"],
		NotebookID:      sealed["notebookID"],
		Timestamps:      sealed["timestamps"],
		CoarseCreatedAt: note.CreatedAt.Format(coarseDateLayout),
		CoarseUpdatedAt: note.UpdatedAt.Format(coarseDateLayout),
		FormatVersion:   payload.Version2,
		Algorithm:       alg,
		IsFavorite:      note.IsFavorite,
		Section:         note.Section,
		Order:           note.Order,
	}, nil
}

// DecryptNoteV2 is the inverse of [EncryptNoteV2]. Any field that fails
// authenticity, AAD binding, or padding aborts the whole note: no partial
// plaintext is ever returned.
func DecryptNoteV2(enc EncryptedNoteV2, key []byte) (Note, error) {
	title, err := openField(key, enc.Title, enc.ID, enc.VaultID)
	if err != nil {
		return Note{}, fmt.Errorf("notecipher: decrypt title: %w", err)
	}

	body, err := openField(key, enc.BodyText, enc.ID, enc.VaultID)
	if err != nil {
		return Note{}, fmt.Errorf("notecipher: decrypt body: %w", err)
	}

	preview, err := openField(key, enc.Preview, enc.ID, enc.VaultID)
	if err != nil {
		return Note{}, fmt.Errorf("notecipher: decrypt preview: %w", err)
	}

	tagsRaw, err := openField(key, enc.Tags, enc.ID, enc.VaultID)
	if err != nil {
		return Note{}, fmt.Errorf("notecipher: decrypt tags: %w", err)
	}

	notebookIDRaw, err := openField(key, enc.NotebookID, enc.ID, enc.VaultID)
	if err != nil {
		return Note{}, fmt.Errorf("notecipher: decrypt notebook id: %w", err)
	}

	tsRaw, err := openField(key, enc.Timestamps, enc.ID, enc.VaultID)
	if err != nil {
		return Note{}, fmt.Errorf("notecipher: decrypt timestamps: %w", err)
	}

	var tags []string
	if err := json.Unmarshal(tagsRaw, &tags); err != nil {
		return Note{}, fmt.Errorf("notecipher: unmarshal tags: %w", err)
	}

	var ts timestamps
	if err := json.Unmarshal(tsRaw, &ts); err != nil {
		return Note{}, fmt.Errorf("notecipher: unmarshal timestamps: %w", err)
	}

	return Note{
		ID:         enc.ID,
		VaultID:    enc.VaultID,
		Title:      string(title),
		Body:       string(body),
		Preview:    string(preview),
		Tags:       tags,
		NotebookID: string(notebookIDRaw),
		CreatedAt:  ts.CreatedAt,
		UpdatedAt:  ts.UpdatedAt,
		IsFavorite: enc.IsFavorite,
		Section:    enc.Section,
		Order:      enc.Order,
	}, nil
}
