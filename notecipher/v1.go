package notecipher

import (
	"fmt"

	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/payload"
	"github.com/dwirx/notevault/vaultcrypto"
)

// sealFieldV1 seals plaintext with no AAD and no padding, matching the
// legacy wire format.
func sealFieldV1(key []byte, alg vaultcrypto.AEADAlgorithm, plaintext []byte) (string, error) {
	aead, err := vaultcrypto.NewAEAD(alg, key)
	if err != nil {
		return "", err
	}

	nonce, err := vaultcrypto.RandBytes(alg.NonceSize())
	if err != nil {
		return "", err
	}

	ct, err := aead.Seal(nonce, plaintext, nil)
	if err != nil {
		return "", err
	}

	return payload.SerializeV1(payload.V1{Algorithm: alg, Nonce: nonce, Ciphertext: ct}), nil
}

func openFieldV1(key []byte, blob string, alg vaultcrypto.AEADAlgorithm) ([]byte, error) {
	p, err := payload.ParseV1(blob, alg)
	if err != nil {
		return nil, err
	}

	aead, err := vaultcrypto.NewAEAD(alg, key)
	if err != nil {
		return nil, err
	}

	pt, err := aead.Open(p.Nonce, p.Ciphertext, nil)
	if err != nil {
		return nil, noteerrors.ErrDecrypt
	}

	return pt, nil
}

// EncryptNoteV1 seals only title, body, and preview under the legacy
// algorithm; all other metadata is carried through in the clear. Kept for
// producing test fixtures and for vaults explicitly downgraded to legacy
// mode; new writes always use [EncryptNoteV2].
func EncryptNoteV1(note Note, key []byte, alg vaultcrypto.AEADAlgorithm) (EncryptedNoteV1, error) {
	title, err := sealFieldV1(key, alg, []byte(note.Title))
	if err != nil {
		return EncryptedNoteV1{}, fmt.Errorf("notecipher: v1 seal title: %w", err)
	}

	body, err := sealFieldV1(key, alg, []byte(note.Body))
	if err != nil {
		return EncryptedNoteV1{}, fmt.Errorf("notecipher: v1 seal body: %w", err)
	}

	preview, err := sealFieldV1(key, alg, []byte(note.Preview))
	if err != nil {
		return EncryptedNoteV1{}, fmt.Errorf("notecipher: v1 seal preview: %w", err)
	}

	return EncryptedNoteV1{
		ID:         note.ID,
		Title:      title,
		BodyText:   body,
		Preview:    preview,
		Algorithm:  alg,
		Tags:       note.Tags,
		NotebookID: note.NotebookID,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
		IsFavorite: note.IsFavorite,
		Section:    note.Section,
		Order:      note.Order,
	}, nil
}

// DecryptNoteV1 is the inverse of [EncryptNoteV1].
func DecryptNoteV1(enc EncryptedNoteV1, key []byte, vaultID string) (Note, error) {
	title, err := openFieldV1(key, enc.Title, enc.Algorithm)
	if err != nil {
		return Note{}, fmt.Errorf("notecipher: v1 decrypt title: %w", err)
	}

	body, err := openFieldV1(key, enc.BodyText, enc.Algorithm)
	if err != nil {
		return Note{}, fmt.Errorf("notecipher: v1 decrypt body: %w", err)
	}

	preview, err := openFieldV1(key, enc.Preview, enc.Algorithm)
	if err != nil {
		return Note{}, fmt.Errorf("notecipher: v1 decrypt preview: %w", err)
	}

	return Note{
		ID:         enc.ID,
		VaultID:    vaultID,
		Title:      string(title),
		Body:       string(body),
		Preview:    string(preview),
		Tags:       enc.Tags,
		NotebookID: enc.NotebookID,
		CreatedAt:  enc.CreatedAt,
		UpdatedAt:  enc.UpdatedAt,
		IsFavorite: enc.IsFavorite,
		Section:    enc.Section,
		Order:      enc.Order,
	}, nil
}
