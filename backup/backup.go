// Package backup implements encrypted export/import of an entire vault's
// domain data: notes, notebooks, tags, and settings, sealed as a single v2
// payload wrapped in a self-describing envelope.
package backup

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dwirx/notevault/domain"
	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/notecipher"
	"github.com/dwirx/notevault/payload"
	"github.com/dwirx/notevault/vaultcrypto"
)

func errf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// DomainData is the full exportable contents of one vault, already in their
// encrypted-at-rest form; the backup codec adds one more sealing layer over
// their serialized form rather than re-encrypting each field individually.
type DomainData struct {
	Notes     []notecipher.EncryptedNoteV2
	Notebooks []domain.EncryptedNotebook
	Tags      []domain.EncryptedTag
	Settings  []domain.EncryptedSetting
}

const envelopeVersion = "2.0"

// Envelope is the on-disk backup file shape. ExportDate is serialized as
// RFC 3339 text.
//
//nolint:tagliatelle
type Envelope struct {
	Version       string               `json:"version"`
	VaultID       string               `json:"vaultId"`
	Algorithm     vaultcrypto.AEADAlgorithm `json:"algorithm"`
	KDF           kdfDescriptor        `json:"kdfParams"`
	ExportDate    time.Time            `json:"exportDate"`
	EncryptedData string               `json:"encryptedData"` // serialized payload.V2
}

//nolint:tagliatelle
type kdfDescriptor struct {
	Alg         vaultcrypto.Algorithm `json:"alg"`
	SaltB64     string                `json:"salt"`
	MemoryKiB   uint32                `json:"mem,omitempty"`
	Iterations  uint32                `json:"iter"`
	Parallelism uint8                 `json:"par,omitempty"`
}

// now is a seam so tests can pin the export timestamp; production callers
// get the real wall clock.
var now = time.Now

// CreateBackup serializes data to canonical JSON, seals it as a single v2
// payload under key, and wraps the result in an [Envelope] stamped with
// kdfParams for informational display (the params are not used to re-derive
// key during restore; the caller must already hold it unlocked).
func CreateBackup(data DomainData, key []byte, vaultID string, kdfParams vaultcrypto.KDFParams) (Envelope, error) {
	plain, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, errf("backup: marshal domain data: %w", err)
	}

	alg := vaultcrypto.XChaCha20Poly1305Alg

	aead, err := vaultcrypto.NewAEAD(alg, key)
	if err != nil {
		return Envelope{}, errf("backup: %w", err)
	}

	nonce, err := vaultcrypto.RandBytes(alg.NonceSize())
	if err != nil {
		return Envelope{}, errf("backup: nonce: %w", err)
	}

	aad := vaultcrypto.BuildAAD(vaultID, "backup", envelopeVersion)

	ct, err := aead.Seal(nonce, vaultcrypto.Pad(plain, vaultcrypto.PaddingBlock), aad)
	if err != nil {
		return Envelope{}, errf("backup: seal: %w", err)
	}

	blob, err := payload.SerializeV2(payload.V2{
		Algorithm:  alg,
		Nonce:      nonce,
		Ciphertext: ct,
		AAD:        aad,
	})
	if err != nil {
		return Envelope{}, errf("backup: serialize payload: %w", err)
	}

	return Envelope{
		Version:   envelopeVersion,
		VaultID:   vaultID,
		Algorithm: alg,
		KDF: kdfDescriptor{
			Alg:         kdfParams.Algorithm,
			SaltB64:     base64.RawStdEncoding.EncodeToString(kdfParams.Salt),
			MemoryKiB:   kdfParams.MemoryKiB,
			Iterations:  kdfParams.Iterations,
			Parallelism: kdfParams.Parallelism,
		},
		ExportDate:    now(),
		EncryptedData: blob,
	}, nil
}

// ParseBackupEnvelope unmarshals blob into an [Envelope], rejecting
// unsupported versions or envelopes missing required fields.
func ParseBackupEnvelope(blob []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(blob, &e); err != nil {
		return Envelope{}, errf("backup: parse envelope: %w", err)
	}

	if e.Version != envelopeVersion {
		return Envelope{}, noteerrors.ErrUnsupportedVersion
	}

	if e.VaultID == "" || e.EncryptedData == "" {
		return Envelope{}, errf("backup: parse envelope: missing required field")
	}

	return e, nil
}

func decrypt(e Envelope, key []byte) (DomainData, error) {
	p, err := payload.ParseV2(e.EncryptedData)
	if err != nil {
		return DomainData{}, errf("backup: parse payload: %w", err)
	}

	if !vaultcrypto.VerifyAAD(p.AAD, e.VaultID, "backup", envelopeVersion) {
		return DomainData{}, noteerrors.ErrAADMismatch
	}

	aead, err := vaultcrypto.NewAEAD(p.Algorithm, key)
	if err != nil {
		return DomainData{}, err
	}

	padded, err := aead.Open(p.Nonce, p.Ciphertext, p.AAD)
	if err != nil {
		return DomainData{}, noteerrors.ErrDecrypt
	}

	plain, err := vaultcrypto.Unpad(padded, vaultcrypto.PaddingBlock)
	if err != nil {
		return DomainData{}, noteerrors.ErrInvalidPadding
	}

	var data DomainData
	if err := json.Unmarshal(plain, &data); err != nil {
		return DomainData{}, errf("backup: unmarshal domain data: %w", err)
	}

	return data, nil
}

// Summary is the aggregate, non-sensitive view [PreviewBackup] returns.
type Summary struct {
	NoteCount     int
	NotebookCount int
	TagCount      int
	ExportDate    time.Time
	Algorithm     vaultcrypto.AEADAlgorithm
	VaultID       string
}

// PreviewBackup decrypts e under key and returns only aggregate counts,
// never plaintext content. Returns nil, not an error, when key cannot open
// the envelope — the caller uses that to report "wrong vault key" without
// distinguishing corruption from a bad key.
func PreviewBackup(e Envelope, key []byte) *Summary {
	data, err := decrypt(e, key)
	if err != nil {
		return nil
	}

	return &Summary{
		NoteCount:     len(data.Notes),
		NotebookCount: len(data.Notebooks),
		TagCount:      len(data.Tags),
		ExportDate:    e.ExportDate,
		Algorithm:     e.Algorithm,
		VaultID:       e.VaultID,
	}
}

// RestoreBackup decrypts e under key and returns the full domain-data
// record. Callers repopulate storage themselves and re-scope every record
// to the current vault-id, which may differ from e.VaultID.
func RestoreBackup(e Envelope, key []byte) (DomainData, error) {
	return decrypt(e, key)
}
