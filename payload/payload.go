// Package payload implements the self-describing v2 ciphertext envelope and
// detection/parsing of the opaque legacy v1 blob format.
package payload

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dwirx/notevault/noteerrors"
	"github.com/dwirx/notevault/vaultcrypto"
)

// Version2 is the literal version string stamped on every v2 payload.
const Version2 = "2.0"

// kdfDescriptor is the wire form of [vaultcrypto.KDFParams].
//
//nolint:tagliatelle
type kdfDescriptor struct {
	Alg         vaultcrypto.Algorithm `json:"alg"`
	SaltB64     string                `json:"salt_b64"`
	MemoryKiB   uint32                `json:"mem,omitempty"`
	Iterations  uint32                `json:"iter"`
	Parallelism uint8                 `json:"par,omitempty"`
}

// wireV2 is the canonical on-disk/on-wire JSON representation of a V2.
//
//nolint:tagliatelle
type wireV2 struct {
	Version string        `json:"v"`
	Alg     string        `json:"alg"`
	KDF     kdfDescriptor `json:"kdf"`
	NonceB6 string        `json:"nonce_b64"`
	CTB64   string        `json:"ct_b64"`
	AADB64  string        `json:"aad_b64,omitempty"`
}

// V2 is a parsed self-describing v2 payload.
type V2 struct {
	Algorithm  vaultcrypto.AEADAlgorithm
	KDF        vaultcrypto.KDFParams
	Nonce      []byte
	Ciphertext []byte
	AAD        []byte // optional; empty when not bound
}

// SerializeV2 renders p as its canonical textual form.
func SerializeV2(p V2) (string, error) {
	w := wireV2{
		Version: Version2,
		Alg:     string(p.Algorithm),
		KDF: kdfDescriptor{
			Alg:         p.KDF.Algorithm,
			SaltB64:     base64.RawStdEncoding.EncodeToString(p.KDF.Salt),
			MemoryKiB:   p.KDF.MemoryKiB,
			Iterations:  p.KDF.Iterations,
			Parallelism: p.KDF.Parallelism,
		},
		NonceB6: base64.RawStdEncoding.EncodeToString(p.Nonce),
		CTB64:   base64.RawStdEncoding.EncodeToString(p.Ciphertext),
	}

	if len(p.AAD) > 0 {
		w.AADB64 = base64.RawStdEncoding.EncodeToString(p.AAD)
	}

	out, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("payload: serialize v2: %w", err)
	}

	return string(out), nil
}

// ParseV2 reconstructs a [V2] from its canonical textual form. Callers
// should first confirm the blob is v2 via [Detect].
func ParseV2(blob string) (V2, error) {
	var w wireV2
	if err := json.Unmarshal([]byte(blob), &w); err != nil {
		return V2{}, fmt.Errorf("payload: parse v2: %w", err)
	}

	if w.Version != Version2 {
		return V2{}, noteerrors.ErrUnsupportedVersion
	}

	salt, err := base64.RawStdEncoding.DecodeString(w.KDF.SaltB64)
	if err != nil {
		return V2{}, fmt.Errorf("payload: parse v2: kdf salt: %w", err)
	}

	nonce, err := base64.RawStdEncoding.DecodeString(w.NonceB6)
	if err != nil {
		return V2{}, fmt.Errorf("payload: parse v2: nonce: %w", err)
	}

	ct, err := base64.RawStdEncoding.DecodeString(w.CTB64)
	if err != nil {
		return V2{}, fmt.Errorf("payload: parse v2: ciphertext: %w", err)
	}

	var aad []byte
	if len(w.AADB64) > 0 {
		aad, err = base64.RawStdEncoding.DecodeString(w.AADB64)
		if err != nil {
			return V2{}, fmt.Errorf("payload: parse v2: aad: %w", err)
		}
	}

	return V2{
		Algorithm: vaultcrypto.AEADAlgorithm(w.Alg),
		KDF: vaultcrypto.KDFParams{
			Algorithm:   w.KDF.Alg,
			Salt:        salt,
			MemoryKiB:   w.KDF.MemoryKiB,
			Iterations:  w.KDF.Iterations,
			Parallelism: w.KDF.Parallelism,
		},
		Nonce:      nonce,
		Ciphertext: ct,
		AAD:        aad,
	}, nil
}

// Detect reports whether blob is a self-describing v2 payload (true) or
// should be treated as an opaque v1 blob (false).
func Detect(blob []byte) bool {
	var probe struct {
		Version string `json:"v"`
	}

	if err := json.Unmarshal(blob, &probe); err != nil {
		return false
	}

	return probe.Version == Version2
}

// V1 is a parsed legacy opaque payload: a bare nonce-then-ciphertext blob
// with no AAD and no self-description.
type V1 struct {
	Algorithm  vaultcrypto.AEADAlgorithm
	Nonce      []byte
	Ciphertext []byte
}

// SerializeV1 base64-encodes nonce‖ciphertext with no other framing.
func SerializeV1(p V1) string {
	buf := make([]byte, 0, len(p.Nonce)+len(p.Ciphertext))
	buf = append(buf, p.Nonce...)
	buf = append(buf, p.Ciphertext...)

	return base64.StdEncoding.EncodeToString(buf)
}

// ParseV1 splits a base64-encoded v1 blob into its nonce and ciphertext
// parts, using alg to determine the nonce length.
func ParseV1(blob string, alg vaultcrypto.AEADAlgorithm) (V1, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return V1{}, fmt.Errorf("payload: parse v1: %w", err)
	}

	n := alg.NonceSize()
	if len(raw) < n {
		return V1{}, fmt.Errorf("payload: parse v1: blob shorter than nonce size %d", n)
	}

	return V1{
		Algorithm:  alg,
		Nonce:      raw[:n],
		Ciphertext: raw[n:],
	}, nil
}
