package payload_test

import (
	"bytes"
	"testing"

	"github.com/dwirx/notevault/payload"
	"github.com/dwirx/notevault/vaultcrypto"
)

func TestV2_RoundTrip(t *testing.T) {
	p := payload.V2{
		Algorithm: vaultcrypto.XChaCha20Poly1305Alg,
		KDF: vaultcrypto.KDFParams{
			Algorithm:   vaultcrypto.Argon2id,
			Salt:        []byte("0123456789abcdef"),
			MemoryKiB:   65536,
			Iterations:  3,
			Parallelism: 4,
		},
		Nonce:      []byte("0123456789abcdefghijklmn"),
		Ciphertext: []byte("ciphertext-bytes-here"),
		AAD:        []byte("note-1\x00vault-abc\x002.0"),
	}

	blob, err := payload.SerializeV2(p)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	if !payload.Detect([]byte(blob)) {
		t.Fatalf("Detect returned false for a v2 blob")
	}

	got, err := payload.ParseV2(blob)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if got.Algorithm != p.Algorithm {
		t.Errorf("algorithm mismatch: got %q want %q", got.Algorithm, p.Algorithm)
	}

	if !bytes.Equal(got.Nonce, p.Nonce) || !bytes.Equal(got.Ciphertext, p.Ciphertext) || !bytes.Equal(got.AAD, p.AAD) {
		t.Errorf("round-trip mismatch: got %+v", got)
	}

	if !bytes.Equal(got.KDF.Salt, p.KDF.Salt) {
		t.Errorf("kdf salt mismatch")
	}

	if got.KDF.Algorithm != p.KDF.Algorithm || got.KDF.MemoryKiB != p.KDF.MemoryKiB ||
		got.KDF.Iterations != p.KDF.Iterations || got.KDF.Parallelism != p.KDF.Parallelism {
		t.Errorf("kdf params mismatch: got %+v, want %+v", got.KDF, p.KDF)
	}
}

func TestDetect_RejectsV1Blob(t *testing.T) {
	v1 := payload.SerializeV1(payload.V1{
		Algorithm:  vaultcrypto.AES256GCMAlg,
		Nonce:      []byte("123456789012"),
		Ciphertext: []byte("abc"),
	})

	if payload.Detect([]byte(v1)) {
		t.Errorf("Detect should not classify an opaque v1 blob as v2")
	}
}

func TestV1_RoundTrip(t *testing.T) {
	p := payload.V1{
		Algorithm:  vaultcrypto.AES256GCMAlg,
		Nonce:      []byte("123456789012"),
		Ciphertext: []byte("ciphertext"),
	}

	blob := payload.SerializeV1(p)

	got, err := payload.ParseV1(blob, vaultcrypto.AES256GCMAlg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !bytes.Equal(got.Nonce, p.Nonce) || !bytes.Equal(got.Ciphertext, p.Ciphertext) {
		t.Errorf("round-trip mismatch: got %+v", got)
	}
}

func TestParseV2_UnsupportedVersion(t *testing.T) {
	if _, err := payload.ParseV2(`{"v":"9.9"}`); err == nil {
		t.Errorf("expected error for unsupported version")
	}
}
