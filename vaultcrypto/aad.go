package vaultcrypto

import (
	"bytes"
	"fmt"
)

// BuildAAD constructs the Additional Authenticated Data binding a ciphertext
// to the record it belongs to: the note id, the vault id, and the payload
// format version, joined by a single NUL byte. Neither id may itself contain
// a NUL byte.
func BuildAAD(noteID, vaultID, version string) []byte {
	return []byte(noteID + "\x00" + vaultID + "\x00" + version)
}

// ParseAAD splits a previously-built AAD back into its three fields.
func ParseAAD(aad []byte) (noteID, vaultID, version string, err error) {
	parts := bytes.Split(aad, []byte{0})
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("vaultcrypto: malformed AAD: expected 3 fields, got %d", len(parts))
	}

	return string(parts[0]), string(parts[1]), string(parts[2]), nil
}

// VerifyAAD reports whether got is byte-equal to the AAD built from the
// expected (noteID, vaultID, version) triple.
func VerifyAAD(got []byte, noteID, vaultID, version string) bool {
	return bytes.Equal(got, BuildAAD(noteID, vaultID, version))
}
