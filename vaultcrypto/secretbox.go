package vaultcrypto

import (
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

var (
	ErrNilSecretBox = errors.New("SecretBox is nil")
	ErrSecretBoxKeyLen = errors.New("secretbox key must be 32 bytes")
)

// SecretBoxNonceSize is the nonce length required by XSalsa20-Poly1305.
const SecretBoxNonceSize = 24

// SecretBox wraps [golang.org/x/crypto/nacl/secretbox] (XSalsa20-Poly1305).
// It carries no AAD support; it exists for decrypting legacy v1 records and
// is never selected for new v2 writes.
type SecretBox struct {
	key [32]byte
}

// NewSecretBox creates a XSalsa20-Poly1305 sealer/opener from a 32 byte key.
func NewSecretBox(key []byte) (*SecretBox, error) {
	if len(key) != 32 {
		return nil, ErrSecretBoxKeyLen
	}

	sb := &SecretBox{}
	copy(sb.key[:], key)

	return sb, nil
}

// Seal encrypts plaintext using the given 24 byte nonce. AAD is not
// supported by this primitive and is ignored if non-empty.
func (s *SecretBox) Seal(nonce, plaintext []byte) ([]byte, error) {
	if s == nil {
		return nil, ErrNilSecretBox
	}

	var n [24]byte
	copy(n[:], nonce)

	return secretbox.Seal(nil, plaintext, &n, &s.key), nil
}

// Open decrypts ciphertext using the given 24 byte nonce.
func (s *SecretBox) Open(nonce, ciphertext []byte) ([]byte, error) {
	if s == nil {
		return nil, ErrNilSecretBox
	}

	var n [24]byte
	copy(n[:], nonce)

	out, ok := secretbox.Open(nil, ciphertext, &n, &s.key)
	if !ok {
		return nil, ErrDecrypt
	}

	return out, nil
}
