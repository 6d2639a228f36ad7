package vaultcrypto

import (
	"crypto/cipher"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrNilXChaCha20Poly1305 = errors.New("XChaCha20Poly1305 is nil")

// XChaCha20Poly1305 wraps a [chacha20poly1305.NewX] AEAD instance. Its
// 24 byte nonce makes random generation safe for the lifetime of a key,
// unlike the 12 byte AES-GCM nonce.
type XChaCha20Poly1305 struct {
	aead cipher.AEAD
}

// NewXChaCha20Poly1305 creates a new XChaCha20-Poly1305 AEAD using the
// provided 32 byte key.
func NewXChaCha20Poly1305(key []byte) (*XChaCha20Poly1305, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}

	return &XChaCha20Poly1305{aead}, nil
}

// Seal encrypts plaintext using the given 24 byte nonce, authenticating aad.
func (x *XChaCha20Poly1305) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	if x == nil {
		return nil, ErrNilXChaCha20Poly1305
	}

	return x.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts ciphertext using the given 24 byte nonce, verifying aad.
func (x *XChaCha20Poly1305) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	if x == nil {
		return nil, ErrNilXChaCha20Poly1305
	}

	return x.aead.Open(nil, nonce, ciphertext, aad)
}

// NonceSize returns the nonce length required by this AEAD (24 bytes).
func (x *XChaCha20Poly1305) NonceSize() int {
	if x == nil {
		return chacha20poly1305.NonceSizeX
	}

	return x.aead.NonceSize()
}
