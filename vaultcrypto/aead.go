package vaultcrypto

import "github.com/dwirx/notevault/noteerrors"

// AEADAlgorithm identifies the authenticated-encryption primitive a payload
// was sealed with.
type AEADAlgorithm string

const (
	XChaCha20Poly1305Alg AEADAlgorithm = "xchacha20-poly1305"
	AES256GCMAlg          AEADAlgorithm = "aes-256-gcm"
	XSalsa20Poly1305Alg   AEADAlgorithm = "xsalsa20-poly1305" // v1 legacy only, no AAD
)

// NonceSize returns the nonce length required by alg.
func (alg AEADAlgorithm) NonceSize() int {
	switch alg {
	case AES256GCMAlg:
		return 12
	default: // XChaCha20Poly1305Alg, XSalsa20Poly1305Alg
		return 24
	}
}

// SupportsAAD reports whether alg can authenticate additional data.
func (alg AEADAlgorithm) SupportsAAD() bool {
	return alg != XSalsa20Poly1305Alg
}

// AEAD is the common sealing/opening surface shared by every authenticated
// cipher this package wires up. Implementations that do not support AAD
// (xsalsa20-poly1305) ignore a non-empty aad argument to Seal/Open.
type AEAD interface {
	Seal(nonce, plaintext, aad []byte) ([]byte, error)
	Open(nonce, ciphertext, aad []byte) ([]byte, error)
}

type aesgcmAEAD struct{ g *AESGCM }

func (a aesgcmAEAD) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	return a.g.AEAD().Seal(nil, nonce, plaintext, aad), nil
}

func (a aesgcmAEAD) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	out, err := a.g.AEAD().Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecrypt
	}

	return out, nil
}

type xchachaAEAD struct{ x *XChaCha20Poly1305 }

func (a xchachaAEAD) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	return a.x.Seal(nonce, plaintext, aad)
}

func (a xchachaAEAD) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	out, err := a.x.Open(nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecrypt
	}

	return out, nil
}

type secretboxAEAD struct{ s *SecretBox }

func (a secretboxAEAD) Seal(nonce, plaintext, _ []byte) ([]byte, error) {
	return a.s.Seal(nonce, plaintext)
}

func (a secretboxAEAD) Open(nonce, ciphertext, _ []byte) ([]byte, error) {
	return a.s.Open(nonce, ciphertext)
}

// NewAEAD constructs the AEAD implementation for alg under key.
func NewAEAD(alg AEADAlgorithm, key []byte) (AEAD, error) {
	switch alg {
	case AES256GCMAlg:
		g, err := NewAESGCM(key)
		if err != nil {
			return nil, err
		}

		return aesgcmAEAD{g}, nil
	case XChaCha20Poly1305Alg:
		x, err := NewXChaCha20Poly1305(key)
		if err != nil {
			return nil, err
		}

		return xchachaAEAD{x}, nil
	case XSalsa20Poly1305Alg:
		s, err := NewSecretBox(key)
		if err != nil {
			return nil, err
		}

		return secretboxAEAD{s}, nil
	default:
		return nil, noteerrors.ErrUnsupportedVersion
	}
}
