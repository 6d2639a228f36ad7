package vaultcrypto

import "errors"

var (
	// ErrDecrypt is returned by any AEAD Open when the tag, nonce, key, or
	// AAD do not match. It is deliberately uninformative: callers must never
	// branch on which of those caused the failure.
	ErrDecrypt = errors.New("vaultcrypto: decryption failed")

	// ErrInvalidPadding is returned by Unpad when the trailing padding bytes
	// do not satisfy the padding law.
	ErrInvalidPadding = errors.New("vaultcrypto: invalid padding")

	// ErrAADMismatch names the case where a caller-supplied expected AAD does
	// not byte-compare equal to the AAD recorded alongside a ciphertext. No
	// function in this package returns it; [VerifyAAD] reports that case as
	// false.
	ErrAADMismatch = errors.New("vaultcrypto: AAD mismatch")
)
