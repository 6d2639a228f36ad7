// Package mnemonic implements recovery-phrase generation, validation, and
// the derivation of a vault's stable identifier and authentication hash from
// its normalized form.
//
// Entropy-to-phrase conversion and checksum validation are delegated to
// [github.com/tyler-smith/go-bip39]; normalization, hashing, and vault-id
// derivation are this package's own responsibility.
package mnemonic

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/dwirx/notevault/noteerrors"
	"github.com/tyler-smith/go-bip39"
)

// WordCount is the number of words a valid recovery phrase contains.
const WordCount = 12

// entropyBits is the BIP-39 entropy size that yields a 12-word phrase.
const entropyBits = 128

// VaultIDPrefix is prepended to the short vault identifier derived from a
// mnemonic.
const VaultIDPrefix = "vault-"

// vaultIDLen is the number of hex characters of the mnemonic hash kept in
// the vault id.
const vaultIDLen = 16

// Generate creates a fresh, valid 12-word recovery phrase from 128 bits of
// cryptographically random entropy.
func Generate() (string, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", err
	}

	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", err
	}

	return phrase, nil
}

// Normalize trims surrounding whitespace, collapses internal runs of
// whitespace to a single space, and lowercases the phrase.
func Normalize(phrase string) string {
	fields := strings.Fields(phrase)
	return strings.ToLower(strings.Join(fields, " "))
}

// Validate reports whether phrase is a well-formed, checksum-valid 12-word
// BIP-39 phrase once normalized.
func Validate(phrase string) bool {
	n := Normalize(phrase)
	if len(strings.Fields(n)) != WordCount {
		return false
	}

	return bip39.IsMnemonicValid(n)
}

// Hash returns the hex-encoded SHA-256 digest of the normalized phrase. It is
// persisted as the VaultHash used to authenticate unlock attempts.
func Hash(phrase string) string {
	sum := sha256.Sum256([]byte(Normalize(phrase)))
	return hex.EncodeToString(sum[:])
}

// VaultID derives the stable vault identifier from a phrase: "vault-" plus
// the first 16 hex characters of [Hash]. It is stable across devices given
// the same recovery phrase.
func VaultID(phrase string) string {
	return VaultIDPrefix + Hash(phrase)[:vaultIDLen]
}

// CheckHash validates phrase and returns its [Hash], returning
// [noteerrors.ErrInvalidMnemonic] if phrase itself does not validate. It does
// not compare the hash against any persisted value.
//
// Note: this package intentionally does not perform the constant-time
// comparison itself; callers authenticating an unlock attempt should compare
// hashes with crypto/subtle, as [vault.Vault] does.
func CheckHash(phrase string) (string, error) {
	if !Validate(phrase) {
		return "", noteerrors.ErrInvalidMnemonic
	}

	return Hash(phrase), nil
}
