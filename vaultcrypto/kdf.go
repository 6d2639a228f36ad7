package vaultcrypto

import "github.com/dwirx/notevault/noteerrors"

// Algorithm identifies a key derivation function.
type Algorithm string

const (
	Argon2id Algorithm = "argon2id"
	PBKDF2   Algorithm = "pbkdf2"
)

// KDFParams is the persisted, algorithm-tagged description of how a vault's
// key was derived. Tunings are protocol constants: changing them requires a
// new format version, never a per-vault override.
type KDFParams struct {
	Algorithm   Algorithm
	Salt        []byte
	MemoryKiB   uint32 // argon2id only
	Iterations  uint32
	Parallelism uint8 // argon2id only
}

// DefaultParams returns the fixed, protocol-constant tuning for alg.
func DefaultParams(alg Algorithm) KDFParams {
	switch alg {
	case PBKDF2:
		return KDFParams{Algorithm: PBKDF2, Iterations: DefaultPBKDF2Iterations}
	default:
		return KDFParams{
			Algorithm:   Argon2id,
			MemoryKiB:   defaultArgon2idParams.Memory,
			Iterations:  uint32(argon2idDefaultTime),
			Parallelism: defaultArgon2idParams.Parallelism,
		}
	}
}

// argon2idDefaultTime is the protocol-constant Argon2id time cost,
// overriding the package's historical single-iteration default.
const argon2idDefaultTime = 3

// GenerateSalt produces a fresh 16 byte salt suitable for any KDF in this
// package.
func GenerateSalt() ([]byte, error) {
	return RandBytes(16)
}

// forcePBKDF2 is set only by tests exercising the argon2id-unavailable
// fallback path; production callers never set it.
var forcePBKDF2 bool

// ForcePBKDF2 forces [Derive] to take the pbkdf2 fallback path regardless of
// the requested algorithm. It exists to test [noteerrors.ErrKDFUnavailable]
// handling and vaults explicitly created in legacy mode; it never silently
// changes a vault's persisted params.
func ForcePBKDF2(forced bool) {
	forcePBKDF2 = forced
}

// Derive stretches password into a 32 byte key using the algorithm and
// tuning recorded in params. If argon2id is requested but [ForcePBKDF2] has
// been set, it downgrades to pbkdf2 with [DefaultPBKDF2Iterations] and
// returns [noteerrors.ErrKDFUnavailable] alongside the derived key so the
// caller can surface a warning instead of silently rewriting params.
func Derive(password []byte, params KDFParams) ([]byte, error) {
	switch params.Algorithm {
	case PBKDF2:
		kdf := NewPBKDF2KDF(
			WithPBKDF2Salt(params.Salt),
			WithPBKDF2Params(PBKDF2Params{Iterations: int(params.Iterations)}),
		)

		return kdf.Derive(password), nil
	case Argon2id:
		if forcePBKDF2 {
			kdf := NewPBKDF2KDF(
				WithPBKDF2Salt(params.Salt),
				WithPBKDF2Params(PBKDF2Params{Iterations: DefaultPBKDF2Iterations}),
			)

			return kdf.Derive(password), noteerrors.ErrKDFUnavailable
		}

		kdf := NewArgon2idKDF(
			WithSalt(params.Salt),
			WithParams(Argon2Params{
				Memory:      params.MemoryKiB,
				Time:        params.Iterations,
				Parallelism: params.Parallelism,
			}),
		)

		return kdf.Derive(password), nil
	default:
		return nil, noteerrors.ErrUnsupportedVersion
	}
}
