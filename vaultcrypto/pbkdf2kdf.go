package vaultcrypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// DefaultPBKDF2Iterations is the protocol-constant iteration count for the
// legacy/fallback KDF path. It is fixed across devices; vaults created with
// one iteration count cannot silently migrate to another without a format
// version bump.
const DefaultPBKDF2Iterations = 600_000

// PBKDF2Params represents the parameters for the PBKDF2-HMAC-SHA256 KDF.
type PBKDF2Params struct {
	Iterations int
}

type PBKDF2KDF struct {
	params PBKDF2Params
	salt   []byte
	keyLen int
}

var defaultPBKDF2Params = PBKDF2Params{
	Iterations: DefaultPBKDF2Iterations,
}

type PBKDF2KDFOpt func(*PBKDF2KDF)

// NewPBKDF2KDF creates a new [PBKDF2KDF] with the provided options, defaulting
// to [DefaultPBKDF2Iterations] iterations and a 32 byte key.
func NewPBKDF2KDF(opts ...PBKDF2KDFOpt) *PBKDF2KDF {
	kdf := &PBKDF2KDF{
		params: defaultPBKDF2Params,
		keyLen: 32,
	}

	for _, opt := range opts {
		opt(kdf)
	}

	return kdf
}

func WithPBKDF2Salt(salt []byte) PBKDF2KDFOpt {
	return func(kdf *PBKDF2KDF) {
		kdf.salt = salt
	}
}

func WithPBKDF2Params(params PBKDF2Params) PBKDF2KDFOpt {
	return func(kdf *PBKDF2KDF) {
		kdf.params = params
	}
}

func WithPBKDF2KeyLen(n int) PBKDF2KDFOpt {
	return func(kdf *PBKDF2KDF) {
		kdf.keyLen = n
	}
}

func (p *PBKDF2KDF) Derive(password []byte) []byte {
	return pbkdf2.Key(password, p.salt, p.params.Iterations, p.keyLen, sha256.New)
}

func (p *PBKDF2KDF) Params() PBKDF2Params {
	return p.params
}
