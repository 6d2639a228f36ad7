package vaultcrypto

// PaddingBlock is the boundary every v2 plaintext field is padded to before
// being sealed, so ciphertext length no longer reveals exact field length.
const PaddingBlock = 1024

// Pad appends PKCS#7-style padding so len(result) is a multiple of block.
// A fully block-aligned input still gains a full block, matching PKCS#7
// semantics so Unpad is always unambiguous.
func Pad(data []byte, block int) []byte {
	n := block - (len(data) % block)

	padded := make([]byte, len(data)+n)
	copy(padded, data)

	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}

	return padded
}

// Unpad strips and validates PKCS#7-style padding, returning ErrInvalidPadding
// if the trailing bytes do not form a well-formed pad.
func Unpad(data []byte, block int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidPadding
	}

	n := int(data[len(data)-1])
	if n < 1 || n > block || n > len(data) {
		return nil, ErrInvalidPadding
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}

	return data[:len(data)-n], nil
}
