package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2Iterations is the fixed iteration count every container uses,
// matching the source's hardcoded pbkdf2_hmac('sha256', ..., 100000, ...).
const PBKDF2Iterations = 100000

// SaltSize is the length in bytes of the random salt stored in every
// container header.
const SaltSize = 16

// DeriveKey derives a keyLen-byte key from password and salt using
// PBKDF2-HMAC-SHA256 at the fixed iteration count.
func DeriveKey(password, salt []byte, keyLen int) []byte {
	return pbkdf2.Key(password, salt, PBKDF2Iterations, keyLen, sha256.New)
}

// SplitKeys derives two independent subkeys from a single master key via
// HKDF-SHA256, one for encryption and one for authentication. The container
// format does not use this split (the encryption key doubles as the HMAC
// key, matching the source for bit-for-bit compatibility), but it is kept
// available for callers who want the stronger separate-key construction
// without changing the on-disk format.
func SplitKeys(masterKey []byte, keyLen int) (encKey, macKey []byte, err error) {
	h := hkdf.New(sha256.New, masterKey, nil, []byte("nescient-subkeys"))
	encKey = make([]byte, keyLen)
	macKey = make([]byte, keyLen)
	if _, err := h.Read(encKey); err != nil {
		return nil, nil, err
	}
	if _, err := h.Read(macKey); err != nil {
		return nil, nil, err
	}
	return encKey, macKey, nil
}
