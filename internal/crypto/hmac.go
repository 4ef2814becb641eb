package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
)

// HMACChunkSize is the buffer size used when streaming large ciphertexts
// through HMAC rather than loading them whole, grounded on the source's
// _gen_auth_tag chunking (2**29 bytes, 512 MiB).
const HMACChunkSize = 1 << 29

// NewHMAC returns an HMAC-SHA256 instance keyed with key. Callers write the
// authenticated range into it incrementally (in HMACChunkSize-sized pieces
// for large inputs) and call Sum(nil), or VerifyTagSum, for the 32-byte
// result.
func NewHMAC(key []byte) hash.Hash {
	return hmac.New(sha256.New, key)
}

// ComputeTag computes the HMAC-SHA256 tag over the concatenation of the
// fields in authenticated, in order. It is the convenience path for
// in-memory buffers; streaming callers should use NewHMAC directly.
func ComputeTag(key []byte, authenticated ...[]byte) []byte {
	h := NewHMAC(key)
	for _, part := range authenticated {
		h.Write(part)
	}
	return h.Sum(nil)
}

// VerifyTag reports whether tag matches the HMAC-SHA256 over the
// concatenation of authenticated, using a constant-time comparison so
// timing cannot leak whether the mismatch was in the password-derived key
// or in tampered ciphertext.
func VerifyTag(key []byte, tag []byte, authenticated ...[]byte) bool {
	want := ComputeTag(key, authenticated...)
	return hmac.Equal(want, tag)
}

// VerifyTagSum finishes a streaming HMAC (built with NewHMAC and written
// to incrementally) and compares its result against tag in constant time.
func VerifyTagSum(mac hash.Hash, tag []byte) bool {
	return hmac.Equal(mac.Sum(nil), tag)
}
