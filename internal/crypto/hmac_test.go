package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyTagRoundTrip(t *testing.T) {
	key := []byte("a key")
	header := []byte("header-bytes")
	salt := mustHex(t, "01020304050607080910111213141516")
	ciphertext := []byte("ciphertext-bytes")

	tag := ComputeTag(key, header, salt, ciphertext)
	assert.True(t, VerifyTag(key, tag, header, salt, ciphertext), "tag failed to verify against its own inputs")

	tampered := append([]byte(nil), ciphertext...)
	tampered[0] ^= 0xFF
	assert.False(t, VerifyTag(key, tag, header, salt, tampered), "tag verified against tampered ciphertext")

	wrongKey := []byte("a different key")
	assert.False(t, VerifyTag(wrongKey, tag, header, salt, ciphertext), "tag verified under the wrong key")
}

func TestNewHMACStreamingMatchesComputeTag(t *testing.T) {
	key := []byte("streaming key")
	parts := [][]byte{[]byte("part one "), []byte("part two "), []byte("part three")}

	h := NewHMAC(key)
	for _, p := range parts {
		h.Write(p)
	}
	streamed := h.Sum(nil)

	whole := ComputeTag(key, parts...)
	assert.Equal(t, whole, streamed, "streaming HMAC diverges from whole-buffer HMAC")
}
