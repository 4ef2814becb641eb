package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// TestChaChaBlockRFC7539 checks the block function against RFC 7539 §2.3.2's
// test vector: key = 00:01:..:1f, nonce = 00:00:00:09:00:00:00:4a:00:00:00:00,
// counter = 1.
func TestChaChaBlockRFC7539(t *testing.T) {
	var key [ChaChaKeySize]byte
	for i := range key {
		key[i] = byte(i)
	}
	nonce := [ChaChaNonceSize]byte{0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00, 0x4a, 0x00, 0x00, 0x00, 0x00}

	var out [ChaChaBlockSize]byte
	chachaBlock(&key, &nonce, 1, &out)

	want := mustHex(t, ""+
		"10f1e7e4d13b5915500fdd1fa32071c4"+
		"c7d1f4c733c068030422aa9ac3d46c4e"+
		"d2826446079faa0914c2d705d98b02a2"+
		"b5129cd1de164eb9cbd083e8a2503c4e")
	assert.Equal(t, want, out[:])
}

// TestChaChaXORZeroVector checks that encrypting all-zero plaintext with an
// all-zero key and nonce at counter 0 reproduces the canonical first
// keystream block used by several ChaCha20 test suites.
func TestChaChaXORZeroVector(t *testing.T) {
	var key [ChaChaKeySize]byte
	var nonce [ChaChaNonceSize]byte
	data := make([]byte, ChaChaBlockSize)

	ChaChaXOR(&key, &nonce, 0, data)

	want := mustHex(t, ""+
		"76b8e0ada0f13d90405d6ae55386bd28"+
		"bdd219b8a08ded1aa836efcc8b770dc7"+
		"da41597c5157488d7724e03fb8d84a37"+
		"6a43b8f41518a11cc387b669b2ee6586")
	assert.Equal(t, want, data)
}

// TestChaChaXORRoundTrip checks that XOR-ing twice with the same keystream
// recovers the original plaintext, across a range of lengths that straddle
// block boundaries.
func TestChaChaXORRoundTrip(t *testing.T) {
	var key [ChaChaKeySize]byte
	copy(key[:], []byte("some arbitrary thirty-two byte!"))
	nonce := [ChaChaNonceSize]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	for _, n := range []int{0, 1, 63, 64, 65, 127, 128, 1000, 70000} {
		plaintext := bytes.Repeat([]byte{0xAB}, n)
		data := append([]byte(nil), plaintext...)

		ChaChaXOR(&key, &nonce, PackerInitialCounter, data)
		if n > 0 {
			assert.NotEqual(t, plaintext, data, "len=%d: ciphertext equals plaintext", n)
		}
		ChaChaXOR(&key, &nonce, PackerInitialCounter, data)
		assert.Equal(t, plaintext, data, "len=%d: round trip failed", n)
	}
}

// TestChaChaXORParallelMatchesSerial checks that large buffers processed by
// the parallel path produce byte-identical output to the serial path.
func TestChaChaXORParallelMatchesSerial(t *testing.T) {
	var key [ChaChaKeySize]byte
	copy(key[:], []byte("some arbitrary thirty-two byte!"))
	nonce := [ChaChaNonceSize]byte{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}

	n := (chachaParallelThreshold + 100) * ChaChaBlockSize
	plaintext := bytes.Repeat([]byte{0x5A}, n)

	serial := append([]byte(nil), plaintext...)
	chachaXORSerial(&key, &nonce, 3, serial)

	parallel := append([]byte(nil), plaintext...)
	chachaXORParallel(&key, &nonce, 3, parallel)

	assert.Equal(t, serial, parallel, "parallel output diverges from serial output")
}

func TestChaChaNonceFromSalt(t *testing.T) {
	salt := mustHex(t, "0102030405060708091011121314abcd")
	nonce := ChaChaNonceFromSalt(salt)
	want := mustHex(t, "010203040506070809101112")
	assert.Equal(t, want, nonce[:])
}
