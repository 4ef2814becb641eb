package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPadUnpadRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 17, 31, 32, 100} {
		data := bytes.Repeat([]byte{0x42}, n)
		padded := Pad(data, 16)
		assert.Zero(t, len(padded)%16, "len=%d: padded length %d not a multiple of 16", n, len(padded))
		assert.NotEqual(t, len(data), len(padded), "len=%d: pad added no bytes", n)

		unpadded := Unpad(padded)
		assert.Equal(t, data, unpadded, "len=%d: round trip mismatch", n)
	}
}

func TestPadAlwaysAddsFullBlockWhenAligned(t *testing.T) {
	data := bytes.Repeat([]byte{0x01}, 32)
	padded := Pad(data, 16)
	assert.Len(t, padded, 48, "expected a full extra block")
	for _, b := range padded[32:] {
		assert.EqualValues(t, 16, b, "expected pad byte value 16")
	}
}
