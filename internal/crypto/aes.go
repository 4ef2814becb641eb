package crypto

// AES block cipher implementation per FIPS-197: key schedule, S-box
// substitution, ShiftRows, MixColumns over GF(2^8) with reduction
// polynomial 0x11B, and the inverse operations for decryption.

const aesBlockSize = 16

// aesParams returns the Nk (words) and Nr (rounds) for a given key length
// in bytes, per FIPS-197 Table 4.
func aesParams(keyLen int) (nk, nr int, ok bool) {
	switch keyLen {
	case 16:
		return 4, 10, true
	case 24:
		return 6, 12, true
	case 32:
		return 8, 14, true
	default:
		return 0, 0, false
	}
}

var sbox = [256]byte{
	0x63, 0x7c, 0x77, 0x7b, 0xf2, 0x6b, 0x6f, 0xc5, 0x30, 0x01, 0x67, 0x2b, 0xfe, 0xd7, 0xab, 0x76,
	0xca, 0x82, 0xc9, 0x7d, 0xfa, 0x59, 0x47, 0xf0, 0xad, 0xd4, 0xa2, 0xaf, 0x9c, 0xa4, 0x72, 0xc0,
	0xb7, 0xfd, 0x93, 0x26, 0x36, 0x3f, 0xf7, 0xcc, 0x34, 0xa5, 0xe5, 0xf1, 0x71, 0xd8, 0x31, 0x15,
	0x04, 0xc7, 0x23, 0xc3, 0x18, 0x96, 0x05, 0x9a, 0x07, 0x12, 0x80, 0xe2, 0xeb, 0x27, 0xb2, 0x75,
	0x09, 0x83, 0x2c, 0x1a, 0x1b, 0x6e, 0x5a, 0xa0, 0x52, 0x3b, 0xd6, 0xb3, 0x29, 0xe3, 0x2f, 0x84,
	0x53, 0xd1, 0x00, 0xed, 0x20, 0xfc, 0xb1, 0x5b, 0x6a, 0xcb, 0xbe, 0x39, 0x4a, 0x4c, 0x58, 0xcf,
	0xd0, 0xef, 0xaa, 0xfb, 0x43, 0x4d, 0x33, 0x85, 0x45, 0xf9, 0x02, 0x7f, 0x50, 0x3c, 0x9f, 0xa8,
	0x51, 0xa3, 0x40, 0x8f, 0x92, 0x9d, 0x38, 0xf5, 0xbc, 0xb6, 0xda, 0x21, 0x10, 0xff, 0xf3, 0xd2,
	0xcd, 0x0c, 0x13, 0xec, 0x5f, 0x97, 0x44, 0x17, 0xc4, 0xa7, 0x7e, 0x3d, 0x64, 0x5d, 0x19, 0x73,
	0x60, 0x81, 0x4f, 0xdc, 0x22, 0x2a, 0x90, 0x88, 0x46, 0xee, 0xb8, 0x14, 0xde, 0x5e, 0x0b, 0xdb,
	0xe0, 0x32, 0x3a, 0x0a, 0x49, 0x06, 0x24, 0x5c, 0xc2, 0xd3, 0xac, 0x62, 0x91, 0x95, 0xe4, 0x79,
	0xe7, 0xc8, 0x37, 0x6d, 0x8d, 0xd5, 0x4e, 0xa9, 0x6c, 0x56, 0xf4, 0xea, 0x65, 0x7a, 0xae, 0x08,
	0xba, 0x78, 0x25, 0x2e, 0x1c, 0xa6, 0xb4, 0xc6, 0xe8, 0xdd, 0x74, 0x1f, 0x4b, 0xbd, 0x8b, 0x8a,
	0x70, 0x3e, 0xb5, 0x66, 0x48, 0x03, 0xf6, 0x0e, 0x61, 0x35, 0x57, 0xb9, 0x86, 0xc1, 0x1d, 0x9e,
	0xe1, 0xf8, 0x98, 0x11, 0x69, 0xd9, 0x8e, 0x94, 0x9b, 0x1e, 0x87, 0xe9, 0xce, 0x55, 0x28, 0xdf,
	0x8c, 0xa1, 0x89, 0x0d, 0xbf, 0xe6, 0x42, 0x68, 0x41, 0x99, 0x2d, 0x0f, 0xb0, 0x54, 0xbb, 0x16,
}

var invSbox [256]byte

var rcon = [11]byte{0x00, 0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

func init() {
	for i, v := range sbox {
		invSbox[v] = byte(i)
	}
}

// gmul multiplies two bytes in GF(2^8) with reduction polynomial x^8+x^4+x^3+x+1 (0x11B).
func gmul(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hiBitSet := a&0x80 != 0
		a <<= 1
		if hiBitSet {
			a ^= 0x1B
		}
		b >>= 1
	}
	return p
}

// aesCipher holds an expanded key schedule for one key and is reusable
// across many block encrypt/decrypt calls.
type aesCipher struct {
	nk, nr int
	w      [][4]byte // round key words, 4*(nr+1) entries
}

func newAESCipher(key []byte) (*aesCipher, error) {
	nk, nr, ok := aesParams(len(key))
	if !ok {
		return nil, &invalidKeyLenError{got: len(key)}
	}
	c := &aesCipher{nk: nk, nr: nr}
	c.expandKey(key)
	return c, nil
}

type invalidKeyLenError struct{ got int }

func (e *invalidKeyLenError) Error() string {
	return "crypto: invalid AES key length"
}

func (c *aesCipher) expandKey(key []byte) {
	totalWords := 4 * (c.nr + 1)
	c.w = make([][4]byte, totalWords)

	for i := 0; i < c.nk; i++ {
		copy(c.w[i][:], key[4*i:4*i+4])
	}

	var temp [4]byte
	for i := c.nk; i < totalWords; i++ {
		temp = c.w[i-1]
		if i%c.nk == 0 {
			temp = rotWord(temp)
			temp = subWord(temp)
			temp[0] ^= rcon[i/c.nk]
		} else if c.nk > 6 && i%c.nk == 4 {
			temp = subWord(temp)
		}
		for j := 0; j < 4; j++ {
			c.w[i][j] = c.w[i-c.nk][j] ^ temp[j]
		}
	}
}

func rotWord(w [4]byte) [4]byte {
	return [4]byte{w[1], w[2], w[3], w[0]}
}

func subWord(w [4]byte) [4]byte {
	return [4]byte{sbox[w[0]], sbox[w[1]], sbox[w[2]], sbox[w[3]]}
}

// state is stored column-major, matching FIPS-197's 4x4 byte matrix.
type aesState [4][4]byte

func bytesToState(in []byte) aesState {
	var s aesState
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			s[r][c] = in[4*c+r]
		}
	}
	return s
}

func stateToBytes(s aesState, out []byte) {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[4*c+r] = s[r][c]
		}
	}
}

func (c *aesCipher) addRoundKey(s *aesState, round int) {
	for col := 0; col < 4; col++ {
		w := c.w[round*4+col]
		for row := 0; row < 4; row++ {
			s[row][col] ^= w[row]
		}
	}
}

func subBytes(s *aesState) {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			s[r][c] = sbox[s[r][c]]
		}
	}
}

func invSubBytes(s *aesState) {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			s[r][c] = invSbox[s[r][c]]
		}
	}
}

func shiftRows(s *aesState) {
	s[1] = [4]byte{s[1][1], s[1][2], s[1][3], s[1][0]}
	s[2] = [4]byte{s[2][2], s[2][3], s[2][0], s[2][1]}
	s[3] = [4]byte{s[3][3], s[3][0], s[3][1], s[3][2]}
}

func invShiftRows(s *aesState) {
	s[1] = [4]byte{s[1][3], s[1][0], s[1][1], s[1][2]}
	s[2] = [4]byte{s[2][2], s[2][3], s[2][0], s[2][1]}
	s[3] = [4]byte{s[3][1], s[3][2], s[3][3], s[3][0]}
}

func mixColumns(s *aesState) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := s[0][c], s[1][c], s[2][c], s[3][c]
		s[0][c] = gmul(a0, 2) ^ gmul(a1, 3) ^ a2 ^ a3
		s[1][c] = a0 ^ gmul(a1, 2) ^ gmul(a2, 3) ^ a3
		s[2][c] = a0 ^ a1 ^ gmul(a2, 2) ^ gmul(a3, 3)
		s[3][c] = gmul(a0, 3) ^ a1 ^ a2 ^ gmul(a3, 2)
	}
}

func invMixColumns(s *aesState) {
	for c := 0; c < 4; c++ {
		a0, a1, a2, a3 := s[0][c], s[1][c], s[2][c], s[3][c]
		s[0][c] = gmul(a0, 0x0e) ^ gmul(a1, 0x0b) ^ gmul(a2, 0x0d) ^ gmul(a3, 0x09)
		s[1][c] = gmul(a0, 0x09) ^ gmul(a1, 0x0e) ^ gmul(a2, 0x0b) ^ gmul(a3, 0x0d)
		s[2][c] = gmul(a0, 0x0d) ^ gmul(a1, 0x09) ^ gmul(a2, 0x0e) ^ gmul(a3, 0x0b)
		s[3][c] = gmul(a0, 0x0b) ^ gmul(a1, 0x0d) ^ gmul(a2, 0x09) ^ gmul(a3, 0x0e)
	}
}

// encryptBlock encrypts exactly one 16-byte block from src into dst.
func (c *aesCipher) encryptBlock(dst, src []byte) {
	s := bytesToState(src)
	c.addRoundKey(&s, 0)
	for round := 1; round < c.nr; round++ {
		subBytes(&s)
		shiftRows(&s)
		mixColumns(&s)
		c.addRoundKey(&s, round)
	}
	subBytes(&s)
	shiftRows(&s)
	c.addRoundKey(&s, c.nr)
	stateToBytes(s, dst)
}

// decryptBlock decrypts exactly one 16-byte block from src into dst.
func (c *aesCipher) decryptBlock(dst, src []byte) {
	s := bytesToState(src)
	c.addRoundKey(&s, c.nr)
	for round := c.nr - 1; round >= 1; round-- {
		invShiftRows(&s)
		invSubBytes(&s)
		c.addRoundKey(&s, round)
		invMixColumns(&s)
	}
	invShiftRows(&s)
	invSubBytes(&s)
	c.addRoundKey(&s, 0)
	stateToBytes(s, dst)
}
