// Package crypto provides the cryptographic primitives and cipher modes
// used by Nescient containers: a hand-rolled, RFC 7539-compatible ChaCha20
// block cipher with an explicit block counter for random-access decryption,
// and a FIPS-197 AES block cipher with ECB and CBC modes.
package crypto

import "encoding/binary"

const (
	// ChaChaKeySize is the required ChaCha20 key length in bytes.
	ChaChaKeySize = 32

	// ChaChaNonceSize is the required ChaCha20 nonce length in bytes (96 bits).
	ChaChaNonceSize = 12

	// ChaChaBlockSize is the size of one ChaCha20 keystream block.
	ChaChaBlockSize = 64

	chachaRounds = 20 // 10 double-rounds, per RFC 7539
)

// chacha20Constants are the four "expand 32-byte k" words, little-endian.
var chacha20Constants = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

// quarterRound is the ChaCha20 quarter-round function (RFC 7539 §2.1).
func quarterRound(x *[16]uint32, a, b, c, d int) {
	x[a] += x[b]
	x[d] ^= x[a]
	x[d] = bits32RotL(x[d], 16)

	x[c] += x[d]
	x[b] ^= x[c]
	x[b] = bits32RotL(x[b], 12)

	x[a] += x[b]
	x[d] ^= x[a]
	x[d] = bits32RotL(x[d], 8)

	x[c] += x[d]
	x[b] ^= x[c]
	x[b] = bits32RotL(x[b], 7)
}

func bits32RotL(v uint32, n uint) uint32 {
	return (v << n) | (v >> (32 - n))
}

// chachaBlock computes one 64-byte keystream block for the given key, nonce
// and explicit 32-bit block counter (RFC 7539 §2.3).
func chachaBlock(key *[ChaChaKeySize]byte, nonce *[ChaChaNonceSize]byte, counter uint32, out *[ChaChaBlockSize]byte) {
	var x [16]uint32
	x[0], x[1], x[2], x[3] = chacha20Constants[0], chacha20Constants[1], chacha20Constants[2], chacha20Constants[3]
	for i := 0; i < 8; i++ {
		x[4+i] = binary.LittleEndian.Uint32(key[i*4:])
	}
	x[12] = counter
	for i := 0; i < 3; i++ {
		x[13+i] = binary.LittleEndian.Uint32(nonce[i*4:])
	}

	state := x
	for i := 0; i < chachaRounds; i += 2 {
		// Column rounds
		quarterRound(&state, 0, 4, 8, 12)
		quarterRound(&state, 1, 5, 9, 13)
		quarterRound(&state, 2, 6, 10, 14)
		quarterRound(&state, 3, 7, 11, 15)
		// Diagonal rounds
		quarterRound(&state, 0, 5, 10, 15)
		quarterRound(&state, 1, 6, 11, 12)
		quarterRound(&state, 2, 7, 8, 13)
		quarterRound(&state, 3, 4, 9, 14)
	}

	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], state[i]+x[i])
	}
}

// chachaParallelThreshold is the minimum buffer size, in blocks, above which
// keystream generation is split across worker goroutines. Below it the
// per-goroutine overhead outweighs the benefit.
const chachaParallelThreshold = 256 // 16 KiB

// ChaChaXOR XORs the ChaCha20 keystream, starting at initialCounter, into
// data in place. It implements spec.md §4.1's primitive: encrypt and decrypt
// are the same operation. Large buffers are processed in parallel chunks
// aligned to 64-byte block boundaries; the output is bit-identical to serial
// generation regardless of how many workers run, because each worker only
// ever reads key/nonce and writes to its own disjoint byte range.
func ChaChaXOR(key *[ChaChaKeySize]byte, nonce *[ChaChaNonceSize]byte, initialCounter uint32, data []byte) {
	numBlocks := (len(data) + ChaChaBlockSize - 1) / ChaChaBlockSize
	if numBlocks <= chachaParallelThreshold {
		chachaXORSerial(key, nonce, initialCounter, data)
		return
	}
	chachaXORParallel(key, nonce, initialCounter, data)
}

func chachaXORSerial(key *[ChaChaKeySize]byte, nonce *[ChaChaNonceSize]byte, initialCounter uint32, data []byte) {
	var block [ChaChaBlockSize]byte
	counter := initialCounter
	for offset := 0; offset < len(data); offset += ChaChaBlockSize {
		chachaBlock(key, nonce, counter, &block)
		end := offset + ChaChaBlockSize
		if end > len(data) {
			end = len(data)
		}
		for i := offset; i < end; i++ {
			data[i] ^= block[i-offset]
		}
		counter++
	}
}

// chachaParallelWorkers bounds the number of goroutines used by
// chachaXORParallel; keystream generation is CPU-bound and cheap enough per
// block that more than a handful of workers rarely helps.
const chachaParallelWorkers = 8

// chachaXORParallel splits data into worker-sized, block-aligned chunks and
// XORs the keystream for each chunk on its own goroutine. Per spec.md §5,
// this is a pure performance detail: chunk boundaries fall on 64-byte
// multiples, so each worker computes its own starting counter
// (initialCounter + blocksBefore) independently of the others.
func chachaXORParallel(key *[ChaChaKeySize]byte, nonce *[ChaChaNonceSize]byte, initialCounter uint32, data []byte) {
	numBlocks := (len(data) + ChaChaBlockSize - 1) / ChaChaBlockSize
	blocksPerWorker := (numBlocks + chachaParallelWorkers - 1) / chachaParallelWorkers
	if blocksPerWorker == 0 {
		blocksPerWorker = 1
	}

	type chunk struct {
		start, end int
		counter    uint32
	}
	var chunks []chunk
	for start := 0; start < len(data); start += blocksPerWorker * ChaChaBlockSize {
		end := start + blocksPerWorker*ChaChaBlockSize
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, chunk{
			start:   start,
			end:     end,
			counter: initialCounter + uint32(start/ChaChaBlockSize),
		})
	}

	done := make(chan struct{}, len(chunks))
	for _, c := range chunks {
		go func(c chunk) {
			chachaXORSerial(key, nonce, c.counter, data[c.start:c.end])
			done <- struct{}{}
		}(c)
	}
	for range chunks {
		<-done
	}
}

// ChaChaNonceFromSalt derives the 96-bit ChaCha nonce from the first 12
// bytes of a container salt, per spec.md §4.1's "the nonce is a 96-bit
// little-endian integer derived by taking the first 12 bytes of the salt."
// Because the nonce is consumed word-by-word in little-endian order inside
// chachaBlock, taking the raw bytes directly is equivalent to that integer
// interpretation and avoids a round trip through a big.Int-style decode.
func ChaChaNonceFromSalt(salt []byte) *[ChaChaNonceSize]byte {
	var nonce [ChaChaNonceSize]byte
	copy(nonce[:], salt[:ChaChaNonceSize])
	return &nonce
}

// PackerInitialCounter is the ChaCha block counter the container format
// always uses to begin encrypting the plaintext (block 0 is reserved by
// convention). Random-access reads at plaintext byte offset block*64 must
// resume the keystream at PackerInitialCounter+block to match.
const PackerInitialCounter uint32 = 1
