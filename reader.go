package nescient

import (
	"io"
	"os"

	"github.com/aarant/nescient/internal/chunking"
	"github.com/aarant/nescient/internal/crypto"
)

// readerState tracks the lifecycle described in spec.md §4.9:
// {opened, consuming, closed}. read/seek are valid in opened or consuming;
// any operation after Close fails.
type readerState int

const (
	stateOpened readerState = iota
	stateConsuming
	stateClosed
)

// Reader presents a Nescient container as a seekable, authenticated
// plaintext byte source: the underlying ciphertext is decrypted lazily,
// block by block, as the caller seeks and reads, rather than all at once.
// This lets a ZIP reader locate and extract individual members of a
// `chacha-stm-sha` container without ever materializing the whole archive
// in memory.
type Reader struct {
	f      *os.File
	header Header
	key    []byte
	nonce  *[crypto.ChaChaNonceSize]byte

	size   int64 // plaintext size, file size - PrefixSize
	needle int64
	state  readerState
}

// chachaBlockSize is the fixed keystream block size the random-access
// reader's seek/read math is built around.
const chachaBlockSize = int64(crypto.ChaChaBlockSize)

// OpenReader opens path as a Nescient container, verifies its
// authentication tag by streaming the ciphertext through HMAC, and returns
// a Reader positioned at plaintext offset 0. Only `chacha-stm-sha`
// containers support random access (the block-counter addressing scheme
// requires a stream cipher); other triples return a ParamError.
func OpenReader(path string, password []byte) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open container", Err: err}
	}

	prefix := make([]byte, PrefixSize)
	if _, err := io.ReadFull(f, prefix); err != nil {
		f.Close()
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, &FormatError{Message: "container shorter than the fixed prefix"}
		}
		return nil, &IOError{Op: "read container prefix", Err: err}
	}

	header, err := ParseHeader(prefix)
	if err != nil {
		f.Close()
		return nil, err
	}
	if header.Triple.Mode != ModeStream {
		f.Close()
		return nil, &ParamError{Message: "random-access reading requires a chacha-stm-sha container"}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &IOError{Op: "stat container", Err: err}
	}
	plaintextSize := info.Size() - PrefixSize
	if plaintextSize < 0 {
		f.Close()
		return nil, &FormatError{Message: "container shorter than the fixed prefix"}
	}

	keyLen, err := header.Triple.Alg.KeySize()
	if err != nil {
		f.Close()
		return nil, err
	}
	key := crypto.DeriveKey(password, header.Salt[:], keyLen)

	if err := verifyTagStreaming(f, prefix[:HeaderSize+SaltSize], header, key, info.Size()); err != nil {
		f.Close()
		return nil, err
	}

	if _, err := f.Seek(PrefixSize, io.SeekStart); err != nil {
		f.Close()
		return nil, &IOError{Op: "seek past prefix", Err: err}
	}

	return &Reader{
		f:      f,
		header: header,
		key:    key,
		nonce:  crypto.ChaChaNonceFromSalt(header.Salt[:]),
		size:   plaintextSize,
		needle: 0,
		state:  stateOpened,
	}, nil
}

// verifyTagStreaming recomputes the HMAC over header‖salt‖ciphertext by
// reading the ciphertext in crypto.HMACChunkSize pieces rather than
// loading it all into memory, per spec.md §4.7's large-file path.
// authenticated is the header‖salt bytes exactly as stored in the file.
func verifyTagStreaming(f *os.File, authenticated []byte, header Header, key []byte, fileSize int64) error {
	if _, err := f.Seek(PrefixSize, io.SeekStart); err != nil {
		return &IOError{Op: "seek to ciphertext", Err: err}
	}

	mac := crypto.NewHMAC(key)
	mac.Write(authenticated)

	ciphertextSize := fileSize - PrefixSize
	bufSize := int64(crypto.HMACChunkSize)
	if ciphertextSize < bufSize {
		bufSize = ciphertextSize
	}
	if bufSize < 0 {
		bufSize = 0
	}
	buf := make([]byte, bufSize)
	err := chunking.Iterate(ciphertextSize, crypto.HMACChunkSize, func(r chunking.Range) error {
		chunk := buf[:r.Size]
		if _, err := io.ReadFull(f, chunk); err != nil {
			return &IOError{Op: "read ciphertext for authentication", Err: err}
		}
		mac.Write(chunk)
		return nil
	})
	if err != nil {
		return err
	}

	if !crypto.VerifyTagSum(mac, header.AuthTag[:]) {
		return &AuthError{}
	}
	return nil
}

// Seek repositions the logical plaintext needle. whence follows the
// io.Seeker convention (io.SeekStart, io.SeekCurrent, io.SeekEnd).
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.state == stateClosed {
		return 0, &IOError{Op: "seek", Err: os.ErrClosed}
	}

	var needle int64
	switch whence {
	case io.SeekStart:
		needle = offset
	case io.SeekCurrent:
		needle = r.needle + offset
	case io.SeekEnd:
		needle = r.size + offset
	default:
		return 0, &ParamError{Message: "invalid whence"}
	}
	if needle < 0 {
		return 0, &ParamError{Message: "negative seek position"}
	}

	r.needle = needle
	if r.state == stateOpened {
		r.state = stateConsuming
	}
	return r.needle, nil
}

// Read implements io.Reader over the decrypted plaintext, following
// spec.md §4.8's read(n) algorithm: it reads the ciphertext block(s)
// containing the needle, regenerates the keystream starting at the block
// matching the pack-path counter convention, and discards the leading
// bytes before the needle's intra-block offset.
func (r *Reader) Read(p []byte) (int, error) {
	if r.state == stateClosed {
		return 0, &IOError{Op: "read", Err: os.ErrClosed}
	}
	r.state = stateConsuming

	if r.needle >= r.size || len(p) == 0 {
		return 0, io.EOF
	}

	block, offset := chunking.BlockOffset(r.needle, chachaBlockSize)

	want := int64(len(p))
	if r.needle+want > r.size {
		want = r.size - r.needle
	}
	readLen := want + offset

	if _, err := r.f.Seek(PrefixSize+block*chachaBlockSize, io.SeekStart); err != nil {
		return 0, &IOError{Op: "seek in container", Err: err}
	}

	buf := make([]byte, readLen)
	n, err := io.ReadFull(r.f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, &IOError{Op: "read container", Err: err}
	}
	buf = buf[:n]

	var key [crypto.ChaChaKeySize]byte
	copy(key[:], r.key)
	crypto.ChaChaXOR(&key, r.nonce, crypto.PackerInitialCounter+uint32(block), buf)

	if int64(len(buf)) <= offset {
		return 0, io.EOF
	}
	plaintext := buf[offset:]

	copied := copy(p, plaintext)
	r.needle += int64(copied)
	return copied, nil
}

// Tell returns the current logical plaintext offset.
func (r *Reader) Tell() int64 {
	return r.needle
}

// Size returns the total plaintext length.
func (r *Reader) Size() int64 {
	return r.size
}

// Close releases the underlying file handle. Any operation on a closed
// Reader fails.
func (r *Reader) Close() error {
	if r.state == stateClosed {
		return nil
	}
	r.state = stateClosed
	return r.f.Close()
}

var (
	_ io.Reader   = (*Reader)(nil)
	_ io.Seeker   = (*Reader)(nil)
	_ io.ReaderAt = readerAtAdapter{}
)

// readerAtAdapter lets archive/zip.NewReader (which needs io.ReaderAt)
// consume a Reader safely, by serializing each ReadAt behind its own
// Seek+Read pair. Composing a Reader with zip is only safe single-threaded
// per spec.md §5's concurrency model; ReadAt calls here are not
// parallel-safe.
type readerAtAdapter struct {
	r *Reader
}

func (a readerAtAdapter) ReadAt(p []byte, off int64) (int, error) {
	if _, err := a.r.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	total := 0
	for total < len(p) {
		n, err := a.r.Read(p[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}
