package nescient

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempContainer(t *testing.T, plaintext []byte, password []byte, triple Triple) string {
	t.Helper()
	p, err := NewPacker(password, triple)
	require.NoError(t, err)
	container, err := p.Pack(plaintext)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "test.nesc")
	require.NoError(t, os.WriteFile(path, container, 0o644))
	return path
}

// TestReaderSeekReadScenario3 exercises spec.md §8 scenario 3's shape: pack
// 1 MiB of pseudo-random plaintext with chacha-stm-sha, then seek(65536)
// and read(128) must return exactly plaintext[65536:65664].
func TestReaderSeekReadScenario3(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	plaintext := make([]byte, 1<<20)
	rng.Read(plaintext)

	path := writeTempContainer(t, plaintext, []byte("pw"), Default)

	r, err := OpenReader(path, []byte("pw"))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Seek(65536, io.SeekStart)
	require.NoError(t, err)
	got := make([]byte, 128)
	n, err := io.ReadFull(r, got)
	require.NoError(t, err)
	assert.Equal(t, 128, n)
	assert.Equal(t, plaintext[65536:65664], got)
}

func TestReaderArbitraryRangeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	plaintext := make([]byte, 200000)
	rng.Read(plaintext)

	path := writeTempContainer(t, plaintext, []byte("pw"), Default)
	r, err := OpenReader(path, []byte("pw"))
	require.NoError(t, err)
	defer r.Close()

	cases := []struct{ a, b int }{
		{0, 1}, {0, 64}, {1, 65}, {63, 129}, {100000, 100001}, {199999, 200000}, {0, 200000},
	}
	for _, c := range cases {
		_, err := r.Seek(int64(c.a), io.SeekStart)
		require.NoError(t, err, "[%d,%d)", c.a, c.b)
		got := make([]byte, c.b-c.a)
		_, err = io.ReadFull(r, got)
		require.NoError(t, err, "[%d,%d)", c.a, c.b)
		assert.Equal(t, plaintext[c.a:c.b], got, "[%d,%d)", c.a, c.b)
	}
}

func TestReaderSeekEndThenReadReturnsEOF(t *testing.T) {
	path := writeTempContainer(t, []byte("some plaintext data"), []byte("pw"), Default)
	r, err := OpenReader(path, []byte("pw"))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	buf := make([]byte, 16)
	n, err := r.Read(buf)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)
}

func TestOpenReaderRejectsNonStreamTriple(t *testing.T) {
	path := writeTempContainer(t, []byte("data"), []byte("pw"), Triple{AlgAES256, ModeCBC, AuthSHA})
	_, err := OpenReader(path, []byte("pw"))
	assert.Error(t, err, "expected ParamError for non-stream triple")
}

func TestOpenReaderFailsClosedOnTamperedTag(t *testing.T) {
	plaintext := []byte("some secret data to protect")
	path := writeTempContainer(t, plaintext, []byte("pw"), Default)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[42] ^= 0x01
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = OpenReader(path, []byte("pw"))
	require.Error(t, err)
	assert.IsType(t, &AuthError{}, err)
}

func TestReaderCloseThenOperateFails(t *testing.T) {
	path := writeTempContainer(t, []byte("data"), []byte("pw"), Default)
	r, err := OpenReader(path, []byte("pw"))
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.NoError(t, r.Close(), "second Close should be a no-op")

	_, err = r.Read(make([]byte, 1))
	assert.Error(t, err, "expected error reading from closed reader")

	_, err = r.Seek(0, io.SeekStart)
	assert.Error(t, err, "expected error seeking on closed reader")
}
