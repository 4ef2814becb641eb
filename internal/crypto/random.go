package crypto

import "crypto/rand"

// RandomBytes returns n cryptographically random bytes, mirroring the
// source's get_random_bytes helper (secrets.token_bytes/os.urandom). Go's
// crypto/rand already reads from the OS CSPRNG, so there is no platform
// fallback to replicate.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
