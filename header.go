package nescient

import (
	"fmt"
	"strings"
)

// HeaderSize is the length of the fixed (magic, version, alg, mode, auth)
// prefix, before the salt and auth tag.
const HeaderSize = 24

// SaltSize is the length of the random salt field.
const SaltSize = 16

// TagSize is the length of the HMAC-SHA256 authentication tag field.
const TagSize = 32

// PrefixSize is the total length of header ‖ salt ‖ auth_tag, i.e. the
// offset at which ciphertext begins in every container.
const PrefixSize = HeaderSize + SaltSize + TagSize

var magic = [4]byte{'N', 'E', 'S', 'C'}

// FormatVersion is the version string written into every container this
// library produces.
const FormatVersion = "01.00.00"

// Algorithm identifies the symmetric cipher a container uses.
type Algorithm string

// Supported algorithms.
const (
	AlgAES128  Algorithm = "aes128"
	AlgAES192  Algorithm = "aes192"
	AlgAES256  Algorithm = "aes256"
	AlgChaCha  Algorithm = "chacha"
)

// KeySize returns the key length in bytes this algorithm requires.
func (a Algorithm) KeySize() (int, error) {
	switch a {
	case AlgAES128:
		return 16, nil
	case AlgAES192:
		return 24, nil
	case AlgAES256:
		return 32, nil
	case AlgChaCha:
		return 32, nil
	default:
		return 0, &ParamError{Message: fmt.Sprintf("unsupported algorithm %q", string(a))}
	}
}

func (a Algorithm) valid() bool {
	switch a {
	case AlgAES128, AlgAES192, AlgAES256, AlgChaCha:
		return true
	default:
		return false
	}
}

// Mode identifies the cipher mode a container uses.
type Mode string

// Supported modes.
const (
	ModeECB    Mode = "ecb"
	ModeCBC    Mode = "cbc"
	ModeStream Mode = "stm"
)

func (m Mode) valid() bool {
	switch m {
	case ModeECB, ModeCBC, ModeStream:
		return true
	default:
		return false
	}
}

// Auth identifies the MAC scheme a container uses. Only "sha"
// (HMAC-SHA256) is currently recognized.
type Auth string

// AuthSHA is the only currently supported MAC selector.
const AuthSHA Auth = "sha"

func (a Auth) valid() bool {
	return a == AuthSHA
}

// Triple is an (algorithm, mode, auth) selector, the unit of configuration
// for a Packer. It is validated once, at construction, and carried
// everywhere else as an opaque, already-valid value.
type Triple struct {
	Alg  Algorithm
	Mode Mode
	Auth Auth
}

// Default is chacha-stm-sha, matching spec.md §6's default triple.
var Default = Triple{Alg: AlgChaCha, Mode: ModeStream, Auth: AuthSHA}

// supportedTriples enumerates the closed set of recognized
// (alg, mode, auth) combinations.
var supportedTriples = map[Triple]bool{
	{AlgAES128, ModeECB, AuthSHA}: true,
	{AlgAES128, ModeCBC, AuthSHA}: true,
	{AlgAES192, ModeECB, AuthSHA}: true,
	{AlgAES192, ModeCBC, AuthSHA}: true,
	{AlgAES256, ModeECB, AuthSHA}: true,
	{AlgAES256, ModeCBC, AuthSHA}: true,
	{AlgChaCha, ModeStream, AuthSHA}: true,
}

// ParseTriple validates a (alg, mode, auth) combination against the closed
// set supported by the container format, returning a ParamError for any
// combination outside it (including syntactically valid but unpaired
// combinations like chacha+cbc).
func ParseTriple(alg Algorithm, mode Mode, auth Auth) (Triple, error) {
	t := Triple{Alg: alg, Mode: mode, Auth: auth}
	if !alg.valid() {
		return Triple{}, &ParamError{Message: fmt.Sprintf("unsupported algorithm %q", string(alg))}
	}
	if !mode.valid() {
		return Triple{}, &ParamError{Message: fmt.Sprintf("unsupported mode %q", string(mode))}
	}
	if !auth.valid() {
		return Triple{}, &ParamError{Message: fmt.Sprintf("unsupported auth %q", string(auth))}
	}
	if !supportedTriples[t] {
		return Triple{}, &ParamError{Message: fmt.Sprintf("unsupported (alg, mode, auth) combination %s-%s-%s", alg, mode, auth)}
	}
	return t, nil
}

// String renders the triple in "alg-mode-auth" form, e.g. "chacha-stm-sha".
func (t Triple) String() string {
	return fmt.Sprintf("%s-%s-%s", t.Alg, t.Mode, t.Auth)
}

// ParseTripleString parses the "alg-mode-auth" form accepted by the -m CLI
// flag (e.g. "chacha-stm-sha", "aes256-cbc-sha") and validates it the same
// way ParseTriple does.
func ParseTripleString(s string) (Triple, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Triple{}, &ParamError{Message: fmt.Sprintf("malformed triple %q, expected alg-mode-auth", s)}
	}
	return ParseTriple(Algorithm(parts[0]), Mode(parts[1]), Auth(parts[2]))
}

// Header is the parsed, fixed-size prefix of a container: everything
// needed to derive the key and verify the tag before a single byte of
// ciphertext is decrypted.
type Header struct {
	Triple  Triple
	Salt    [SaltSize]byte
	AuthTag [TagSize]byte
}

// rawHeaderBytes renders the 24-byte (magic, version, alg, mode, auth)
// prefix, not including salt or tag.
func (h Header) rawHeaderBytes() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], magic[:])
	copy(buf[4:12], []byte(FormatVersion))
	copy(buf[12:18], padField(string(h.Triple.Alg), 6))
	copy(buf[18:21], padField(string(h.Triple.Mode), 3))
	copy(buf[21:24], padField(string(h.Triple.Auth), 3))
	return buf
}

// padField right-pads s with spaces to exactly n bytes. Every algorithm,
// mode, and auth tag name used by the container format already fits
// within the field width (the widest is "chacha" at 6 bytes), so this
// padding is never actually exercised in practice, but it keeps the field
// width a hard invariant rather than an assumption.
func padField(s string, n int) []byte {
	buf := make([]byte, n)
	copy(buf, s)
	for i := len(s); i < n; i++ {
		buf[i] = ' '
	}
	return buf
}

// ParseHeader reads a container's fixed PrefixSize-byte prefix from data
// and returns the parsed Header; ciphertext always begins at PrefixSize. It
// validates the length, magic, and the (alg, mode, auth) triple; the
// version bytes are not inspected. It does not verify the authentication
// tag; that happens against the actual ciphertext in Unpack/OpenReader.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < PrefixSize {
		return Header{}, &FormatError{Message: fmt.Sprintf("container shorter than the %d-byte prefix (got %d bytes)", PrefixSize, len(data))}
	}

	if string(data[0:4]) != string(magic[:]) {
		return Header{}, &FormatError{Message: "bad magic number"}
	}

	alg := Algorithm(trimField(data[12:18]))
	mode := Mode(trimField(data[18:21]))
	auth := Auth(trimField(data[21:24]))

	triple, err := ParseTriple(alg, mode, auth)
	if err != nil {
		return Header{}, err
	}

	var h Header
	h.Triple = triple
	copy(h.Salt[:], data[24:40])
	copy(h.AuthTag[:], data[40:72])
	return h, nil
}

func trimField(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return string(b[:end])
}

// Serialize renders the full 72-byte prefix: header ‖ salt ‖ auth_tag.
func (h Header) Serialize() []byte {
	buf := make([]byte, PrefixSize)
	copy(buf[0:HeaderSize], h.rawHeaderBytes())
	copy(buf[HeaderSize:HeaderSize+SaltSize], h.Salt[:])
	copy(buf[HeaderSize+SaltSize:], h.AuthTag[:])
	return buf
}

// authenticatedPrefix returns header ‖ salt, the portion of the prefix
// that (along with the ciphertext) falls under the HMAC tag.
func (h Header) authenticatedPrefix() []byte {
	buf := make([]byte, HeaderSize+SaltSize)
	copy(buf[0:HeaderSize], h.rawHeaderBytes())
	copy(buf[HeaderSize:], h.Salt[:])
	return buf
}
