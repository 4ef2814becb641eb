// Package nescient implements the Nescient container format: authenticated,
// password-protected ".nesc" archives combining a stream or block cipher
// with PBKDF2 key derivation and an Encrypt-then-MAC HMAC-SHA256 tag, plus
// a random-access reader that lets the ciphertext be decrypted starting at
// an arbitrary offset.
package nescient

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/aarant/nescient/internal/crypto"
)

// Packer holds an immutable (triple, password) configuration. A Packer is
// stateless beyond that configuration: the derived key is recomputed fresh
// on every Pack/Unpack call and never retained.
type Packer struct {
	triple   Triple
	password []byte
}

// NewPacker validates triple and returns a Packer bound to password. The
// caller retains ownership of password; Packer makes its own copy and
// never mutates or zeroes the caller's slice.
func NewPacker(password []byte, triple Triple) (*Packer, error) {
	if _, err := ParseTriple(triple.Alg, triple.Mode, triple.Auth); err != nil {
		return nil, err
	}
	pw := make([]byte, len(password))
	copy(pw, password)
	return &Packer{triple: triple, password: pw}, nil
}

// Pack encrypts plaintext and returns a new container buffer; plaintext is
// never mutated (the owning/consuming API documented in spec.md §9's
// in-place-vs-copy design note).
func (p *Packer) Pack(plaintext []byte) ([]byte, error) {
	opID := uuid.NewString()
	log.Debug().Str("op", opID).Str("triple", p.triple.String()).Int("plaintext_len", len(plaintext)).Msg("pack starting")

	salt, err := crypto.RandomBytes(SaltSize)
	if err != nil {
		return nil, &IOError{Op: "generate salt", Err: err}
	}

	keyLen, err := p.triple.Alg.KeySize()
	if err != nil {
		return nil, err
	}
	key := crypto.DeriveKey(p.password, salt, keyLen)

	var header Header
	header.Triple = p.triple
	copy(header.Salt[:], salt)

	ciphertext, err := p.encrypt(key, salt, plaintext)
	if err != nil {
		return nil, err
	}

	tag := crypto.ComputeTag(key, header.authenticatedPrefix(), ciphertext)
	copy(header.AuthTag[:], tag)

	out := make([]byte, 0, PrefixSize+len(ciphertext))
	out = append(out, header.Serialize()...)
	out = append(out, ciphertext...)

	log.Debug().Str("op", opID).Int("container_len", len(out)).Msg("pack complete")
	return out, nil
}

// Unpack verifies and decrypts container, returning the original
// plaintext. container is never mutated. Authentication is always checked
// before any plaintext is produced; on tag mismatch, Unpack returns
// *AuthError and no plaintext.
func (p *Packer) Unpack(container []byte) ([]byte, error) {
	opID := uuid.NewString()
	log.Debug().Str("op", opID).Int("container_len", len(container)).Msg("unpack starting")

	header, err := ParseHeader(container)
	if err != nil {
		return nil, err
	}

	ciphertext := container[PrefixSize:]

	keyLen, err := header.Triple.Alg.KeySize()
	if err != nil {
		return nil, err
	}
	key := crypto.DeriveKey(p.password, header.Salt[:], keyLen)

	if !crypto.VerifyTag(key, header.AuthTag[:], container[:HeaderSize+SaltSize], ciphertext) {
		log.Debug().Str("op", opID).Msg("unpack authentication failed")
		return nil, &AuthError{}
	}

	plaintext, err := p.decrypt(header.Triple, key, header.Salt[:], ciphertext)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("op", opID).Int("plaintext_len", len(plaintext)).Msg("unpack complete")
	return plaintext, nil
}

// encrypt dispatches to the selected cipher/mode and returns new
// ciphertext; plaintext is not mutated.
func (p *Packer) encrypt(key, salt, plaintext []byte) ([]byte, error) {
	switch p.triple.Mode {
	case ModeStream:
		var k [crypto.ChaChaKeySize]byte
		copy(k[:], key)
		nonce := crypto.ChaChaNonceFromSalt(salt)
		data := make([]byte, len(plaintext))
		copy(data, plaintext)
		crypto.ChaChaXOR(&k, nonce, crypto.PackerInitialCounter, data)
		return data, nil
	case ModeECB:
		padded := crypto.Pad(plaintext, 16)
		return crypto.ECBEncrypt(key, padded)
	case ModeCBC:
		padded := crypto.Pad(plaintext, 16)
		return crypto.CBCEncryptExplicit(key, salt[:16], padded)
	default:
		return nil, &ParamError{Message: "unsupported mode"}
	}
}

// decrypt dispatches to the selected cipher/mode and returns new
// plaintext; ciphertext is not mutated.
func (p *Packer) decrypt(triple Triple, key, salt, ciphertext []byte) ([]byte, error) {
	switch triple.Mode {
	case ModeStream:
		var k [crypto.ChaChaKeySize]byte
		copy(k[:], key)
		nonce := crypto.ChaChaNonceFromSalt(salt)
		data := make([]byte, len(ciphertext))
		copy(data, ciphertext)
		crypto.ChaChaXOR(&k, nonce, crypto.PackerInitialCounter, data)
		return data, nil
	case ModeECB:
		plain, err := crypto.ECBDecrypt(key, ciphertext)
		if err != nil {
			return nil, err
		}
		return crypto.Unpad(plain), nil
	case ModeCBC:
		plain, err := crypto.CBCDecryptExplicit(key, salt[:16], ciphertext)
		if err != nil {
			return nil, err
		}
		return crypto.Unpad(plain), nil
	default:
		return nil, &ParamError{Message: "unsupported mode"}
	}
}
