package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

const (
	SaltSize   = 16
	NonceSize  = 12
	KeySize    = 32
	Iterations = 100_000
)

var errSealedBlob = errors.New("unable to open backup: wrong passphrase or corrupted data")

// Cipher seals payloads as salt(16) || nonce(12) || AES-256-GCM ciphertext with tag.
// The key is derived per call with PBKDF2-HMAC-SHA256 and never retained.
type Cipher struct {
	iterations int
	random     io.Reader
}

func New() *Cipher {
	return &Cipher{iterations: Iterations, random: rand.Reader}
}

func (c *Cipher) Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encrypt backup", errors.New("passphrase is required"))
	}

	out := make([]byte, SaltSize+NonceSize, SaltSize+NonceSize+len(plaintext)+16)
	if _, err := io.ReadFull(c.random, out[:SaltSize+NonceSize]); err != nil {
		return nil, fmt.Errorf("read random salt and nonce: %w", err)
	}
	salt := out[:SaltSize]
	nonce := out[SaltSize : SaltSize+NonceSize]

	aead, err := c.aead(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return aead.Seal(out, nonce, plaintext, nil), nil
}

func (c *Cipher) Decrypt(blob []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decrypt backup", errors.New("passphrase is required"))
	}
	if len(blob) < SaltSize+NonceSize+16 {
		return nil, domain.WrapError(domain.ErrAuthentication, "decrypt backup", errSealedBlob)
	}

	salt := blob[:SaltSize]
	nonce := blob[SaltSize : SaltSize+NonceSize]
	aead, err := c.aead(passphrase, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, blob[SaltSize+NonceSize:], nil)
	if err != nil {
		return nil, domain.WrapError(domain.ErrAuthentication, "decrypt backup", errSealedBlob)
	}
	return plaintext, nil
}

func (c *Cipher) aead(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, c.iterations, KeySize, sha256.New)
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init aes: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return aead, nil
}
