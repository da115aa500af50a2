package encryption

import (
	"bytes"
	"testing"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

func newFastCipher() *Cipher {
	c := New()
	c.iterations = 1000
	return c
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := newFastCipher()
	payload := []byte(`{"cases":[{"case_number":"WPPIL 161-2024"}]}`)

	blob, err := c.Encrypt(payload, "correct horse")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if len(blob) != SaltSize+NonceSize+len(payload)+16 {
		t.Fatalf("unexpected blob length %d", len(blob))
	}
	if bytes.Contains(blob, []byte("WPPIL")) {
		t.Fatalf("ciphertext leaks plaintext")
	}

	got, err := c.Decrypt(blob, "correct horse")
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestEncryptUsesFreshSaltAndNonce(t *testing.T) {
	c := newFastCipher()
	a, _ := c.Encrypt([]byte("same"), "pass")
	b, _ := c.Encrypt([]byte("same"), "pass")
	if bytes.Equal(a[:SaltSize+NonceSize], b[:SaltSize+NonceSize]) {
		t.Fatalf("expected distinct salt and nonce per call")
	}
}

func TestDecryptFailuresAreAuthenticationErrors(t *testing.T) {
	c := newFastCipher()
	blob, err := c.Encrypt([]byte("secret dossier"), "right")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0xff

	inputs := map[string][]byte{
		"wrong passphrase": blob,
		"tampered":         tampered,
		"truncated":        blob[:SaltSize+NonceSize],
	}
	for name, input := range inputs {
		pass := "right"
		if name == "wrong passphrase" {
			pass = "wrong"
		}
		_, err := c.Decrypt(input, pass)
		if !domain.IsKind(err, domain.ErrAuthentication) {
			t.Fatalf("%s: expected ErrAuthentication, got %v", name, err)
		}
	}
}

func TestEmptyPassphraseIsRejected(t *testing.T) {
	c := newFastCipher()
	if _, err := c.Encrypt([]byte("x"), ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput from Encrypt, got %v", err)
	}
	if _, err := c.Decrypt(make([]byte, 64), ""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput from Decrypt, got %v", err)
	}
}
