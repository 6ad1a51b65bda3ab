package identity

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

// Secretbox framing: 24-byte nonce prepended to the sealed box.
const nonceSize = 24

// KeySize is the secretbox key length in bytes.
const KeySize = 32

// ErrDecryptFailed is returned when a ciphertext fails authentication.
// The accessor treats the field as absent rather than failing the scan.
var ErrDecryptFailed = errors.New("field decryption failed")

// SecretboxCipher is the default Decryptor implementation, using NaCl
// secretbox (XSalsa20-Poly1305) with a per-user key.
//
// Design decision: We use secretbox rather than raw AES because it is
// misuse-resistant: authenticated by construction, with a single safe way
// to use it. Key management stays with the external encryption-at-rest
// collaborator; this type only holds the already-derived user key.
type SecretboxCipher struct {
	key [KeySize]byte
}

// NewSecretboxCipher creates a cipher over a 32-byte user key.
func NewSecretboxCipher(key []byte) (*SecretboxCipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("secretbox key must be %d bytes, got %d", KeySize, len(key))
	}
	c := &SecretboxCipher{}
	copy(c.key[:], key)
	return c, nil
}

// Encrypt seals a plaintext field value with a random nonce.
// Used when storing profile updates; the nonce is prepended to the box.
func (c *SecretboxCipher) Encrypt(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key), nil
}

// Decrypt opens a sealed field value.
func (c *SecretboxCipher) Decrypt(ciphertext []byte) (string, error) {
	if len(ciphertext) < nonceSize {
		return "", ErrDecryptFailed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], ciphertext[:nonceSize])

	plain, ok := secretbox.Open(nil, ciphertext[nonceSize:], &nonce, &c.key)
	if !ok {
		return "", ErrDecryptFailed
	}
	return string(plain), nil
}
