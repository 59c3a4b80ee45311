package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// kdfSalt is fixed: the derived key only ever protects data owned by this
// service, keyed by the process-wide secret.
var kdfSalt = []byte("mintvault.wallet.v1")

// Vault encrypts and decrypts custodial private keys with AES-256-GCM. The
// AES key is derived from the configured secret via scrypt; the secret is
// never stored alongside the ciphertext it protects.
type Vault struct {
	aead cipher.AEAD
}

// New derives the cipher from the process-wide encryption secret.
func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, errors.New("vault: encryption secret is empty")
	}

	key, err := scrypt.Key([]byte(secret), kdfSalt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("vault: derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: init gcm: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt seals a plaintext key as base64(nonce || ciphertext).
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("vault: nonce: %w", err)
	}
	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens vault ciphertext. A wrong secret or corrupted ciphertext is
// an error, never a garbage key.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("vault: decode ciphertext: %w", err)
	}
	if len(sealed) < v.aead.NonceSize() {
		return "", errors.New("vault: ciphertext too short")
	}
	nonce, body := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, body, nil)
	if err != nil {
		return "", fmt.Errorf("vault: decrypt: %w", err)
	}
	return string(plaintext), nil
}
