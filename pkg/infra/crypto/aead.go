package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrDecryptionFailed is returned when an AEAD open fails — wrong key or
// tampered ciphertext. Used to turn API-key lookups keyed on the wrong
// project into a clean "not found" rather than a decode panic.
var ErrDecryptionFailed = errors.New("aead: decryption failed")

// SecretBox wraps AES-256-GCM at-rest encryption for API keys and paymaster
// private keys, with subkeys derived per-project via HKDF-SHA256 so that a
// leaked project-scoped subkey never exposes other projects' secrets.
type SecretBox struct {
	masterKey []byte // 32 bytes, from Config.EncryptionKey (hex)
}

func NewSecretBox(encryptionKeyHex string) (*SecretBox, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("aead: encryption key must be 32 bytes (64 hex chars)")
	}
	return &SecretBox{masterKey: key}, nil
}

// SubkeyFor derives a per-project 32-byte AEAD key so that project isolation
// holds even if a subkey is compromised.
func (s *SecretBox) SubkeyFor(projectID string) ([]byte, error) {
	h := hkdf.New(sha256.New, s.masterKey, nil, []byte("nexuspay:apikey:"+projectID))
	subkey := make([]byte, 32)
	if _, err := io.ReadFull(h, subkey); err != nil {
		return nil, fmt.Errorf("derive subkey: %w", err)
	}
	return subkey, nil
}

// Seal encrypts plaintext under the project-derived subkey, returning
// nonce||ciphertext||tag hex-encoded.
func (s *SecretBox) Seal(projectID, plaintext string) (string, error) {
	subkey, err := s.SubkeyFor(projectID)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(subkey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

// Open decrypts a blob produced by Seal. Returns ErrDecryptionFailed on any
// tamper/key mismatch so callers can treat it as "not this project's key".
func (s *SecretBox) Open(projectID, encoded string) (string, error) {
	subkey, err := s.SubkeyFor(projectID)
	if err != nil {
		return "", err
	}
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	block, err := aes.NewCipher(subkey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrDecryptionFailed
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}
