// Package crypto encrypts configuration secrets (LLM API keys) with
// AES-256-GCM. The encryption key is a UUID kept outside the config
// file; values are marked with a recognizable prefix so loaders can
// decrypt transparently.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// EncryptedPrefix marks encrypted values.
const EncryptedPrefix = "ENC:AES256:"

// GenerateKey returns a fresh random UUID to use as the encryption key.
func GenerateKey() string {
	return uuid.New().String()
}

// deriveKeyFromUUID derives the 32-byte AES-256 key from the UUID's
// raw bytes via SHA-256.
func deriveKeyFromUUID(uuidStr string) ([]byte, error) {
	u, err := uuid.Parse(uuidStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID: %w", err)
	}
	hash := sha256.Sum256(u[:])
	return hash[:], nil
}

// Encrypt seals plaintext with AES-256-GCM under the UUID-derived key
// and returns the prefixed base64 ciphertext.
func Encrypt(plaintext, keyUUID string) (string, error) {
	key, err := deriveKeyFromUUID(keyUUID)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a value produced by Encrypt.
func Decrypt(ciphertext, keyUUID string) (string, error) {
	if !strings.HasPrefix(ciphertext, EncryptedPrefix) {
		return "", fmt.Errorf("invalid encrypted format: missing prefix")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, EncryptedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}
	key, err := deriveKeyFromUUID(keyUUID)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether a value carries the encrypted prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}

// DecryptIfNeeded decrypts encrypted values and passes plain values
// through untouched.
func DecryptIfNeeded(value, keyUUID string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	return Decrypt(value, keyUUID)
}
