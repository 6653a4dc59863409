package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	base64_ "contentos/internal/utils/base64"
	"contentos/internal/utils/logger"

	"golang.org/x/crypto/nacl/secretbox"
)

var log = logger.New("crypto")

var secretKey *[32]byte

// InitializeKeys loads the base64-encoded 32-byte secretbox key used to
// encrypt BYOK API keys and integration credentials at rest.
func InitializeKeys(secretKeyEnv string) error {
	log.Info("Initializing keys")

	if secretKeyEnv == "" {
		return errors.New("crypto secret key not found")
	}

	raw, err := base64_.DecodeFromBase64(secretKeyEnv)
	if err != nil {
		return fmt.Errorf("failed to decode secret key: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("secret key must be 32 bytes, got %d", len(raw))
	}

	secretKey = new([32]byte)
	copy(secretKey[:], raw)
	return nil
}

// Encrypt seals plaintext with a random nonce and returns it base64-encoded.
func Encrypt(plaintext string) (string, error) {
	if secretKey == nil {
		return "", errors.New("crypto keys not initialized")
	}

	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, secretKey)
	return base64_.EncodeToBase64(sealed), nil
}

// Decrypt reverses Encrypt.
func Decrypt(encoded string) (string, error) {
	if secretKey == nil {
		return "", errors.New("crypto keys not initialized")
	}

	sealed, err := base64_.DecodeFromBase64(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(sealed) < 24 {
		return "", errors.New("ciphertext too short")
	}

	var nonce [24]byte
	copy(nonce[:], sealed[:24])

	plaintext, ok := secretbox.Open(nil, sealed[24:], &nonce, secretKey)
	if !ok {
		return "", errors.New("failed to decrypt: invalid key or corrupted data")
	}
	return string(plaintext), nil
}

// GenerateSecretKey returns a fresh base64-encoded key, used by the helper CLI.
func GenerateSecretKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return base64_.EncodeToBase64(key), nil
}
