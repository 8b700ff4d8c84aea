// package cryptox implements the symmetric envelope shared by session tokens
// and backup payloads: JSON serialized, sealed with AES-256-GCM under a key
// derived from the process-wide secret.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// keySalt is fixed: the secret itself is high-entropy configuration, not a
// user password, so the derivation only needs to stretch it to key length.
var keySalt = []byte("wamigrate.v1")

// DeriveKey stretches the configured secret into a 32-byte AES key.
func DeriveKey(secret string) []byte {
	return argon2.IDKey([]byte(secret), keySalt, 1, 64*1024, 4, 32)
}

// SealJSON serializes v to JSON and encrypts it with AES-GCM under key,
// returning an opaque base64 string carrying nonce and ciphertext. The GCM
// tag makes the envelope tamper-evident, so a forged or truncated blob fails
// on open rather than decoding to garbage.
func SealJSON(v any, key []byte) (string, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize payload: %w", err)
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenJSON decrypts an envelope produced by SealJSON and unmarshals the
// plaintext into v. Any decode, authentication or parse failure is returned
// as an error; nothing panics on hostile input.
func OpenJSON(envelope string, key []byte, v any) error {
	sealed, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}

	if len(sealed) < aesgcm.NonceSize() {
		return fmt.Errorf("envelope too short")
	}

	nonce, ciphertext := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("failed to open envelope: %w", err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}
	return nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesgcm, nil
}
