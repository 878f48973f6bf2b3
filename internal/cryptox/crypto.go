// Package cryptox wraps the few cryptographic primitives the server needs:
// AES-GCM sealing for confidential values at rest and argon2id password
// hashing for identity credentials.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"golang.org/x/crypto/argon2"
)

// Seal encrypts plaintext under key with AES-GCM. The key must be 16, 24 or
// 32 bytes. A fresh 12-byte nonce is generated per call and returned
// alongside the ciphertext.
func Seal(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Unseal reverses Seal. It fails if the key or nonce do not match or the
// ciphertext was tampered with.
func Unseal(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}

// HashPassword derives a 32-byte argon2id digest of password under salt.
// Parameters follow the argon2id defaults recommended for interactive use.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}
