// Package cryptox seals small secrets (the persisted bearer token) at rest.
//
// A Sealer is keyed by argon2id(secret, salt); sealed values are laid out as
// nonce || AES-GCM ciphertext so a single blob can be stored under one key.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// Sealer encrypts and decrypts opaque byte blobs.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// DeriveKey stretches a configured secret into a 256-bit AES key.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, keySize)
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

type gcmSealer struct {
	aead cipher.AEAD
}

// NewSealer builds an AES-GCM Sealer from secret and salt.
func NewSealer(secret []byte, salt []byte) (Sealer, error) {
	block, err := aes.NewCipher(DeriveKey(secret, salt))
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &gcmSealer{aead: aead}, nil
}

func (s *gcmSealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *gcmSealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n+s.aead.Overhead() {
		return nil, ErrMalformedCiphertext
	}
	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed value: %w", err)
	}
	return plaintext, nil
}

// Plain is the identity Sealer used when no storage secret is configured.
type Plain struct{}

func (Plain) Seal(plaintext []byte) ([]byte, error) { return plaintext, nil }
func (Plain) Open(sealed []byte) ([]byte, error)    { return sealed, nil }
