// Package cryptox seals locally persisted session values at rest.
//
// A vault passphrase from the client configuration is stretched with
// Argon2id into a 256-bit key; values are sealed with AES-GCM and stored as
// nonce||ciphertext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/agrisense/internal/common"
	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys returned by DeriveKey.
const KeySize = 32

// SaltSize is the recommended salt length for DeriveKey.
const SaltSize = 16

// ErrSealedTooShort is returned by Open for input shorter than a nonce.
var ErrSealedTooShort = errors.New("sealed value too short")

// Sealer encrypts and authenticates small values.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// DeriveKey stretches passphrase with Argon2id (1 pass, 64 MiB, 4 lanes).
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// AESGCM is a Sealer backed by AES-GCM.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM builds a sealer from a 16, 24 or 32 byte key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCM{aead: aead}, nil
}

// NewPassphraseSealer derives a key from passphrase and salt and wraps it.
func NewPassphraseSealer(passphrase, salt []byte) (*AESGCM, error) {
	return NewAESGCM(DeriveKey(passphrase, salt))
}

// Seal returns a fresh random nonce followed by the ciphertext.
func (s *AESGCM) Seal(plaintext []byte) ([]byte, error) {
	nonce := common.GenerateRandByteArray(s.aead.NonceSize())
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. Tampered input or a wrong key yields an error.
func (s *AESGCM) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrSealedTooShort
	}
	return s.aead.Open(nil, sealed[:n], sealed[n:], nil)
}
