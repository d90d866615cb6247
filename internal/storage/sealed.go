package storage

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySize          = 32 // AES-256
	nonceSize        = 12 // GCM standard nonce size
	saltSize         = 16
	pbkdf2Iterations = 100000
)

// SaltKey holds the key-derivation salt of a SealedStore. It is stored in
// the clear next to the sealed values.
const SaltKey = "eisenhower-matrix-salt"

// CheckKey holds a sealed known value used to verify the passphrase when a
// SealedStore is opened
const CheckKey = "eisenhower-matrix-salt-check"

var checkValue = []byte("eisenhower")

// ErrDecrypt is returned when a value cannot be opened with the passphrase
var ErrDecrypt = errors.New("decryption failed: invalid passphrase or corrupted data")

// SealedStore encrypts values with AES-256-GCM using a key derived from a
// passphrase with PBKDF2
type SealedStore struct {
	inner Store
	aead  cipher.AEAD
}

// NewSealedStore loads or creates the salt in inner and derives the key
func NewSealedStore(ctx context.Context, inner Store, passphrase string) (*SealedStore, error) {
	salt, err := inner.Get(ctx, SaltKey)
	if errors.Is(err, ErrNotFound) {
		salt, err = generateSalt()
		if err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		if err := inner.Set(ctx, SaltKey, salt); err != nil {
			return nil, fmt.Errorf("failed to store salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load salt: %w", err)
	}

	key := pbkdf2.Key([]byte(passphrase), salt, pbkdf2Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	s := &SealedStore{inner: inner, aead: gcm}
	if err := s.verify(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// verify opens the check value, writing it on first use. A wrong
// passphrase fails here before any value is read or overwritten.
func (s *SealedStore) verify(ctx context.Context) error {
	data, err := s.inner.Get(ctx, CheckKey)
	if errors.Is(err, ErrNotFound) {
		sealed, err := s.seal(CheckKey, checkValue)
		if err != nil {
			return fmt.Errorf("failed to seal check value: %w", err)
		}
		if err := s.inner.Set(ctx, CheckKey, sealed); err != nil {
			return fmt.Errorf("failed to store check value: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load check value: %w", err)
	}
	if _, err := s.open(CheckKey, data); err != nil {
		return wrap("open", CheckKey, err)
	}
	return nil
}

func generateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// seal returns nonce + ciphertext; the key is bound as additional data so
// a value cannot be replayed under another key
func (s *SealedStore) seal(key string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte(key)), nil
}

func (s *SealedStore) open(key string, data []byte) ([]byte, error) {
	if len(data) < nonceSize {
		return nil, ErrDecrypt
	}
	plaintext, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], []byte(key))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// Get reads and decrypts the value at key
func (s *SealedStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	plaintext, err := s.open(key, data)
	if err != nil {
		return nil, wrap("get", key, err)
	}
	return plaintext, nil
}

// Set encrypts and writes value at key
func (s *SealedStore) Set(ctx context.Context, key string, value []byte) error {
	data, err := s.seal(key, value)
	if err != nil {
		return wrap("set", key, err)
	}
	return s.inner.Set(ctx, key, data)
}

// Delete removes key
func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Close closes the wrapped store
func (s *SealedStore) Close() error {
	return s.inner.Close()
}
