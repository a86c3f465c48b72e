// Package credential keeps the mail API access token in the system keyring.
package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "inboxreceipts"

	// TokenKey is the keyring item holding the access token.
	TokenKey = "gmail-token"
)

// Store reads and writes credentials in a keyring.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps an already opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open returns a Store backed by the platform keyring, falling back to a
// file under ~/.config/inboxreceipts/credentials. The file backend's key is
// built into the binary, so that file is obfuscated rather than protected.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/inboxreceipts/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("inboxreceipts-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Store{ring: ring}, nil
}

// Get retrieves a credential value by key. A missing key yields an empty
// string and a nil error.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       "inboxreceipts access token",
		Description: "Bearer token for the mail API",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// Token implements google.TokenProvider using the stored access token.
func (s *Store) Token(context.Context) (string, error) {
	return s.Get(TokenKey)
}
