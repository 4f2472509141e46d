package services

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// ErrSecretNotFound is returned when no secret is stored under a key.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore keeps credentials in the OS keyring.
type SecretStore struct {
	service string
}

// NewSecretStore creates a store namespaced by service.
func NewSecretStore(service string) *SecretStore {
	return &SecretStore{service: service}
}

// Get returns the secret stored under key.
func (s *SecretStore) Get(key string) (string, error) {
	v, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %s: %w", key, err)
	}
	return v, nil
}

// Set stores value under key.
func (s *SecretStore) Set(key, value string) error {
	if err := keyring.Set(s.service, key, value); err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. A missing key is not an error.
func (s *SecretStore) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("keyring delete %s: %w", key, err)
}
