package auth

import (
	"os"
	"time"
)

// EnvBearerToken is read when no stored token exists
const EnvBearerToken = "URANUS_BEARER_TOKEN"

// EnvironmentStore is a read-only TokenStore over URANUS_BEARER_TOKEN
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(token *Token) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment token under whatever name is asked for
func (e *EnvironmentStore) Retrieve(name string) (*Token, error) {
	value := os.Getenv(EnvBearerToken)
	if value == "" {
		return nil, ErrTokenNotFound
	}
	if name == "" {
		name = DefaultName
	}
	return &Token{Name: name, BearerToken: value, LastModified: time.Now()}, nil
}

func (e *EnvironmentStore) List() ([]*Token, error) {
	token, err := e.Retrieve("")
	if err != nil {
		return []*Token{}, nil
	}
	return []*Token{token}, nil
}

func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(EnvBearerToken) != ""
}
