package keyring

import (
	"context"
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports"
)

const DefaultService = "sshgw"

// Store keeps secrets in the OS keyring (Secret Service, macOS Keychain,
// Windows Credential Manager) under a single service name.
type Store struct {
	service string
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(service string) *Store {
	if service == "" {
		service = DefaultService
	}

	return &Store{service: service}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	value, err := gokeyring.Get(s.service, key)
	if err != nil {
		return "", wrap("get", key, err)
	}

	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := gokeyring.Set(s.service, key, value); err != nil {
		return wrap("put", key, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := gokeyring.Delete(s.service, key); err != nil {
		return wrap("delete", key, err)
	}

	return nil
}

func wrap(op, key string, err error) error {
	if errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("keyring %s %q: %w", op, key, domain.ErrSecretNotFound)
	}

	return fmt.Errorf("keyring %s %q: %w", op, key, err)
}
