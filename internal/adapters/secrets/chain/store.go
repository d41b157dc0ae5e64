package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/bnema/sshgw/internal/adapters/secrets/file"
	keyringstore "github.com/bnema/sshgw/internal/adapters/secrets/keyring"
	passstore "github.com/bnema/sshgw/internal/adapters/secrets/pass"
	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports"
)

// Backend is one named store in the chain. The name only shows up in errors.
type Backend struct {
	Name  string
	Store ports.SecretStore
}

// Store tries its backends in order. Reads return the first hit, writes land
// in the first backend that accepts them, deletes reach every backend.
type Store struct {
	backends []Backend
}

var _ ports.SecretStore = (*Store)(nil)

var errNoBackends = errors.New("secret chain has no backends")

func NewStore(backends ...Backend) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend.Store == nil {
			return nil, fmt.Errorf("secret backend %d (%s) is nil", i, backend.Name)
		}
	}

	return &Store{backends: append([]Backend(nil), backends...)}, nil
}

// NewDefault chains the OS keyring, pass and a file store rooted at fileRoot.
func NewDefault(fileRoot string) (*Store, error) {
	return NewStore(
		Backend{Name: "keyring", Store: keyringstore.NewStore(keyringstore.DefaultService)},
		Backend{Name: "pass", Store: passstore.NewStore()},
		Backend{Name: "file", Store: filestore.NewStore(fileRoot)},
	)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	errs := make([]error, 0, len(s.backends))
	notFound := true
	for _, backend := range s.backends {
		value, err := backend.Store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if shouldStop(err) {
			return "", err
		}
		if !errors.Is(err, domain.ErrSecretNotFound) {
			notFound = false
		}
		errs = append(errs, fmt.Errorf("%s backend get failed: %w", backend.Name, err))
	}

	if notFound {
		return "", fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	}

	return "", errors.Join(errs...)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	errs := make([]error, 0, len(s.backends))
	for _, backend := range s.backends {
		err := backend.Store.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if shouldStop(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("%s backend put failed: %w", backend.Name, err))
	}

	return errors.Join(errs...)
}

// Delete removes key from every backend. It succeeds when at least one
// backend deleted it or none of them had it.
func (s *Store) Delete(ctx context.Context, key string) error {
	errs := make([]error, 0, len(s.backends))
	deleted := false
	for _, backend := range s.backends {
		err := backend.Store.Delete(ctx, key)
		if err == nil || errors.Is(err, domain.ErrSecretNotFound) {
			deleted = deleted || err == nil
			continue
		}
		if shouldStop(err) {
			return err
		}
		errs = append(errs, fmt.Errorf("%s backend delete failed: %w", backend.Name, err))
	}

	if deleted || len(errs) == 0 {
		return nil
	}

	return errors.Join(errs...)
}

func shouldStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
