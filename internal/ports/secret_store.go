package ports

import "context"

// SecretStore resolves credential refs (password_ref, passphrase_ref).
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
