package domain

import (
	"fmt"
	"strings"
)

type AuthMethod string

const (
	AuthMethodKey      AuthMethod = "key"
	AuthMethodPassword AuthMethod = "password"
)

func ParseAuthMethod(raw string) (AuthMethod, error) {
	switch AuthMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case "", AuthMethodKey:
		return AuthMethodKey, nil
	case AuthMethodPassword:
		return AuthMethodPassword, nil
	default:
		return "", fmt.Errorf("invalid auth method %q", raw)
	}
}

// CredentialRef tells the transport where the secret material for a connection lives.
// Refs point to secret-store entries; Password is an inline, already env-expanded value.
type CredentialRef struct {
	KeyPath       string
	PassphraseRef string
	Password      string
	PasswordRef   string
}

func (c CredentialRef) HasPassword() bool {
	return c.Password != "" || c.PasswordRef != ""
}
