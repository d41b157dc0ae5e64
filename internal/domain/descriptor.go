package domain

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const DefaultSSHPort = 22

type ConnectionDescriptor struct {
	Name          string
	Host          string
	Port          int
	Username      string
	AuthMethod    AuthMethod
	CredentialRef CredentialRef

	KnownHostsPath        string
	InsecureIgnoreHostKey bool
}

func (d ConnectionDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ConfigError{Field: "connections", Reason: "connection name is required"}
	}
	field := func(name string) string {
		return fmt.Sprintf("connections.%s.%s", d.Name, name)
	}

	if strings.TrimSpace(d.Host) == "" {
		return &ConfigError{Field: field("hostname"), Reason: "is required"}
	}
	if strings.TrimSpace(d.Username) == "" {
		return &ConfigError{Field: field("username"), Reason: "is required"}
	}
	if d.Port < 1 || d.Port > 65535 {
		return &ConfigError{Field: field("port"), Reason: fmt.Sprintf("must be between 1 and 65535, got %d", d.Port)}
	}

	switch d.AuthMethod {
	case AuthMethodKey:
		if strings.TrimSpace(d.CredentialRef.KeyPath) == "" {
			return &ConfigError{Field: field("key_path"), Reason: "is required for key authentication"}
		}
	case AuthMethodPassword:
		if !d.CredentialRef.HasPassword() {
			return &ConfigError{Field: field("password"), Reason: "password or password_ref is required for password authentication"}
		}
	default:
		return &ConfigError{Field: field("auth_method"), Reason: fmt.Sprintf("invalid auth method %q", d.AuthMethod)}
	}

	return nil
}

func (d ConnectionDescriptor) Address() string {
	port := d.Port
	if port == 0 {
		port = DefaultSSHPort
	}

	return net.JoinHostPort(d.Host, strconv.Itoa(port))
}

func (d ConnectionDescriptor) String() string {
	return fmt.Sprintf("%s@%s", d.Username, d.Address())
}
