package domain

import (
	"sort"
	"time"
)

const (
	DefaultServerName    = "sshgw"
	DefaultSweepInterval = time.Minute
	DefaultMaxIdle       = 5 * time.Minute

	RedactedValue = "********"
)

type ServerSettings struct {
	Name          string
	MetricsAddr   string
	SweepInterval time.Duration
	MaxIdle       time.Duration
}

// Config is an immutable snapshot of everything loaded from the configuration
// file. A reload builds a new Config; nothing mutates a published one.
type Config struct {
	Path        string
	Connections map[string]ConnectionDescriptor
	Policy      Policy
	Server      ServerSettings
}

func (c Config) Validate() error {
	for name, descriptor := range c.Connections {
		if descriptor.Name != name {
			return &ConfigError{Field: "connections." + name, Reason: "descriptor name does not match its key"}
		}
		if err := descriptor.Validate(); err != nil {
			return err
		}
	}

	return c.Policy.Validate()
}

func (c Config) Descriptor(name string) (ConnectionDescriptor, bool) {
	descriptor, ok := c.Connections[name]
	return descriptor, ok
}

func (c Config) ConnectionNames() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

type SanitizedConnection struct {
	Hostname              string `json:"hostname"`
	Port                  int    `json:"port"`
	Username              string `json:"username"`
	AuthMethod            string `json:"auth_method"`
	KeyPath               string `json:"key_path,omitempty"`
	Password              string `json:"password,omitempty"`
	PasswordRef           string `json:"password_ref,omitempty"`
	PassphraseRef         string `json:"passphrase_ref,omitempty"`
	KnownHosts            string `json:"known_hosts,omitempty"`
	InsecureIgnoreHostKey bool   `json:"insecure_ignore_host_key,omitempty"`
}

type SanitizedDefaults struct {
	Timeout            int      `json:"timeout"`
	MaxOutputSize      int      `json:"max_output_size"`
	AllowedCommands    []string `json:"allowed_commands"`
	StreamIdleTimeout  int      `json:"stream_idle_timeout"`
	ExitStatusTimeout  int      `json:"exit_status_timeout"`
	ExitStatusFallback string   `json:"exit_status_fallback"`
}

// SanitizedConfig is the configuration view handed to callers. Every
// credential field is replaced with RedactedValue.
type SanitizedConfig struct {
	Connections map[string]SanitizedConnection `json:"connections"`
	Defaults    SanitizedDefaults              `json:"defaults"`
}

func (c Config) Sanitized() SanitizedConfig {
	connections := make(map[string]SanitizedConnection, len(c.Connections))
	for name, d := range c.Connections {
		connections[name] = SanitizedConnection{
			Hostname:              d.Host,
			Port:                  d.Port,
			Username:              d.Username,
			AuthMethod:            string(d.AuthMethod),
			KeyPath:               d.CredentialRef.KeyPath,
			Password:              redact(d.CredentialRef.Password),
			PasswordRef:           redact(d.CredentialRef.PasswordRef),
			PassphraseRef:         redact(d.CredentialRef.PassphraseRef),
			KnownHosts:            d.KnownHostsPath,
			InsecureIgnoreHostKey: d.InsecureIgnoreHostKey,
		}
	}

	return SanitizedConfig{
		Connections: connections,
		Defaults: SanitizedDefaults{
			Timeout:            int(c.Policy.DefaultTimeout / time.Second),
			MaxOutputSize:      c.Policy.MaxOutputBytes,
			AllowedCommands:    append([]string(nil), c.Policy.AllowedCommands...),
			StreamIdleTimeout:  int(c.Policy.StreamIdleTimeout / time.Second),
			ExitStatusTimeout:  int(c.Policy.ExitStatusTimeout / time.Second),
			ExitStatusFallback: string(c.Policy.ExitStatusFallback),
		},
	}
}

func redact(value string) string {
	if value == "" {
		return ""
	}

	return RedactedValue
}
