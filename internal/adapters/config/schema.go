package config

import (
	"fmt"

	"github.com/bnema/sshgw/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version     int                         `toml:"version" yaml:"version"`
	Connections map[string]connectionSchema `toml:"connections" yaml:"connections"`
	Defaults    defaultsSchema              `toml:"defaults" yaml:"defaults"`
	Server      serverSchema                `toml:"server" yaml:"server"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return &domain.ConfigError{
			Field:  "version",
			Reason: fmt.Sprintf("unsupported schema version %d (current %d)", s.Version, currentSchemaVersion),
		}
	}

	return nil
}

type connectionSchema struct {
	Hostname              string `toml:"hostname" yaml:"hostname"`
	Port                  int    `toml:"port,omitempty" yaml:"port,omitempty"`
	Username              string `toml:"username" yaml:"username"`
	AuthMethod            string `toml:"auth_method" yaml:"auth_method"`
	KeyPath               string `toml:"key_path,omitempty" yaml:"key_path,omitempty"`
	PassphraseRef         string `toml:"passphrase_ref,omitempty" yaml:"passphrase_ref,omitempty"`
	Password              string `toml:"password,omitempty" yaml:"password,omitempty"`
	PasswordRef           string `toml:"password_ref,omitempty" yaml:"password_ref,omitempty"`
	KnownHosts            string `toml:"known_hosts,omitempty" yaml:"known_hosts,omitempty"`
	InsecureIgnoreHostKey bool   `toml:"insecure_ignore_host_key,omitempty" yaml:"insecure_ignore_host_key,omitempty"`
}

// Durations are whole seconds. Nil pointers mean the key was absent.
type defaultsSchema struct {
	Timeout            *int     `toml:"timeout,omitempty" yaml:"timeout,omitempty"`
	ConnectTimeout     *int     `toml:"connect_timeout,omitempty" yaml:"connect_timeout,omitempty"`
	MaxOutputSize      *int     `toml:"max_output_size,omitempty" yaml:"max_output_size,omitempty"`
	AllowedCommands    []string `toml:"allowed_commands" yaml:"allowed_commands"`
	StreamIdleTimeout  *int     `toml:"stream_idle_timeout,omitempty" yaml:"stream_idle_timeout,omitempty"`
	ExitStatusTimeout  *int     `toml:"exit_status_timeout,omitempty" yaml:"exit_status_timeout,omitempty"`
	ExitStatusFallback string   `toml:"exit_status_fallback,omitempty" yaml:"exit_status_fallback,omitempty"`
}

type serverSchema struct {
	Name          string `toml:"name,omitempty" yaml:"name,omitempty"`
	MetricsAddr   string `toml:"metrics_addr" yaml:"metrics_addr"`
	SweepInterval int    `toml:"sweep_interval,omitempty" yaml:"sweep_interval,omitempty"`
	MaxIdle       int    `toml:"max_idle,omitempty" yaml:"max_idle,omitempty"`
}

func intPtr(v int) *int {
	return &v
}

// defaultSchema is the document written by init.
func defaultSchema() fileSchema {
	policy := domain.DefaultPolicy()

	return fileSchema{
		Version: currentSchemaVersion,
		Connections: map[string]connectionSchema{
			"example": {
				Hostname:   "example.com",
				Port:       domain.DefaultSSHPort,
				Username:   "user",
				AuthMethod: string(domain.AuthMethodKey),
				KeyPath:    defaultKeyPath,
			},
		},
		Defaults: defaultsSchema{
			Timeout:            intPtr(seconds(policy.DefaultTimeout)),
			MaxOutputSize:      intPtr(policy.MaxOutputBytes),
			AllowedCommands:    policy.AllowedCommands,
			StreamIdleTimeout:  intPtr(seconds(policy.StreamIdleTimeout)),
			ExitStatusTimeout:  intPtr(seconds(policy.ExitStatusTimeout)),
			ExitStatusFallback: string(policy.ExitStatusFallback),
		},
		Server: serverSchema{
			Name:          domain.DefaultServerName,
			SweepInterval: seconds(domain.DefaultSweepInterval),
			MaxIdle:       seconds(domain.DefaultMaxIdle),
		},
	}
}
