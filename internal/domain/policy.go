package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	DefaultTimeout           = 30 * time.Second
	DefaultMaxOutputBytes    = 1 << 20
	DefaultStreamIdleTimeout = 5 * time.Second
	DefaultExitStatusTimeout = 2 * time.Second
)

// ExitStatusFallback decides what a session reports when the remote never
// delivered an exit status within the probe timeout.
type ExitStatusFallback string

const (
	ExitStatusFallbackUnknown   ExitStatusFallback = "unknown"
	ExitStatusFallbackHeuristic ExitStatusFallback = "heuristic"
)

type Policy struct {
	AllowedCommands    []string
	DefaultTimeout     time.Duration
	MaxOutputBytes     int
	ConnectTimeout     time.Duration
	StreamIdleTimeout  time.Duration
	ExitStatusTimeout  time.Duration
	ExitStatusFallback ExitStatusFallback
}

func DefaultAllowedCommands() []string {
	return []string{"ls", "cat", "grep", "find", "ps", "top", "df", "du", "free"}
}

func DefaultPolicy() Policy {
	return Policy{
		AllowedCommands:    DefaultAllowedCommands(),
		DefaultTimeout:     DefaultTimeout,
		MaxOutputBytes:     DefaultMaxOutputBytes,
		ConnectTimeout:     DefaultTimeout,
		StreamIdleTimeout:  DefaultStreamIdleTimeout,
		ExitStatusTimeout:  DefaultExitStatusTimeout,
		ExitStatusFallback: ExitStatusFallbackUnknown,
	}
}

func (p Policy) Validate() error {
	if p.DefaultTimeout <= 0 {
		return &ConfigError{Field: "defaults.timeout", Reason: "must be positive"}
	}
	if p.MaxOutputBytes <= 0 {
		return &ConfigError{Field: "defaults.max_output_size", Reason: "must be positive"}
	}
	if p.StreamIdleTimeout <= 0 {
		return &ConfigError{Field: "defaults.stream_idle_timeout", Reason: "must be positive"}
	}
	if p.ExitStatusTimeout <= 0 {
		return &ConfigError{Field: "defaults.exit_status_timeout", Reason: "must be positive"}
	}
	switch p.ExitStatusFallback {
	case ExitStatusFallbackUnknown, ExitStatusFallbackHeuristic:
	default:
		return &ConfigError{Field: "defaults.exit_status_fallback", Reason: fmt.Sprintf("unsupported value %q", p.ExitStatusFallback)}
	}
	for _, command := range p.AllowedCommands {
		if strings.TrimSpace(command) == "" {
			return &ConfigError{Field: "defaults.allowed_commands", Reason: "entries must not be empty"}
		}
	}

	return nil
}

func (p *Policy) NormalizeAllowedCommands() {
	if p == nil {
		return
	}

	commands := make([]string, 0, len(p.AllowedCommands))
	seen := make(map[string]struct{}, len(p.AllowedCommands))
	for _, command := range p.AllowedCommands {
		trimmed := strings.TrimSpace(command)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		commands = append(commands, trimmed)
	}

	p.AllowedCommands = commands
}

func (p Policy) Allows(executable string) bool {
	return slices.Contains(p.AllowedCommands, executable)
}

// EffectiveTimeout returns requested when it is set, the policy default otherwise.
func (p Policy) EffectiveTimeout(requested time.Duration) time.Duration {
	if requested > 0 {
		return requested
	}

	return p.DefaultTimeout
}

func (p Policy) EffectiveConnectTimeout() time.Duration {
	if p.ConnectTimeout > 0 {
		return p.ConnectTimeout
	}

	return p.DefaultTimeout
}
