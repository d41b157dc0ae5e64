package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConnectionNotFound = errors.New("connection not found")
	ErrPolicyViolation    = errors.New("policy violation")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrSecretNotFound     = errors.New("secret not found")
	ErrExitStatusUnknown  = errors.New("exit status unknown")
	ErrSessionClosed      = errors.New("session closed")
)

type RejectReason string

const (
	RejectInvalidFormat RejectReason = "invalid format"
	RejectEmptyCommand  RejectReason = "empty command"
	RejectNotAllowed    RejectReason = "not allowed"
)

// PolicyViolation is returned for a command that failed the allowlist or
// format check. It never reaches the network.
type PolicyViolation struct {
	Command    string
	Executable string
	Reason     RejectReason
	Allowed    []string
	Err        error
}

func (e *PolicyViolation) Error() string {
	switch e.Reason {
	case RejectNotAllowed:
		return fmt.Sprintf("command %q is not allowed. Allowed commands are: %s", e.Executable, strings.Join(e.Allowed, ", "))
	case RejectEmptyCommand:
		return "empty command"
	case RejectInvalidFormat:
		if e.Err != nil {
			return fmt.Sprintf("invalid command format: %v", e.Err)
		}
		return "invalid command format"
	default:
		return fmt.Sprintf("command rejected: %s", e.Reason)
	}
}

func (e *PolicyViolation) Is(target error) bool {
	return target == ErrPolicyViolation
}

func (e *PolicyViolation) Unwrap() error {
	return e.Err
}

// ConnectionError wraps an authentication or network failure raised while
// opening a session.
type ConnectionError struct {
	Name string
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s (%s): %v", e.Host, e.Name, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := "invalid configuration"
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Reason != "" {
		msg += " " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfigInvalid
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
