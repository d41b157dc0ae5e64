package ports

import (
	"context"
	"time"

	"github.com/bnema/sshgw/internal/domain"
)

// Transport opens authenticated sessions to a single host.
type Transport interface {
	Connect(ctx context.Context, descriptor domain.ConnectionDescriptor, timeout time.Duration) (Session, error)
}

// Session is one live remote execution channel. Implementations serialise
// Exec calls; a session never runs two commands at once.
type Session interface {
	Exec(ctx context.Context, command string, opts ExecOptions) (domain.ExecOutput, error)
	Connected() bool
	Close() error
}

type ExecOptions struct {
	Timeout            time.Duration
	StreamIdleTimeout  time.Duration
	ExitStatusTimeout  time.Duration
	ExitStatusFallback domain.ExitStatusFallback
}

func ExecOptionsFromPolicy(policy domain.Policy, timeout time.Duration) ExecOptions {
	return ExecOptions{
		Timeout:            policy.EffectiveTimeout(timeout),
		StreamIdleTimeout:  policy.StreamIdleTimeout,
		ExitStatusTimeout:  policy.ExitStatusTimeout,
		ExitStatusFallback: policy.ExitStatusFallback,
	}
}
