package ports

import (
	"context"
	"time"

	"github.com/bnema/sshgw/internal/domain"
)

// Gateway is the contract the tool adapter and the CLI consume. Execute only
// returns an error for a policy violation; every other failure is reported in
// the result.
type Gateway interface {
	Execute(ctx context.Context, connection string, command string, timeout time.Duration) (domain.ExecutionResult, error)
	ListConnections() []string
	ListAllowedCommands() []string
	SanitizedConfig() domain.SanitizedConfig
	Reload(ctx context.Context) error
}

// ConfigLoader produces a validated configuration snapshot.
type ConfigLoader interface {
	Load(ctx context.Context) (domain.Config, error)
}
