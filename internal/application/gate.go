package application

import (
	"github.com/kballard/go-shellquote"

	"github.com/bnema/sshgw/internal/domain"
)

// ValidateCommand checks command against the allowlist. It never touches the
// network and is safe to call concurrently.
func ValidateCommand(command string, allowed []string) error {
	tokens, err := shellquote.Split(command)
	if err != nil {
		return &domain.PolicyViolation{
			Command: command,
			Reason:  domain.RejectInvalidFormat,
			Allowed: allowed,
			Err:     err,
		}
	}
	if len(tokens) == 0 {
		return &domain.PolicyViolation{
			Command: command,
			Reason:  domain.RejectEmptyCommand,
			Allowed: allowed,
		}
	}

	executable := tokens[0]
	for _, candidate := range allowed {
		if candidate == executable {
			return nil
		}
	}

	return &domain.PolicyViolation{
		Command:    command,
		Executable: executable,
		Reason:     domain.RejectNotAllowed,
		Allowed:    allowed,
	}
}
