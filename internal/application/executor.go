package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports"
)

const (
	OutcomeRejected      = "rejected"
	OutcomeConnectFailed = "connect_failed"
	OutcomeExecFailed    = "exec_failed"
	OutcomeCompleted     = "completed"
	OutcomeStatusUnknown = "status_unknown"
)

type PolicySource interface {
	Policy() domain.Policy
}

// Executor runs one command end to end: gate, pool, session, output shaping.
// Only a policy violation is returned as an error; every other failure is
// folded into the result.
type Executor struct {
	policies PolicySource
	pool     *Pool
	clock    ports.Clock
	metrics  ports.Metrics
	logger   zerolog.Logger
	newID    func() string
}

type ExecutorOption func(*Executor)

func WithExecutorClock(clock ports.Clock) ExecutorOption {
	return func(e *Executor) {
		if clock != nil {
			e.clock = clock
		}
	}
}

func WithExecutorMetrics(metrics ports.Metrics) ExecutorOption {
	return func(e *Executor) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

func WithExecutorLogger(logger zerolog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

func WithExecutionIDs(newID func() string) ExecutorOption {
	return func(e *Executor) {
		if newID != nil {
			e.newID = newID
		}
	}
}

func NewExecutor(policies PolicySource, pool *Pool, opts ...ExecutorOption) *Executor {
	e := &Executor{
		policies: policies,
		pool:     pool,
		clock:    ports.SystemClock{},
		metrics:  ports.NopMetrics{},
		logger:   zerolog.Nop(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Executor) Execute(ctx context.Context, name, command string, timeout time.Duration) (domain.ExecutionResult, error) {
	policy := e.policies.Policy()
	start := e.clock.Now()
	id := e.newID()
	logger := e.logger.With().Str("execution_id", id).Str("connection", name).Logger()

	if err := ValidateCommand(command, policy.AllowedCommands); err != nil {
		e.finish(logger, name, OutcomeRejected, start).Err(err).Str("command", command).Msg("command rejected")
		return domain.ExecutionResult{}, err
	}

	session, err := e.pool.Acquire(ctx, name)
	if err != nil {
		e.finish(logger, name, OutcomeConnectFailed, start).Err(err).Msg("acquire session failed")
		return withID(domain.FailedResult(err.Error()), id), nil
	}

	out, err := session.Exec(ctx, command, ports.ExecOptionsFromPolicy(policy, timeout))
	if err != nil {
		if !session.Connected() {
			if evictErr := e.pool.EvictSession(name, session); evictErr != nil {
				logger.Debug().Err(evictErr).Msg("evict broken session")
			}
		}
		e.finish(logger, name, OutcomeExecFailed, start).Err(err).Msg("command execution failed")
		return withID(domain.FailedResult(fmt.Sprintf("command execution failed: %v", err)), id), nil
	}

	stdout, stdoutTruncated := domain.Truncate(out.Stdout, policy.MaxOutputBytes)
	stderr, stderrTruncated := domain.Truncate(out.Stderr, policy.MaxOutputBytes)

	var result domain.ExecutionResult
	outcome := OutcomeCompleted
	if out.ExitStatus == domain.ExitStatusUnknown {
		outcome = OutcomeStatusUnknown
		result = domain.FailedResult(fmt.Sprintf("%v: no exit status within %s", domain.ErrExitStatusUnknown, policy.ExitStatusTimeout))
		result.Stdout = stdout
		result.Stderr = stderr
	} else {
		result = domain.CompletedResult(out.ExitCode, stdout, stderr)
	}
	result.StdoutTruncated = stdoutTruncated
	result.StderrTruncated = stderrTruncated

	e.finish(logger, name, outcome, start).
		Int("exit_code", result.ExitCode).
		Str("exit_status", string(out.ExitStatus)).
		Bool("truncated", stdoutTruncated || stderrTruncated).
		Msg("command finished")

	return withID(result, id), nil
}

func (e *Executor) finish(logger zerolog.Logger, name, outcome string, start time.Time) *zerolog.Event {
	duration := e.clock.Now().Sub(start)
	e.metrics.ObserveExecution(name, outcome, duration)

	event := logger.Info()
	switch outcome {
	case OutcomeRejected:
		event = logger.Warn()
	case OutcomeConnectFailed, OutcomeExecFailed:
		event = logger.Error()
	}

	return event.Str("outcome", outcome).Dur("duration", duration)
}

func withID(result domain.ExecutionResult, id string) domain.ExecutionResult {
	result.ExecutionID = id
	return result
}

// IsPolicyViolation reports whether err came from the command gate.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, domain.ErrPolicyViolation)
}
