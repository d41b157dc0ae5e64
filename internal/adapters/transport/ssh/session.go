package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	gossh "golang.org/x/crypto/ssh"

	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports"
)

var _ ports.Session = (*Session)(nil)

// Session is one authenticated client connection. Exec calls are serialised;
// each runs on its own channel.
type Session struct {
	client *gossh.Client
	logger zerolog.Logger

	execMu    sync.Mutex
	connected atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newSession(client *gossh.Client, logger zerolog.Logger) *Session {
	s := &Session{client: client, logger: logger}
	s.connected.Store(true)

	go func() {
		err := client.Wait()
		s.connected.Store(false)
		logger.Debug().Err(err).Msg("ssh connection closed")
	}()

	return s
}

func (s *Session) Connected() bool {
	return s.connected.Load()
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.connected.Store(false)
		if err := s.client.Close(); err != nil && !errors.Is(err, io.EOF) {
			s.closeErr = fmt.Errorf("close ssh client: %w", err)
		}
	})

	return s.closeErr
}

// Exec runs command on a new channel. Output is read until both streams end
// or go quiet for StreamIdleTimeout; the exit status is then awaited for
// ExitStatusTimeout. A local timeout closes the channel only, the remote
// process is left running.
func (s *Session) Exec(ctx context.Context, command string, opts ports.ExecOptions) (domain.ExecOutput, error) {
	s.execMu.Lock()
	defer s.execMu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.ExecOutput{}, err
	}
	if !s.Connected() {
		return domain.ExecOutput{}, domain.ErrSessionClosed
	}

	opts = withDefaults(opts)
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	channel, err := s.client.NewSession()
	if err != nil {
		var openErr *gossh.OpenChannelError
		if !errors.As(err, &openErr) {
			s.connected.Store(false)
		}
		return domain.ExecOutput{}, fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = channel.Close() }()

	stdoutPipe, err := channel.StdoutPipe()
	if err != nil {
		return domain.ExecOutput{}, fmt.Errorf("attach stdout: %w", err)
	}
	stderrPipe, err := channel.StderrPipe()
	if err != nil {
		return domain.ExecOutput{}, fmt.Errorf("attach stderr: %w", err)
	}

	if err := channel.Start(command); err != nil {
		return domain.ExecOutput{}, fmt.Errorf("start command: %w", err)
	}

	out := newCapture()
	streamsDone := out.start(stdoutPipe, stderrPipe)

	idle := time.NewTimer(opts.StreamIdleTimeout)
	defer idle.Stop()

reading:
	for {
		select {
		case <-streamsDone:
			break reading
		case <-out.activity:
			idle.Reset(opts.StreamIdleTimeout)
		case <-idle.C:
			s.logger.Debug().Dur("idle", opts.StreamIdleTimeout).Msg("output stream idle, waiting for exit status")
			break reading
		case <-ctx.Done():
			return domain.ExecOutput{}, interrupted(ctx, opts.Timeout)
		}
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- channel.Wait() }()

	probe := time.NewTimer(opts.ExitStatusTimeout)
	defer probe.Stop()

	select {
	case err := <-waitCh:
		select {
		case <-streamsDone:
		case <-ctx.Done():
			return domain.ExecOutput{}, interrupted(ctx, opts.Timeout)
		}
		stdout, stderr := out.snapshot()
		return s.classify(err, stdout, stderr, opts.ExitStatusFallback)
	case <-probe.C:
		stdout, stderr := out.snapshot()
		s.logger.Debug().Dur("probe", opts.ExitStatusTimeout).Msg("no exit status received")
		return fallback(stdout, stderr, opts.ExitStatusFallback), nil
	case <-ctx.Done():
		return domain.ExecOutput{}, interrupted(ctx, opts.Timeout)
	}
}

func (s *Session) classify(waitErr error, stdout, stderr string, mode domain.ExitStatusFallback) (domain.ExecOutput, error) {
	if waitErr == nil {
		return domain.ExecOutput{ExitCode: 0, Stdout: stdout, Stderr: stderr, ExitStatus: domain.ExitStatusReported}, nil
	}

	var exitErr *gossh.ExitError
	if errors.As(waitErr, &exitErr) {
		return domain.ExecOutput{ExitCode: exitErr.ExitStatus(), Stdout: stdout, Stderr: stderr, ExitStatus: domain.ExitStatusReported}, nil
	}

	var missingErr *gossh.ExitMissingError
	if errors.As(waitErr, &missingErr) {
		return fallback(stdout, stderr, mode), nil
	}

	return domain.ExecOutput{}, fmt.Errorf("wait for command: %w", waitErr)
}

func fallback(stdout, stderr string, mode domain.ExitStatusFallback) domain.ExecOutput {
	out := domain.ExecOutput{ExitCode: -1, Stdout: stdout, Stderr: stderr, ExitStatus: domain.ExitStatusUnknown}
	if mode != domain.ExitStatusFallbackHeuristic {
		return out
	}

	out.ExitStatus = domain.ExitStatusInferred
	if stdout != "" && stderr == "" {
		out.ExitCode = 0
	}

	return out
}

func interrupted(ctx context.Context, timeout time.Duration) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("command timed out after %s: %w", timeout, ctx.Err())
	}

	return fmt.Errorf("command interrupted: %w", ctx.Err())
}

func withDefaults(opts ports.ExecOptions) ports.ExecOptions {
	if opts.StreamIdleTimeout <= 0 {
		opts.StreamIdleTimeout = domain.DefaultStreamIdleTimeout
	}
	if opts.ExitStatusTimeout <= 0 {
		opts.ExitStatusTimeout = domain.DefaultExitStatusTimeout
	}
	if opts.ExitStatusFallback == "" {
		opts.ExitStatusFallback = domain.ExitStatusFallbackUnknown
	}

	return opts
}

type capture struct {
	mu       sync.Mutex
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	activity chan struct{}
}

func newCapture() *capture {
	return &capture{activity: make(chan struct{}, 1)}
}

func (c *capture) start(stdout, stderr io.Reader) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go c.drain(&wg, stdout, &c.stdout)
	go c.drain(&wg, stderr, &c.stderr)
	go func() {
		wg.Wait()
		close(done)
	}()

	return done
}

func (c *capture) drain(wg *sync.WaitGroup, r io.Reader, dst *bytes.Buffer) {
	defer wg.Done()

	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.mu.Lock()
			dst.Write(buf[:n])
			c.mu.Unlock()

			select {
			case c.activity <- struct{}{}:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}

func (c *capture) snapshot() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stdout.String(), c.stderr.String()
}
