package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports"
)

var _ ports.Transport = (*Transport)(nil)

// Transport dials x/crypto/ssh clients. Each Connect returns one client
// connection wrapped as a Session; commands run on fresh channels of it.
type Transport struct {
	secrets ports.SecretStore
	logger  zerolog.Logger
	homeDir func() (string, error)
}

type Option func(*Transport)

func WithLogger(logger zerolog.Logger) Option {
	return func(t *Transport) {
		t.logger = logger
	}
}

func WithHomeDir(homeDir func() (string, error)) Option {
	return func(t *Transport) {
		if homeDir != nil {
			t.homeDir = homeDir
		}
	}
}

func New(secrets ports.SecretStore, opts ...Option) *Transport {
	t := &Transport{
		secrets: secrets,
		logger:  zerolog.Nop(),
		homeDir: os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *Transport) Connect(ctx context.Context, descriptor domain.ConnectionDescriptor, timeout time.Duration) (ports.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	config, err := t.clientConfig(ctx, descriptor, timeout)
	if err != nil {
		return nil, err
	}

	address := descriptor.Address()
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}
	clientConn, chans, reqs, err := gossh.NewClientConn(conn, address, config)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", address, err)
	}
	_ = conn.SetDeadline(time.Time{})

	t.logger.Debug().Str("connection", descriptor.Name).Str("target", descriptor.String()).Msg("ssh client connected")

	return newSession(gossh.NewClient(clientConn, chans, reqs), t.logger.With().Str("connection", descriptor.Name).Logger()), nil
}

func (t *Transport) clientConfig(ctx context.Context, descriptor domain.ConnectionDescriptor, timeout time.Duration) (*gossh.ClientConfig, error) {
	auth, err := t.authMethods(ctx, descriptor)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := t.hostKeyCallback(descriptor)
	if err != nil {
		return nil, err
	}

	return &gossh.ClientConfig{
		User:            descriptor.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, nil
}

func (t *Transport) authMethods(ctx context.Context, descriptor domain.ConnectionDescriptor) ([]gossh.AuthMethod, error) {
	switch descriptor.AuthMethod {
	case domain.AuthMethodPassword:
		password, err := t.password(ctx, descriptor.CredentialRef)
		if err != nil {
			return nil, err
		}
		return []gossh.AuthMethod{
			gossh.Password(password),
			gossh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		}, nil
	case domain.AuthMethodKey:
		signer, err := t.signer(ctx, descriptor.CredentialRef)
		if err != nil {
			return nil, err
		}
		return []gossh.AuthMethod{gossh.PublicKeys(signer)}, nil
	default:
		return nil, fmt.Errorf("unsupported auth method %q", descriptor.AuthMethod)
	}
}

func (t *Transport) password(ctx context.Context, ref domain.CredentialRef) (string, error) {
	if ref.Password != "" {
		return ref.Password, nil
	}

	return t.secret(ctx, ref.PasswordRef)
}

func (t *Transport) signer(ctx context.Context, ref domain.CredentialRef) (gossh.Signer, error) {
	path, err := t.expandHome(ref.KeyPath)
	if err != nil {
		return nil, err
	}

	privateKey, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	if ref.PassphraseRef != "" {
		passphrase, err := t.secret(ctx, ref.PassphraseRef)
		if err != nil {
			return nil, err
		}
		signer, err := gossh.ParsePrivateKeyWithPassphrase(privateKey, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("parse private key %s: %w", path, err)
		}
		return signer, nil
	}

	signer, err := gossh.ParsePrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("parse private key %s: %w", path, err)
	}

	return signer, nil
}

func (t *Transport) secret(ctx context.Context, key string) (string, error) {
	if t.secrets == nil {
		return "", fmt.Errorf("resolve secret %q: no secret store configured", key)
	}

	value, err := t.secrets.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("resolve secret %q: %w", key, err)
	}

	return value, nil
}

func (t *Transport) hostKeyCallback(descriptor domain.ConnectionDescriptor) (gossh.HostKeyCallback, error) {
	if descriptor.InsecureIgnoreHostKey {
		return gossh.InsecureIgnoreHostKey(), nil
	}

	path := strings.TrimSpace(descriptor.KnownHostsPath)
	if path == "" {
		path = "~/.ssh/known_hosts"
	}
	path, err := t.expandHome(path)
	if err != nil {
		return nil, err
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known hosts %s: %w", path, err)
	}

	return callback, nil
}

func (t *Transport) expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := t.homeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
