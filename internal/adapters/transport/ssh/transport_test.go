package ssh

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports"
	"github.com/bnema/sshgw/internal/ports/mocks"
)

func passwordDescriptor(t *testing.T, server *testServer) domain.ConnectionDescriptor {
	t.Helper()

	return domain.ConnectionDescriptor{
		Name:                  "test",
		Host:                  "127.0.0.1",
		Port:                  server.port(t),
		Username:              testUser,
		AuthMethod:            domain.AuthMethodPassword,
		CredentialRef:         domain.CredentialRef{Password: testPassword},
		InsecureIgnoreHostKey: true,
	}
}

func connect(t *testing.T, server *testServer) ports.Session {
	t.Helper()

	session, err := New(nil).Connect(context.Background(), passwordDescriptor(t, server), 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func execOptions() ports.ExecOptions {
	return ports.ExecOptions{
		Timeout:            5 * time.Second,
		StreamIdleTimeout:  time.Second,
		ExitStatusTimeout:  time.Second,
		ExitStatusFallback: domain.ExitStatusFallbackUnknown,
	}
}

func writeClientKey(t *testing.T, passphrase string) (string, gossh.PublicKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var block *pem.Block
	if passphrase == "" {
		block, err = gossh.MarshalPrivateKey(priv, "")
	} else {
		block, err = gossh.MarshalPrivateKeyWithPassphrase(priv, "", []byte(passphrase))
	}
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	sshPub, err := gossh.NewPublicKey(pub)
	require.NoError(t, err)

	return path, sshPub
}

func TestExecReportsExitStatus(t *testing.T) {
	server := newTestServer(t, nil)
	session := connect(t, server)

	out, err := session.Exec(context.Background(), "echo hello", execOptions())
	require.NoError(t, err)
	assert.Equal(t, domain.ExecOutput{ExitCode: 0, Stdout: "hello\n", ExitStatus: domain.ExitStatusReported}, out)

	out, err = session.Exec(context.Background(), "fail", execOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "boom\n", out.Stderr)
	assert.Equal(t, domain.ExitStatusReported, out.ExitStatus)
	assert.True(t, session.Connected())
}

func TestExecMissingExitStatusFallback(t *testing.T) {
	server := newTestServer(t, nil)
	session := connect(t, server)

	tests := []struct {
		name     string
		command  string
		mode     domain.ExitStatusFallback
		wantCode int
		want     domain.ExitStatus
	}{
		{name: "unknown", command: "no-status", mode: domain.ExitStatusFallbackUnknown, wantCode: -1, want: domain.ExitStatusUnknown},
		{name: "heuristic stdout only", command: "no-status", mode: domain.ExitStatusFallbackHeuristic, wantCode: 0, want: domain.ExitStatusInferred},
		{name: "heuristic with stderr", command: "no-status-stderr", mode: domain.ExitStatusFallbackHeuristic, wantCode: -1, want: domain.ExitStatusInferred},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := execOptions()
			opts.ExitStatusFallback = tt.mode

			out, err := session.Exec(context.Background(), tt.command, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, out.ExitCode)
			assert.Equal(t, tt.want, out.ExitStatus)
			assert.Equal(t, "data\n", out.Stdout)
		})
	}
}

func TestExecIdleStreamKeepsPartialOutput(t *testing.T) {
	server := newTestServer(t, nil)
	session := connect(t, server)

	opts := execOptions()
	opts.StreamIdleTimeout = 100 * time.Millisecond
	opts.ExitStatusTimeout = 100 * time.Millisecond
	opts.ExitStatusFallback = domain.ExitStatusFallbackHeuristic

	start := time.Now()
	out, err := session.Exec(context.Background(), "stall", opts)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "partial\n", out.Stdout)
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, domain.ExitStatusInferred, out.ExitStatus)
}

func TestExecTimeoutLeavesSessionUsable(t *testing.T) {
	server := newTestServer(t, nil)
	session := connect(t, server)

	opts := execOptions()
	opts.Timeout = 200 * time.Millisecond

	_, err := session.Exec(context.Background(), "chatty", opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out after 200ms")
	assert.True(t, session.Connected())

	out, err := session.Exec(context.Background(), "echo hello", execOptions())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.Stdout)
}

func TestExecSerialisesConcurrentCalls(t *testing.T) {
	server := newTestServer(t, nil)
	session := connect(t, server)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := session.Exec(context.Background(), "echo hello", execOptions())
			assert.NoError(t, err)
			assert.Equal(t, "hello\n", out.Stdout)
		}()
	}
	wg.Wait()
}

func TestDroppedConnectionMarksSessionDisconnected(t *testing.T) {
	server := newTestServer(t, nil)
	session := connect(t, server)

	server.dropConnections()

	require.Eventually(t, func() bool { return !session.Connected() }, 2*time.Second, 10*time.Millisecond)
	_, err := session.Exec(context.Background(), "echo hello", execOptions())
	require.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestCloseIsIdempotent(t *testing.T) {
	server := newTestServer(t, nil)
	session := connect(t, server)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
	assert.False(t, session.Connected())

	_, err := session.Exec(context.Background(), "echo hello", execOptions())
	require.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestConnectPasswordFromSecretStore(t *testing.T) {
	server := newTestServer(t, nil)
	store := mocks.NewMockSecretStore(t)
	store.EXPECT().Get(mock.Anything, "hosts/test").Return(testPassword, nil).Once()

	descriptor := passwordDescriptor(t, server)
	descriptor.CredentialRef = domain.CredentialRef{PasswordRef: "hosts/test"}

	session, err := New(store).Connect(context.Background(), descriptor, 5*time.Second)
	require.NoError(t, err)
	defer session.Close()

	assert.True(t, session.Connected())
}

func TestConnectMissingSecretFails(t *testing.T) {
	store := mocks.NewMockSecretStore(t)
	store.EXPECT().Get(mock.Anything, "hosts/test").Return("", domain.ErrSecretNotFound).Once()

	descriptor := domain.ConnectionDescriptor{
		Name:          "test",
		Host:          "127.0.0.1",
		Port:          22,
		Username:      testUser,
		AuthMethod:    domain.AuthMethodPassword,
		CredentialRef: domain.CredentialRef{PasswordRef: "hosts/test"},
	}

	_, err := New(store).Connect(context.Background(), descriptor, time.Second)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestConnectWrongPasswordFails(t *testing.T) {
	server := newTestServer(t, nil)
	descriptor := passwordDescriptor(t, server)
	descriptor.CredentialRef.Password = "wrong"

	_, err := New(nil).Connect(context.Background(), descriptor, 5*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ssh handshake")
}

func TestConnectKeyAuthWithPassphrase(t *testing.T) {
	keyPath, pub := writeClientKey(t, "correct horse")
	server := newTestServer(t, pub)

	store := mocks.NewMockSecretStore(t)
	store.EXPECT().Get(mock.Anything, "keys/test").Return("correct horse", nil).Once()

	descriptor := domain.ConnectionDescriptor{
		Name:                  "test",
		Host:                  "127.0.0.1",
		Port:                  server.port(t),
		Username:              testUser,
		AuthMethod:            domain.AuthMethodKey,
		CredentialRef:         domain.CredentialRef{KeyPath: keyPath, PassphraseRef: "keys/test"},
		InsecureIgnoreHostKey: true,
	}

	session, err := New(store).Connect(context.Background(), descriptor, 5*time.Second)
	require.NoError(t, err)
	defer session.Close()

	out, err := session.Exec(context.Background(), "echo hello", execOptions())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.Stdout)
}

func TestConnectKeyPathExpandsHome(t *testing.T) {
	keyPath, pub := writeClientKey(t, "")
	server := newTestServer(t, pub)

	descriptor := domain.ConnectionDescriptor{
		Name:                  "test",
		Host:                  "127.0.0.1",
		Port:                  server.port(t),
		Username:              testUser,
		AuthMethod:            domain.AuthMethodKey,
		CredentialRef:         domain.CredentialRef{KeyPath: "~/" + filepath.Base(keyPath)},
		InsecureIgnoreHostKey: true,
	}

	transport := New(nil, WithHomeDir(func() (string, error) { return filepath.Dir(keyPath), nil }))
	session, err := transport.Connect(context.Background(), descriptor, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, session.Close())
}

func TestConnectVerifiesKnownHosts(t *testing.T) {
	server := newTestServer(t, nil)
	dir := t.TempDir()

	good := filepath.Join(dir, "known_hosts")
	require.NoError(t, os.WriteFile(good, []byte(knownhosts.Line([]string{server.addr()}, server.hostKey.PublicKey())+"\n"), 0o600))

	descriptor := passwordDescriptor(t, server)
	descriptor.InsecureIgnoreHostKey = false
	descriptor.KnownHostsPath = good

	session, err := New(nil).Connect(context.Background(), descriptor, 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, session.Close())

	_, otherKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	otherSigner, err := gossh.NewSignerFromKey(otherKey)
	require.NoError(t, err)
	bad := filepath.Join(dir, "known_hosts_bad")
	require.NoError(t, os.WriteFile(bad, []byte(knownhosts.Line([]string{server.addr()}, otherSigner.PublicKey())+"\n"), 0o600))

	descriptor.KnownHostsPath = bad
	_, err = New(nil).Connect(context.Background(), descriptor, 5*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key mismatch")
}

func TestConnectRefusedPort(t *testing.T) {
	server := newTestServer(t, nil)
	descriptor := passwordDescriptor(t, server)
	server.close()

	_, err := New(nil).Connect(context.Background(), descriptor, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial 127.0.0.1:")
}
