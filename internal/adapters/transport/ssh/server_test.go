package ssh

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	gossh "golang.org/x/crypto/ssh"
)

const (
	testUser     = "deploy"
	testPassword = "s3cret"
)

// testServer is a minimal in-process sshd that understands "exec" requests.
type testServer struct {
	listener   net.Listener
	config     *gossh.ServerConfig
	hostKey    gossh.Signer
	authorized gossh.PublicKey
	stop       chan struct{}
	stopOnce   sync.Once

	mu    sync.Mutex
	conns []net.Conn
}

func newTestServer(t *testing.T, authorized gossh.PublicKey) *testServer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	hostKey, err := gossh.NewSignerFromKey(priv)
	require.NoError(t, err)

	s := &testServer{hostKey: hostKey, authorized: authorized, stop: make(chan struct{})}
	s.config = &gossh.ServerConfig{
		PasswordCallback: func(meta gossh.ConnMetadata, password []byte) (*gossh.Permissions, error) {
			if meta.User() == testUser && string(password) == testPassword {
				return nil, nil
			}
			return nil, errors.New("access denied")
		},
		PublicKeyCallback: func(meta gossh.ConnMetadata, key gossh.PublicKey) (*gossh.Permissions, error) {
			if s.authorized != nil && meta.User() == testUser && bytes.Equal(key.Marshal(), s.authorized.Marshal()) {
				return nil, nil
			}
			return nil, errors.New("unknown key")
		},
	}
	s.config.AddHostKey(hostKey)

	s.listener, err = net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go s.serve()
	t.Cleanup(s.close)

	return s
}

func (s *testServer) addr() string {
	return s.listener.Addr().String()
}

func (s *testServer) port(t *testing.T) int {
	t.Helper()

	_, raw, err := net.SplitHostPort(s.addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(raw)
	require.NoError(t, err)

	return port
}

func (s *testServer) close() {
	s.stopOnce.Do(func() { close(s.stop) })
	_ = s.listener.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
}

func (s *testServer) dropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
}

func (s *testServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		go s.handleConn(conn)
	}
}

func (s *testServer) handleConn(conn net.Conn) {
	_, chans, reqs, err := gossh.NewServerConn(conn, s.config)
	if err != nil {
		_ = conn.Close()
		return
	}
	go gossh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(gossh.UnknownChannelType, "unsupported channel type")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}

		go func() {
			for req := range requests {
				if req.Type != "exec" {
					_ = req.Reply(false, nil)
					continue
				}

				var payload struct{ Command string }
				if err := gossh.Unmarshal(req.Payload, &payload); err != nil {
					_ = req.Reply(false, nil)
					continue
				}
				_ = req.Reply(true, nil)
				go s.run(payload.Command, channel)
			}
		}()
	}
}

func (s *testServer) run(command string, channel gossh.Channel) {
	defer func() { _ = channel.Close() }()

	switch command {
	case "echo hello":
		_, _ = channel.Write([]byte("hello\n"))
		sendExitStatus(channel, 0)
	case "fail":
		_, _ = channel.Stderr().Write([]byte("boom\n"))
		sendExitStatus(channel, 3)
	case "no-status":
		_, _ = channel.Write([]byte("data\n"))
	case "no-status-stderr":
		_, _ = channel.Write([]byte("data\n"))
		_, _ = channel.Stderr().Write([]byte("warn\n"))
	case "stall":
		_, _ = channel.Write([]byte("partial\n"))
		select {
		case <-s.stop:
		case <-time.After(3 * time.Second):
		}
	case "chatty":
		for {
			if _, err := channel.Write([]byte("tick\n")); err != nil {
				return
			}
			select {
			case <-s.stop:
				return
			case <-time.After(20 * time.Millisecond):
			}
		}
	default:
		_, _ = channel.Stderr().Write([]byte(command + ": command not found\n"))
		sendExitStatus(channel, 127)
	}
}

func sendExitStatus(channel gossh.Channel, code uint32) {
	_, _ = channel.SendRequest("exit-status", false, gossh.Marshal(struct{ Status uint32 }{code}))
}
