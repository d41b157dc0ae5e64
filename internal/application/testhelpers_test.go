package application

import (
	"sync"
	"time"

	"github.com/bnema/sshgw/internal/domain"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testDescriptor(name string) domain.ConnectionDescriptor {
	return domain.ConnectionDescriptor{
		Name:          name,
		Host:          name + ".internal",
		Port:          22,
		Username:      "deploy",
		AuthMethod:    domain.AuthMethodKey,
		CredentialRef: domain.CredentialRef{KeyPath: "~/.ssh/id_ed25519"},
	}
}

func testConfig(names ...string) domain.Config {
	connections := make(map[string]domain.ConnectionDescriptor, len(names))
	for _, name := range names {
		connections[name] = testDescriptor(name)
	}

	return domain.Config{
		Connections: connections,
		Policy:      domain.DefaultPolicy(),
		Server: domain.ServerSettings{
			Name:          domain.DefaultServerName,
			SweepInterval: domain.DefaultSweepInterval,
			MaxIdle:       domain.DefaultMaxIdle,
		},
	}
}
