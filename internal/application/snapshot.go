package application

import (
	"maps"
	"sync/atomic"
	"time"

	"github.com/bnema/sshgw/internal/domain"
)

// Snapshot publishes the current configuration. Readers never lock; a reload
// swaps the whole pointer and in-flight executions keep what they loaded.
type Snapshot struct {
	current atomic.Pointer[domain.Config]
}

func NewSnapshot(cfg domain.Config) *Snapshot {
	s := &Snapshot{}
	s.Store(cfg)
	return s
}

// Store publishes a private copy of cfg. Later writes to the caller's map or
// slices do not reach readers.
func (s *Snapshot) Store(cfg domain.Config) {
	cfg.Connections = maps.Clone(cfg.Connections)
	cfg.Policy.AllowedCommands = append([]string(nil), cfg.Policy.AllowedCommands...)
	s.current.Store(&cfg)
}

func (s *Snapshot) Load() domain.Config {
	cfg := s.current.Load()
	if cfg == nil {
		return domain.Config{Policy: domain.DefaultPolicy()}
	}

	out := *cfg
	out.Connections = maps.Clone(cfg.Connections)
	out.Policy.AllowedCommands = append([]string(nil), cfg.Policy.AllowedCommands...)
	return out
}

func (s *Snapshot) Policy() domain.Policy {
	return s.Load().Policy
}

func (s *Snapshot) Descriptor(name string) (domain.ConnectionDescriptor, bool) {
	cfg := s.current.Load()
	if cfg == nil {
		return domain.ConnectionDescriptor{}, false
	}

	return cfg.Descriptor(name)
}

func (s *Snapshot) ConnectTimeout() time.Duration {
	return s.Load().Policy.EffectiveConnectTimeout()
}
