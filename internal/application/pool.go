package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports"
)

const (
	EvictReasonExplicit = "explicit"
	EvictReasonIdle     = "idle"
	EvictReasonStale    = "stale"
	EvictReasonBroken   = "broken"
	EvictReasonShutdown = "shutdown"
)

// DescriptorSource resolves a connection name against the current configuration.
type DescriptorSource interface {
	Descriptor(name string) (domain.ConnectionDescriptor, bool)
	ConnectTimeout() time.Duration
}

type poolEntry struct {
	descriptor domain.ConnectionDescriptor
	session    ports.Session
	lastUsedAt time.Time
}

var errSessionSuperseded = errors.New("pool was reset while connecting")

// Pool keeps at most one live session per connection name. The mutex guards
// the map only; connects run outside it and are deduplicated per name.
type Pool struct {
	mu         sync.Mutex
	entries    map[string]*poolEntry
	generation uint64
	connects   singleflight.Group

	source    DescriptorSource
	transport ports.Transport
	clock     ports.Clock
	metrics   ports.Metrics
	logger    zerolog.Logger
}

type PoolOption func(*Pool)

func WithPoolClock(clock ports.Clock) PoolOption {
	return func(p *Pool) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func WithPoolMetrics(metrics ports.Metrics) PoolOption {
	return func(p *Pool) {
		if metrics != nil {
			p.metrics = metrics
		}
	}
}

func WithPoolLogger(logger zerolog.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logger
	}
}

func NewPool(source DescriptorSource, transport ports.Transport, opts ...PoolOption) *Pool {
	p := &Pool{
		entries:   make(map[string]*poolEntry),
		source:    source,
		transport: transport,
		clock:     ports.SystemClock{},
		metrics:   ports.NopMetrics{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Acquire returns the live session for name, connecting on first use. The
// pool mutex is not held while connecting; concurrent acquires for the same
// name share one connect, and a waiter whose ctx ends stops waiting without
// cancelling it.
func (p *Pool) Acquire(ctx context.Context, name string) (ports.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if session, ok := p.lookup(name); ok {
		return session, nil
	}

	results := p.connects.DoChan(name, func() (any, error) {
		return p.connect(context.WithoutCancel(ctx), name)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(ports.Session), nil
	}
}

// lookup returns the pooled session for name when it is still connected and
// drops it when it is not.
func (p *Pool) lookup(name string) (ports.Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[name]
	if !ok {
		return nil, false
	}
	if entry.session.Connected() {
		entry.lastUsedAt = p.clock.Now()
		return entry.session, true
	}

	p.logger.Debug().Str("connection", name).Msg("replacing disconnected session")
	if err := p.closeEntryLocked(name, entry, EvictReasonBroken); err != nil {
		p.logger.Debug().Err(err).Str("connection", name).Msg("close disconnected session")
	}

	return nil, false
}

func (p *Pool) connect(ctx context.Context, name string) (ports.Session, error) {
	// A flight that finished just before this one started may have registered
	// a session already.
	if session, ok := p.lookup(name); ok {
		return session, nil
	}

	descriptor, ok := p.source.Descriptor(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConnectionNotFound, name)
	}

	p.mu.Lock()
	generation := p.generation
	p.mu.Unlock()

	session, err := p.transport.Connect(ctx, descriptor, p.source.ConnectTimeout())
	if err != nil {
		p.metrics.ObserveConnect(name, "error")
		p.logger.Warn().Err(err).Str("connection", name).Str("host", descriptor.Host).Msg("connect failed")

		var connErr *domain.ConnectionError
		if errors.As(err, &connErr) {
			return nil, err
		}
		return nil, &domain.ConnectionError{Name: name, Host: descriptor.Host, Err: err}
	}
	p.metrics.ObserveConnect(name, "ok")

	p.mu.Lock()
	defer p.mu.Unlock()

	current, ok := p.source.Descriptor(name)
	if p.generation != generation || !ok || current != descriptor {
		// The pool was emptied or the connection reconfigured while dialing.
		if closeErr := session.Close(); closeErr != nil {
			p.logger.Debug().Err(closeErr).Str("connection", name).Msg("close superseded session")
		}
		return nil, &domain.ConnectionError{Name: name, Host: descriptor.Host, Err: errSessionSuperseded}
	}

	p.entries[name] = &poolEntry{
		descriptor: descriptor,
		session:    session,
		lastUsedAt: p.clock.Now(),
	}
	p.metrics.SetPooledSessions(len(p.entries))
	p.logger.Info().Str("connection", name).Str("target", descriptor.String()).Msg("session opened")

	return session, nil
}

// Evict closes and forgets the session for name. Unknown names are a no-op.
func (p *Pool) Evict(name string) error {
	return p.evict(name, EvictReasonExplicit)
}

// EvictSession drops name only when it still maps to session, so a caller
// holding a broken session cannot close its replacement.
func (p *Pool) EvictSession(name string, session ports.Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[name]
	if !ok || entry.session != session {
		return nil
	}

	return p.closeEntryLocked(name, entry, EvictReasonBroken)
}

func (p *Pool) evict(name, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[name]
	if !ok {
		return nil
	}

	return p.closeEntryLocked(name, entry, reason)
}

// EvictAll closes every pooled session. Close errors are joined.
func (p *Pool) EvictAll() error {
	p.mu.Lock()
	entries := p.entries
	p.entries = make(map[string]*poolEntry)
	p.generation++
	p.metrics.SetPooledSessions(0)
	p.mu.Unlock()

	var g errgroup.Group
	errs := make([]error, 0, len(entries))
	var errMu sync.Mutex
	for name, entry := range entries {
		g.Go(func() error {
			p.metrics.ObserveEviction(EvictReasonShutdown)
			if err := entry.session.Close(); err != nil {
				errMu.Lock()
				errs = append(errs, fmt.Errorf("close session %s: %w", name, err))
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// SweepIdle evicts sessions unused for strictly longer than maxIdle and
// returns their names in sorted order.
func (p *Pool) SweepIdle(maxIdle time.Duration) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.clock.Now()
	evicted := make([]string, 0)
	for name, entry := range p.entries {
		if now.Sub(entry.lastUsedAt) > maxIdle {
			evicted = append(evicted, name)
		}
	}
	sort.Strings(evicted)

	for _, name := range evicted {
		if err := p.closeEntryLocked(name, p.entries[name], EvictReasonIdle); err != nil {
			p.logger.Warn().Err(err).Str("connection", name).Msg("close idle session")
		}
	}

	return evicted
}

// EvictStale drops sessions whose descriptor no longer matches current,
// including connections that were removed.
func (p *Pool) EvictStale(current map[string]domain.ConnectionDescriptor) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	evicted := make([]string, 0)
	for name, entry := range p.entries {
		descriptor, ok := current[name]
		if !ok || descriptor != entry.descriptor {
			evicted = append(evicted, name)
		}
	}
	sort.Strings(evicted)

	for _, name := range evicted {
		if err := p.closeEntryLocked(name, p.entries[name], EvictReasonStale); err != nil {
			p.logger.Warn().Err(err).Str("connection", name).Msg("close stale session")
		}
	}

	return evicted
}

func (p *Pool) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.entries))
	for name := range p.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (p *Pool) Has(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.entries[name]
	return ok
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.entries)
}

func (p *Pool) closeEntryLocked(name string, entry *poolEntry, reason string) error {
	delete(p.entries, name)
	p.metrics.ObserveEviction(reason)
	p.metrics.SetPooledSessions(len(p.entries))
	p.logger.Debug().Str("connection", name).Str("reason", reason).Msg("session evicted")

	if err := entry.session.Close(); err != nil {
		return fmt.Errorf("close session %s: %w", name, err)
	}

	return nil
}
