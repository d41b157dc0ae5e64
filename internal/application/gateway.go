package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports"
)

var (
	_ ports.Gateway = (*Gateway)(nil)

	ErrNoConfigLoader = errors.New("no config loader configured")
)

type gatewayOptions struct {
	clock   ports.Clock
	metrics ports.Metrics
	logger  zerolog.Logger
	newID   func() string
}

type GatewayOption func(*gatewayOptions)

func WithClock(clock ports.Clock) GatewayOption {
	return func(o *gatewayOptions) { o.clock = clock }
}

func WithMetrics(metrics ports.Metrics) GatewayOption {
	return func(o *gatewayOptions) { o.metrics = metrics }
}

func WithLogger(logger zerolog.Logger) GatewayOption {
	return func(o *gatewayOptions) { o.logger = logger }
}

func WithIDGenerator(newID func() string) GatewayOption {
	return func(o *gatewayOptions) { o.newID = newID }
}

// Gateway owns the pool and the published configuration snapshot. It is the
// single object the CLI and the tool adapter talk to.
type Gateway struct {
	loader   ports.ConfigLoader
	snapshot *Snapshot
	pool     *Pool
	executor *Executor
	clock    ports.Clock
	logger   zerolog.Logger

	reloadMu sync.Mutex
}

func NewGateway(cfg domain.Config, loader ports.ConfigLoader, transport ports.Transport, opts ...GatewayOption) *Gateway {
	o := gatewayOptions{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	clock := o.clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	snapshot := NewSnapshot(cfg)
	pool := NewPool(snapshot, transport,
		WithPoolClock(o.clock),
		WithPoolMetrics(o.metrics),
		WithPoolLogger(o.logger),
	)
	executor := NewExecutor(snapshot, pool,
		WithExecutorClock(o.clock),
		WithExecutorMetrics(o.metrics),
		WithExecutorLogger(o.logger),
		WithExecutionIDs(o.newID),
	)

	return &Gateway{
		loader:   loader,
		snapshot: snapshot,
		pool:     pool,
		executor: executor,
		clock:    clock,
		logger:   o.logger,
	}
}

func (g *Gateway) Execute(ctx context.Context, connection, command string, timeout time.Duration) (domain.ExecutionResult, error) {
	return g.executor.Execute(ctx, connection, command, timeout)
}

func (g *Gateway) ListConnections() []string {
	return g.snapshot.Load().ConnectionNames()
}

func (g *Gateway) ListAllowedCommands() []string {
	return append([]string(nil), g.snapshot.Policy().AllowedCommands...)
}

func (g *Gateway) SanitizedConfig() domain.SanitizedConfig {
	return g.snapshot.Load().Sanitized()
}

func (g *Gateway) Config() domain.Config {
	return g.snapshot.Load()
}

func (g *Gateway) Pool() *Pool {
	return g.pool
}

// Reload loads a fresh configuration, publishes it and closes pooled sessions
// whose connection changed or disappeared. A failed load keeps the old snapshot.
func (g *Gateway) Reload(ctx context.Context) error {
	if g.loader == nil {
		return ErrNoConfigLoader
	}

	g.reloadMu.Lock()
	defer g.reloadMu.Unlock()

	cfg, err := g.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}

	g.snapshot.Store(cfg)
	evicted := g.pool.EvictStale(cfg.Connections)
	g.logger.Info().
		Int("connections", len(cfg.Connections)).
		Strs("evicted", evicted).
		Msg("configuration reloaded")

	return nil
}

func (g *Gateway) SweepIdle(maxIdle time.Duration) []string {
	return g.pool.SweepIdle(maxIdle)
}

// RunSweeper evicts idle sessions every interval until ctx is done.
func (g *Gateway) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if evicted := g.pool.SweepIdle(maxIdle); len(evicted) > 0 {
				g.logger.Info().Strs("evicted", evicted).Dur("max_idle", maxIdle).Msg("idle sessions closed")
			}
		}
	}
}

// Close evicts every pooled session.
func (g *Gateway) Close() error {
	return g.pool.EvictAll()
}
