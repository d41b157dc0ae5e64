package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sshgw/internal/domain"
	"github.com/bnema/sshgw/internal/ports/mocks"
)

func TestPoolAcquireReusesConnectedSession(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	transport := mocks.NewMockTransport(t)
	session := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("web-1")), transport, WithPoolClock(clock))

	transport.EXPECT().Connect(mock.Anything, testDescriptor("web-1"), domain.DefaultTimeout).Return(session, nil).Once()
	session.EXPECT().Connected().Return(true)

	first, err := pool.Acquire(context.Background(), "web-1")
	require.NoError(t, err)
	second, err := pool.Acquire(context.Background(), "web-1")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, pool.Len())
	assert.Equal(t, []string{"web-1"}, pool.Names())
}

func TestPoolAcquireUnknownNameNeverConnects(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	pool := NewPool(NewSnapshot(testConfig("web-1")), transport)

	_, err := pool.Acquire(context.Background(), "db-9")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConnectionNotFound)
	transport.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything, mock.Anything)
	assert.Zero(t, pool.Len())
}

func TestPoolAcquireWrapsConnectFailure(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	pool := NewPool(NewSnapshot(testConfig("web-1")), transport)
	dialErr := errors.New("dial tcp: connection refused")

	transport.EXPECT().Connect(mock.Anything, mock.Anything, mock.Anything).Return(nil, dialErr).Once()

	_, err := pool.Acquire(context.Background(), "web-1")
	require.Error(t, err)

	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "web-1", connErr.Name)
	assert.Equal(t, "web-1.internal", connErr.Host)
	assert.ErrorIs(t, err, dialErr)
	assert.Zero(t, pool.Len())
}

func TestPoolAcquireReplacesDisconnectedSession(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	stale := mocks.NewMockSession(t)
	fresh := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("web-1")), transport)

	transport.EXPECT().Connect(mock.Anything, mock.Anything, mock.Anything).Return(stale, nil).Once()
	_, err := pool.Acquire(context.Background(), "web-1")
	require.NoError(t, err)

	stale.EXPECT().Connected().Return(false).Once()
	stale.EXPECT().Close().Return(nil).Once()
	transport.EXPECT().Connect(mock.Anything, mock.Anything, mock.Anything).Return(fresh, nil).Once()

	got, err := pool.Acquire(context.Background(), "web-1")
	require.NoError(t, err)
	assert.Same(t, fresh, got)
	assert.Equal(t, 1, pool.Len())
}

func TestPoolAcquireHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	pool := NewPool(NewSnapshot(testConfig("web-1")), transport)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Acquire(ctx, "web-1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestPoolConcurrentAcquireConnectsOnce(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	session := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("web-1")), transport)

	transport.EXPECT().Connect(mock.Anything, mock.Anything, mock.Anything).
		Run(func(context.Context, domain.ConnectionDescriptor, time.Duration) {
			time.Sleep(20 * time.Millisecond)
		}).
		Return(session, nil).Once()
	session.EXPECT().Connected().Return(true).Maybe()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := pool.Acquire(context.Background(), "web-1")
			assert.NoError(t, err)
			assert.Same(t, session, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, pool.Len())
}

func TestPoolEvictIsIdempotent(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	session := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("web-1")), transport)

	transport.EXPECT().Connect(mock.Anything, mock.Anything, mock.Anything).Return(session, nil).Once()
	session.EXPECT().Close().Return(nil).Once()

	_, err := pool.Acquire(context.Background(), "web-1")
	require.NoError(t, err)

	require.NoError(t, pool.Evict("web-1"))
	require.NoError(t, pool.Evict("web-1"))
	require.NoError(t, pool.Evict("never-seen"))
	assert.Zero(t, pool.Len())
}

func TestPoolEvictSessionIgnoresReplacedSession(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	current := mocks.NewMockSession(t)
	other := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("web-1")), transport)

	transport.EXPECT().Connect(mock.Anything, mock.Anything, mock.Anything).Return(current, nil).Once()
	_, err := pool.Acquire(context.Background(), "web-1")
	require.NoError(t, err)

	require.NoError(t, pool.EvictSession("web-1", other))
	assert.Equal(t, 1, pool.Len())

	current.EXPECT().Close().Return(nil).Once()
	require.NoError(t, pool.EvictSession("web-1", current))
	assert.Zero(t, pool.Len())
}

func TestPoolSweepIdleUsesStrictBoundary(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	transport := mocks.NewMockTransport(t)
	idle := mocks.NewMockSession(t)
	boundary := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("idle", "boundary")), transport, WithPoolClock(clock))

	transport.EXPECT().Connect(mock.Anything, testDescriptor("idle"), mock.Anything).Return(idle, nil).Once()
	transport.EXPECT().Connect(mock.Anything, testDescriptor("boundary"), mock.Anything).Return(boundary, nil).Once()

	_, err := pool.Acquire(context.Background(), "idle")
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = pool.Acquire(context.Background(), "boundary")
	require.NoError(t, err)

	// idle was last used 61s ago, boundary exactly 60s ago.
	clock.Advance(60 * time.Second)
	idle.EXPECT().Close().Return(nil).Once()

	evicted := pool.SweepIdle(60 * time.Second)
	assert.Equal(t, []string{"idle"}, evicted)
	assert.Equal(t, []string{"boundary"}, pool.Names())
}

func TestPoolSweepIdleWithNothingIdle(t *testing.T) {
	t.Parallel()

	pool := NewPool(NewSnapshot(testConfig()), mocks.NewMockTransport(t))
	assert.Empty(t, pool.SweepIdle(time.Second))
}

func TestPoolEvictStaleDropsChangedAndRemovedConnections(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	keep := mocks.NewMockSession(t)
	changed := mocks.NewMockSession(t)
	removed := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("keep", "changed", "removed")), transport)

	transport.EXPECT().Connect(mock.Anything, testDescriptor("keep"), mock.Anything).Return(keep, nil).Once()
	transport.EXPECT().Connect(mock.Anything, testDescriptor("changed"), mock.Anything).Return(changed, nil).Once()
	transport.EXPECT().Connect(mock.Anything, testDescriptor("removed"), mock.Anything).Return(removed, nil).Once()
	for _, name := range []string{"keep", "changed", "removed"} {
		_, err := pool.Acquire(context.Background(), name)
		require.NoError(t, err)
	}

	changedDescriptor := testDescriptor("changed")
	changedDescriptor.Port = 2222
	changed.EXPECT().Close().Return(nil).Once()
	removed.EXPECT().Close().Return(nil).Once()

	evicted := pool.EvictStale(map[string]domain.ConnectionDescriptor{
		"keep":    testDescriptor("keep"),
		"changed": changedDescriptor,
	})

	assert.Equal(t, []string{"changed", "removed"}, evicted)
	assert.Equal(t, []string{"keep"}, pool.Names())
}

func TestPoolEvictAllJoinsCloseErrors(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	a := mocks.NewMockSession(t)
	b := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("a", "b")), transport)

	transport.EXPECT().Connect(mock.Anything, testDescriptor("a"), mock.Anything).Return(a, nil).Once()
	transport.EXPECT().Connect(mock.Anything, testDescriptor("b"), mock.Anything).Return(b, nil).Once()
	_, err := pool.Acquire(context.Background(), "a")
	require.NoError(t, err)
	_, err = pool.Acquire(context.Background(), "b")
	require.NoError(t, err)

	closeErr := errors.New("broken pipe")
	a.EXPECT().Close().Return(nil).Once()
	b.EXPECT().Close().Return(closeErr).Once()

	err = pool.EvictAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, closeErr)
	assert.Contains(t, err.Error(), "close session b")
	assert.Zero(t, pool.Len())
}

func TestPoolSlowConnectDoesNotBlockOtherConnections(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	web := mocks.NewMockSession(t)
	db := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("db", "web")), transport)

	dialing := make(chan struct{})
	release := make(chan struct{})
	transport.EXPECT().Connect(mock.Anything, testDescriptor("web"), mock.Anything).Return(web, nil).Once()
	transport.EXPECT().Connect(mock.Anything, testDescriptor("db"), mock.Anything).
		Run(func(context.Context, domain.ConnectionDescriptor, time.Duration) {
			close(dialing)
			<-release
		}).
		Return(db, nil).Once()
	web.EXPECT().Connected().Return(true)
	db.EXPECT().Connected().Return(true).Maybe()

	_, err := pool.Acquire(context.Background(), "web")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(context.Background(), "db")
		done <- err
	}()
	<-dialing

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, err := pool.Acquire(ctx, "web")
	require.NoError(t, err)
	assert.Same(t, web, got)
	assert.Empty(t, pool.SweepIdle(time.Hour))
	assert.False(t, pool.Has("db"))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"db", "web"}, pool.Names())
}

func TestPoolWaiterGivesUpButConnectCompletes(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	session := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("db")), transport)

	release := make(chan struct{})
	connected := make(chan struct{})
	transport.EXPECT().Connect(mock.Anything, mock.Anything, mock.Anything).
		Run(func(ctx context.Context, _ domain.ConnectionDescriptor, _ time.Duration) {
			<-release
			assert.NoError(t, ctx.Err())
		}).
		Return(session, nil).Once()
	session.EXPECT().Connected().Return(true).Maybe()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := pool.Acquire(ctx, "db")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go func() {
		got, err := pool.Acquire(context.Background(), "db")
		assert.NoError(t, err)
		assert.Same(t, session, got)
		close(connected)
	}()
	close(release)
	<-connected

	assert.True(t, pool.Has("db"))
}

func TestPoolEvictAllDuringConnectDiscardsLateSession(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	session := mocks.NewMockSession(t)
	pool := NewPool(NewSnapshot(testConfig("db")), transport)

	dialing := make(chan struct{})
	release := make(chan struct{})
	transport.EXPECT().Connect(mock.Anything, mock.Anything, mock.Anything).
		Run(func(context.Context, domain.ConnectionDescriptor, time.Duration) {
			close(dialing)
			<-release
		}).
		Return(session, nil).Once()
	session.EXPECT().Close().Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(context.Background(), "db")
		done <- err
	}()
	<-dialing

	require.NoError(t, pool.EvictAll())
	close(release)

	err := <-done
	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.ErrorIs(t, err, errSessionSuperseded)
	assert.Zero(t, pool.Len())
}

func TestPoolReloadDuringConnectDiscardsOutdatedSession(t *testing.T) {
	t.Parallel()

	transport := mocks.NewMockTransport(t)
	session := mocks.NewMockSession(t)
	snapshot := NewSnapshot(testConfig("db"))
	pool := NewPool(snapshot, transport)

	release := make(chan struct{})
	dialing := make(chan struct{})
	transport.EXPECT().Connect(mock.Anything, testDescriptor("db"), mock.Anything).
		Run(func(context.Context, domain.ConnectionDescriptor, time.Duration) {
			close(dialing)
			<-release
		}).
		Return(session, nil).Once()
	session.EXPECT().Close().Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := pool.Acquire(context.Background(), "db")
		done <- err
	}()
	<-dialing

	reloaded := testConfig("db")
	moved := reloaded.Connections["db"]
	moved.Host = "db-2.internal"
	reloaded.Connections["db"] = moved
	snapshot.Store(reloaded)
	close(release)

	require.ErrorIs(t, <-done, errSessionSuperseded)
	assert.False(t, pool.Has("db"))
}
