package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/sshgw/internal/domain"
	portmocks "github.com/bnema/sshgw/internal/ports/mocks"
)

func newChain(t *testing.T) (*Store, *portmocks.MockSecretStore, *portmocks.MockSecretStore, *portmocks.MockSecretStore) {
	t.Helper()

	keyring := portmocks.NewMockSecretStore(t)
	pass := portmocks.NewMockSecretStore(t)
	file := portmocks.NewMockSecretStore(t)
	store, err := NewStore(
		Backend{Name: "keyring", Store: keyring},
		Backend{Name: "pass", Store: pass},
		Backend{Name: "file", Store: file},
	)
	require.NoError(t, err)

	return store, keyring, pass, file
}

func TestNewStoreRejectsEmptyOrNil(t *testing.T) {
	t.Parallel()

	_, err := NewStore()
	require.Error(t, err)

	_, err = NewStore(Backend{Name: "keyring"})
	require.ErrorContains(t, err, "keyring")
}

func TestStoreGetReturnsFirstHit(t *testing.T) {
	t.Parallel()

	store, keyring, pass, _ := newChain(t)
	keyring.EXPECT().Get(mock.Anything, "hosts/db").Return("", domain.ErrSecretNotFound).Once()
	pass.EXPECT().Get(mock.Anything, "hosts/db").Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), "hosts/db")
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetAllMissingIsNotFound(t *testing.T) {
	t.Parallel()

	store, keyring, pass, file := newChain(t)
	keyring.EXPECT().Get(mock.Anything, "hosts/db").Return("", domain.ErrSecretNotFound).Once()
	pass.EXPECT().Get(mock.Anything, "hosts/db").Return("", domain.ErrSecretNotFound).Once()
	file.EXPECT().Get(mock.Anything, "hosts/db").Return("", domain.ErrSecretNotFound).Once()

	_, err := store.Get(context.Background(), "hosts/db")
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreGetJoinsBackendFailures(t *testing.T) {
	t.Parallel()

	store, keyring, pass, file := newChain(t)
	keyring.EXPECT().Get(mock.Anything, "hosts/db").Return("", errors.New("dbus unavailable")).Once()
	pass.EXPECT().Get(mock.Anything, "hosts/db").Return("", errors.New("pass command unavailable")).Once()
	file.EXPECT().Get(mock.Anything, "hosts/db").Return("", domain.ErrSecretNotFound).Once()

	_, err := store.Get(context.Background(), "hosts/db")
	require.Error(t, err)
	assert.ErrorContains(t, err, "keyring backend get failed: dbus unavailable")
	assert.ErrorContains(t, err, "pass backend get failed")
	assert.ErrorContains(t, err, "file backend get failed")
}

func TestStoreGetStopsOnCancellation(t *testing.T) {
	t.Parallel()

	store, keyring, _, _ := newChain(t)
	keyring.EXPECT().Get(mock.Anything, "hosts/db").Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), "hosts/db")
	require.ErrorIs(t, err, context.Canceled)
}

func TestStorePutFallsThrough(t *testing.T) {
	t.Parallel()

	store, keyring, pass, _ := newChain(t)
	keyring.EXPECT().Put(mock.Anything, "hosts/db", "secret").Return(errors.New("no keyring")).Once()
	pass.EXPECT().Put(mock.Anything, "hosts/db", "secret").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), "hosts/db", "secret"))
}

func TestStorePutAllFail(t *testing.T) {
	t.Parallel()

	store, keyring, pass, file := newChain(t)
	keyring.EXPECT().Put(mock.Anything, "hosts/db", "secret").Return(errors.New("no keyring")).Once()
	pass.EXPECT().Put(mock.Anything, "hosts/db", "secret").Return(errors.New("no pass")).Once()
	file.EXPECT().Put(mock.Anything, "hosts/db", "secret").Return(errors.New("read-only fs")).Once()

	err := store.Put(context.Background(), "hosts/db", "secret")
	require.Error(t, err)
	assert.ErrorContains(t, err, "read-only fs")
}

func TestStoreDeleteReachesEveryBackend(t *testing.T) {
	t.Parallel()

	store, keyring, pass, file := newChain(t)
	keyring.EXPECT().Delete(mock.Anything, "hosts/db").Return(nil).Once()
	pass.EXPECT().Delete(mock.Anything, "hosts/db").Return(errors.New("pass command unavailable")).Once()
	file.EXPECT().Delete(mock.Anything, "hosts/db").Return(domain.ErrSecretNotFound).Once()

	require.NoError(t, store.Delete(context.Background(), "hosts/db"))
}

func TestStoreDeleteReportsFailureWhenNothingDeleted(t *testing.T) {
	t.Parallel()

	store, keyring, pass, file := newChain(t)
	keyring.EXPECT().Delete(mock.Anything, "hosts/db").Return(domain.ErrSecretNotFound).Once()
	pass.EXPECT().Delete(mock.Anything, "hosts/db").Return(errors.New("gpg failed")).Once()
	file.EXPECT().Delete(mock.Anything, "hosts/db").Return(domain.ErrSecretNotFound).Once()

	require.ErrorContains(t, store.Delete(context.Background(), "hosts/db"), "gpg failed")
}
