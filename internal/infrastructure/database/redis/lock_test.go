package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/turtacn/civil-general-applications/pkg/errors"
)

func newTestLocker(t *testing.T, opts ...LockOption) (*redisCaseLocker, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	client := NewClientFromUniversal(db, "ga:", nil)
	opts = append([]LockOption{WithLockTTL(10 * time.Second), WithRetryDelay(time.Millisecond), WithRetryCount(2)}, opts...)
	l := NewCaseLocker(client, nil, opts...).(*redisCaseLocker)
	l.newValue = func() string { return "owner-1" }
	return l, mock
}

func TestCaseLocker_AcquireRelease(t *testing.T) {
	l, mock := newTestLocker(t)
	mock.ExpectSetNX("ga:lock:case:1234", "owner-1", 10*time.Second).SetVal(true)
	mock.ExpectEval(unlockScript, []string{"ga:lock:case:1234"}, "owner-1").SetVal(int64(1))

	release, err := l.Acquire(context.Background(), "1234")
	require.NoError(t, err)
	require.NoError(t, release(context.Background()))
	// Second release is a no-op.
	require.NoError(t, release(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseLocker_ContentionExhaustsRetries(t *testing.T) {
	l, mock := newTestLocker(t)
	mock.ExpectSetNX("ga:lock:case:1234", "owner-1", 10*time.Second).SetVal(false)
	mock.ExpectSetNX("ga:lock:case:1234", "owner-1", 10*time.Second).SetVal(false)

	_, err := l.Acquire(context.Background(), "1234")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseLocker_CancelledWhileWaiting(t *testing.T) {
	l, mock := newTestLocker(t, WithRetryDelay(time.Hour))
	mock.ExpectSetNX("ga:lock:case:1234", "owner-1", 10*time.Second).SetVal(false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Acquire(ctx, "1234")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCaseLocker_RedisError(t *testing.T) {
	l, mock := newTestLocker(t)
	mock.ExpectSetNX("ga:lock:case:1234", "owner-1", 10*time.Second).SetErr(errors.New("down"))

	_, err := l.Acquire(context.Background(), "1234")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func TestCaseLocker_ReleaseAfterExpiry(t *testing.T) {
	l, mock := newTestLocker(t)
	mock.ExpectSetNX("ga:lock:case:1234", "owner-1", 10*time.Second).SetVal(true)
	mock.ExpectEval(unlockScript, []string{"ga:lock:case:1234"}, "owner-1").SetVal(int64(0))

	release, err := l.Acquire(context.Background(), "1234")
	require.NoError(t, err)
	err = release(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeConflict))
}

//Personal.AI order the ending
