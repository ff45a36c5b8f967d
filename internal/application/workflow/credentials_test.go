package workflow

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

func newCreds(id IdentityResolver) credentials {
	return credentials{identity: id, metrics: prometheus.NewNopEngineMetrics(), logger: logging.NewNopLogger()}
}

func TestRetryWithFreshCredentials_RetriesOnceOnUnauthorized(t *testing.T) {
	id := new(mockIdentity)
	id.On("SystemToken", mock.Anything, false).Return("stale", nil).Once()
	id.On("SystemToken", mock.Anything, true).Return("fresh", nil).Once()

	var seen []string
	err := newCreds(id).retryWithFreshCredentials(context.Background(), "op", func(ctx context.Context) error {
		seen = append(seen, ServiceToken(ctx))
		if ServiceToken(ctx) == "stale" {
			return errors.Unauthorized("token expired")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"stale", "fresh"}, seen)
	id.AssertExpectations(t)
}

func TestRetryWithFreshCredentials_PropagatesSecondFailure(t *testing.T) {
	id := new(mockIdentity)
	id.On("SystemToken", mock.Anything, mock.Anything).Return("token", nil)

	calls := 0
	err := newCreds(id).retryWithFreshCredentials(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return errors.Unauthorized("still rejected")
	})

	assert.Equal(t, 2, calls)
	assert.True(t, errors.IsCode(err, errors.CodeUnauthorized))
}

func TestRetryWithFreshCredentials_OtherErrorsNotRetried(t *testing.T) {
	id := new(mockIdentity)
	id.On("SystemToken", mock.Anything, false).Return("token", nil).Once()

	calls := 0
	boom := stderrors.New("boom")
	err := newCreds(id).retryWithFreshCredentials(context.Background(), "op", func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, boom)
	id.AssertNotCalled(t, "SystemToken", mock.Anything, true)
}

func TestRetryWithFreshCredentials_TokenFailure(t *testing.T) {
	id := new(mockIdentity)
	id.On("SystemToken", mock.Anything, false).Return("", stderrors.New("idam down"))

	err := newCreds(id).retryWithFreshCredentials(context.Background(), "op", func(ctx context.Context) error {
		t.Fatal("must not run without a token")
		return nil
	})
	assert.True(t, errors.IsCode(err, errors.CodeUnauthorized))
}

func TestRetryWithFreshCredentials_NoIdentity(t *testing.T) {
	calls := 0
	err := newCreds(nil).retryWithFreshCredentials(context.Background(), "op", func(ctx context.Context) error {
		calls++
		assert.Empty(t, ServiceToken(ctx))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

//Personal.AI order the ending
