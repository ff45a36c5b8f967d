package feeregistry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/domain/fee"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/database/redis"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/rest"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

var onNotice = fee.Request{Keyword: "GAOnNotice", Event: fee.EventGeneralApplication, Service: fee.ServiceGeneral}

func newRegistry(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(config.FeeRegistryConfig{
		BaseURL:       srv.URL,
		Timeout:       time.Second,
		Channel:       "default",
		Jurisdiction1: "civil",
		Jurisdiction2: "civil",
	}, nil, rest.WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func TestClient_LookupFee(t *testing.T) {
	c := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, lookupPath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "default", q.Get("channel"))
		assert.Equal(t, "general application", q.Get("event"))
		assert.Equal(t, "civil", q.Get("jurisdiction1"))
		assert.Equal(t, "civil", q.Get("jurisdiction2"))
		assert.Equal(t, "general", q.Get("service"))
		assert.Equal(t, "GAOnNotice", q.Get("keyword"))
		assert.Equal(t, "Bearer s2s", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"code":"FEE0443","description":"On notice","version":2,"fee_amount":275.00}`))
	})

	ctx := workflow.WithServiceToken(context.Background(), "s2s")
	f, err := c.LookupFee(ctx, onNotice)
	require.NoError(t, err)
	assert.Equal(t, generalapp.Fee{AmountPence: 27500, Code: "FEE0443", Version: "2"}, f)
}

func TestClient_LookupFee_FractionalPounds(t *testing.T) {
	c := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"FEE0458","version":1,"fee_amount":14.5}`))
	})
	f, err := c.LookupFee(context.Background(), onNotice)
	require.NoError(t, err)
	assert.Equal(t, int64(1450), f.AmountPence)
}

func TestClient_LookupFee_NoAmount(t *testing.T) {
	for _, body := range []string{`{"code":"FEE0443","version":2}`, `{"code":"FEE0443","version":2,"fee_amount":0}`} {
		c := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		_, err := c.LookupFee(context.Background(), onNotice)
		assert.True(t, errors.IsCode(err, errors.ErrCodeNoFeesReturned), body)
	}
}

func TestClient_LookupFee_Unauthorized(t *testing.T) {
	c := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.LookupFee(context.Background(), onNotice)
	assert.True(t, errors.IsCode(err, errors.CodeUnauthorized))
}

func TestClient_LookupFee_ServerError(t *testing.T) {
	c := newRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.LookupFee(context.Background(), onNotice)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFeeLookupFailed))
}

type mockLookup struct{ mock.Mock }

func (m *mockLookup) LookupFee(ctx context.Context, req fee.Request) (generalapp.Fee, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(generalapp.Fee), args.Error(1)
}

func newCached(t *testing.T, next fee.Lookup) (*CachedLookup, redismock.ClientMock) {
	t.Helper()
	db, rm := redismock.NewClientMock()
	client := redis.NewClientFromUniversal(db, "ga:", nil)
	cache := redis.NewRedisCache(client, nil, redis.WithNamespace("fee"), redis.WithTTLJitter(0))
	return NewCachedLookup(next, cache, time.Hour, nil, nil), rm
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "general_application:general:GAOnNotice", CacheKey(onNotice))
}

func TestCachedLookup_MissThenStore(t *testing.T) {
	want := generalapp.Fee{AmountPence: 27500, Code: "FEE0443", Version: "2"}
	next := new(mockLookup)
	next.On("LookupFee", mock.Anything, onNotice).Return(want, nil).Once()

	c, rm := newCached(t, next)
	encoded, err := json.Marshal(want)
	require.NoError(t, err)
	rm.ExpectGet("ga:fee:general_application:general:GAOnNotice").RedisNil()
	rm.ExpectSet("ga:fee:general_application:general:GAOnNotice", string(encoded), time.Hour).SetVal("OK")

	got, err := c.LookupFee(context.Background(), onNotice)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	next.AssertExpectations(t)
	assert.NoError(t, rm.ExpectationsWereMet())
}

func TestCachedLookup_Hit(t *testing.T) {
	want := generalapp.Fee{AmountPence: 10800, Code: "FEE0442", Version: "1"}
	next := new(mockLookup)

	c, rm := newCached(t, next)
	encoded, err := json.Marshal(want)
	require.NoError(t, err)
	rm.ExpectGet("ga:fee:general_application:general:GAOnNotice").SetVal(string(encoded))

	got, err := c.LookupFee(context.Background(), onNotice)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	next.AssertNotCalled(t, "LookupFee", mock.Anything, mock.Anything)
}

func TestCachedLookup_ErrorNotCached(t *testing.T) {
	next := new(mockLookup)
	next.On("LookupFee", mock.Anything, onNotice).
		Return(generalapp.Fee{}, errors.New(errors.ErrCodeNoFeesReturned, "none"))

	c, rm := newCached(t, next)
	rm.ExpectGet("ga:fee:general_application:general:GAOnNotice").RedisNil()

	_, err := c.LookupFee(context.Background(), onNotice)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNoFeesReturned))
	assert.NoError(t, rm.ExpectationsWereMet())
}

//Personal.AI order the ending
