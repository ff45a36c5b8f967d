package idam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/rest"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(config.IdentityConfig{
		BaseURL:        srv.URL,
		ClientID:       "civil_service",
		ClientSecret:   "s3cret",
		SystemUsername: "system@example.net",
		SystemPassword: "pw",
		Scope:          "openid roles",
	}, nil, rest.WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func TestResolveIdentity(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userInfoPath, r.URL.Path)
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"uid":"u-1","sub":"judge@example.net","given_name":"Ann","family_name":"Judge","roles":["caseworker-civil-judge"]}`))
	})

	id, err := c.ResolveIdentity(context.Background(), "Bearer user-token")
	require.NoError(t, err)
	assert.Equal(t, "u-1", id.UserID)
	assert.Equal(t, "judge@example.net", id.Email)
	assert.Equal(t, "Ann", id.Forename)
	assert.True(t, id.HasRole(string(RoleJudge)))
}

func TestResolveIdentity_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ResolveIdentity(context.Background(), "expired")
	assert.True(t, errors.IsCode(err, errors.CodeUnauthorized))

	_, err = c.ResolveIdentity(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestResolveIdentity_NoUserID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"roles":[]}`))
	})
	_, err := c.ResolveIdentity(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrIncompleteIdentity)
}

func TestSystemToken_CachedUntilForced(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, tokenPath, r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "password", r.PostForm.Get("grant_type"))
		assert.Equal(t, "system@example.net", r.PostForm.Get("username"))
		assert.Equal(t, "civil_service", r.PostForm.Get("client_id"))
		n := atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"access_token":"sys-` + string(rune('0'+n)) + `","expires_in":3600}`))
	})

	tok, err := c.SystemToken(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "sys-1", tok)

	tok, err = c.SystemToken(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "sys-1", tok)

	tok, err = c.SystemToken(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "sys-2", tok)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSystemToken_ExpiryFromClaims(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(20 * time.Second)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"access_token":"` + raw + `"}`))
	})
	c.now = func() time.Time { return now }

	_, err = c.SystemToken(context.Background(), false)
	require.NoError(t, err)
	// 20s left is inside the skew window, so the next call fetches again.
	_, err = c.SystemToken(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSystemToken_ConcurrentCallersShareFetch(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		_, _ = w.Write([]byte(`{"access_token":"shared","expires_in":600}`))
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := c.SystemToken(context.Background(), false)
			assert.NoError(t, err)
			assert.Equal(t, "shared", tok)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSystemToken_NotConfigured(t *testing.T) {
	c, err := NewClient(config.IdentityConfig{BaseURL: "http://idam.local"}, nil)
	require.NoError(t, err)
	_, err = c.SystemToken(context.Background(), false)
	assert.ErrorIs(t, err, ErrNoSystemUser)
}

func TestEnforcer(t *testing.T) {
	e := NewEnforcer(nil, nil)
	judge := workflow.Identity{UserID: "j", Roles: []string{string(RoleJudge)}}
	staff := workflow.Identity{UserID: "s", Roles: []string{string(RoleCaseworker)}}

	assert.NoError(t, e.Enforce(judge, PermDecisionRecord))
	assert.True(t, errors.IsCode(e.Enforce(staff, PermDecisionRecord), errors.ErrCodeForbidden))
	assert.True(t, e.HasPermission(staff, PermHwfProcess))

	e.UpdateMapping(RolePermissionMapping{RoleCaseworker: {PermDecisionRecord}})
	assert.NoError(t, e.Enforce(staff, PermDecisionRecord))
	assert.False(t, e.HasPermission(judge, PermFeeCompute))
}

//Personal.AI order the ending
