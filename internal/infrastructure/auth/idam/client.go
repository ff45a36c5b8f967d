// Package idam resolves caller identities and issues the engine's system
// user token against the identity provider's OpenID endpoints.
package idam

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/external/rest"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const (
	userInfoPath = "/o/userinfo"
	tokenPath    = "/o/token"

	// tokens within this window of expiry are treated as expired
	expirySkew = 30 * time.Second
	// used when the provider returns neither expires_in nor a readable exp claim
	fallbackLifetime = 5 * time.Minute
)

var (
	ErrMissingToken       = errors.New(errors.CodeUnauthorized, "bearer token is required")
	ErrIncompleteIdentity = errors.New(errors.CodeUnauthorized, "identity provider returned no user id")
	ErrNoSystemUser       = errors.New(errors.CodeUnauthorized, "system user credentials are not configured")
)

type userInfo struct {
	UID        string   `json:"uid"`
	Subject    string   `json:"sub"`
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Roles      []string `json:"roles"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type systemTokenEntry struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func (s *systemTokenEntry) get(now time.Time) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || !now.Add(expirySkew).Before(s.expiresAt) {
		return "", false
	}
	return s.token, true
}

func (s *systemTokenEntry) set(token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiresAt = expiresAt
}

func (s *systemTokenEntry) clear() {
	s.set("", time.Time{})
}

// Client implements workflow.IdentityResolver.
type Client struct {
	rest   *rest.Client
	cfg    config.IdentityConfig
	logger logging.Logger
	now    func() time.Time

	system systemTokenEntry
	group  singleflight.Group
}

var _ workflow.IdentityResolver = (*Client)(nil)

func NewClient(cfg config.IdentityConfig, log logging.Logger, opts ...rest.Option) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.Named("idam")
	rc, err := rest.New(cfg.BaseURL, cfg.Timeout, append([]rest.Option{rest.WithLogger(log)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if cfg.SystemUsername == "" {
		log.Warn("System user is not configured; collaborator calls will be unauthenticated")
	}
	return &Client{rest: rc, cfg: cfg, logger: log, now: time.Now}, nil
}

// ResolveIdentity exchanges a caller's bearer token for their details.
func (c *Client) ResolveIdentity(ctx context.Context, token string) (workflow.Identity, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return workflow.Identity{}, ErrMissingToken
	}

	var info userInfo
	if err := c.rest.Do(ctx, rest.Request{Method: http.MethodGet, Path: userInfoPath, Token: token}, &info); err != nil {
		return workflow.Identity{}, err
	}
	id := info.UID
	if id == "" {
		id = info.Subject
	}
	if id == "" {
		return workflow.Identity{}, ErrIncompleteIdentity
	}
	email := info.Email
	if email == "" && strings.Contains(info.Subject, "@") {
		email = info.Subject
	}
	return workflow.Identity{
		UserID:   id,
		Email:    email,
		Forename: info.GivenName,
		Surname:  info.FamilyName,
		Roles:    info.Roles,
	}, nil
}

// SystemToken returns a cached system user token, fetching a new one when the
// cache is empty, near expiry or forceRefresh is set. Concurrent refreshes
// share one request.
func (c *Client) SystemToken(ctx context.Context, forceRefresh bool) (string, error) {
	if forceRefresh {
		c.system.clear()
	} else if tok, ok := c.system.get(c.now()); ok {
		return tok, nil
	}
	if c.cfg.SystemUsername == "" {
		return "", ErrNoSystemUser
	}

	v, err, _ := c.group.Do("system", func() (interface{}, error) {
		if tok, ok := c.system.get(c.now()); ok {
			return tok, nil
		}
		return c.fetchSystemToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetchSystemToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("username", c.cfg.SystemUsername)
	form.Set("password", c.cfg.SystemPassword)
	form.Set("scope", c.cfg.Scope)

	var resp tokenResponse
	if err := c.rest.Do(ctx, rest.Request{Method: http.MethodPost, Path: tokenPath, Form: form}, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New(errors.CodeUnauthorized, "identity provider returned an empty token")
	}

	expiresAt := c.expiry(resp)
	c.system.set(resp.AccessToken, expiresAt)
	c.logger.Info("System token issued", logging.String("expires_at", expiresAt.Format(time.RFC3339)))
	return resp.AccessToken, nil
}

// expiry prefers expires_in, then the token's own exp claim. The claim is read
// without verification; the provider just issued the token to us.
func (c *Client) expiry(resp tokenResponse) time.Time {
	now := c.now()
	if resp.ExpiresIn > 0 {
		return now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	c.logger.Warn("Token lifetime unknown, using fallback", logging.Duration("lifetime", fallbackLifetime))
	return now.Add(fallbackLifetime)
}

//Personal.AI order the ending
