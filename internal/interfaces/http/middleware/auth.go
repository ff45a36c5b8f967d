package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/auth/idam"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const (
	ContextKeyIdentity = "ga.identity"
	ContextKeyToken    = "ga.token"
)

var (
	ErrMissingAuthHeader = errors.New(errors.CodeUnauthorized, "missing authorization header")
	ErrInvalidAuthFormat = errors.New(errors.CodeUnauthorized, "invalid authorization format")
)

// AuthMiddlewareConfig lists the paths served without a bearer token.
type AuthMiddlewareConfig struct {
	SkipPaths    []string
	SkipPrefixes []string
}

// AuthMiddleware resolves the caller's bearer token to an identity.
type AuthMiddleware struct {
	resolver     workflow.IdentityResolver
	logger       logging.Logger
	skipPaths    map[string]bool
	skipPrefixes []string
}

func NewAuthMiddleware(resolver workflow.IdentityResolver, logger logging.Logger, cfg AuthMiddlewareConfig) *AuthMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	m := &AuthMiddleware{
		resolver:     resolver,
		logger:       logger.Named("auth"),
		skipPaths:    make(map[string]bool, len(cfg.SkipPaths)),
		skipPrefixes: cfg.SkipPrefixes,
	}
	for _, p := range cfg.SkipPaths {
		m.skipPaths[p] = true
	}
	return m
}

func (m *AuthMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if m.skipPaths[path] {
			c.Next()
			return
		}
		for _, prefix := range m.skipPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		token, err := extractBearerToken(c.Request)
		if err != nil {
			m.fail(c, err)
			return
		}
		id, err := m.resolver.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			m.fail(c, err)
			return
		}

		c.Set(ContextKeyIdentity, id)
		c.Set(ContextKeyToken, token)
		c.Next()
	}
}

func (m *AuthMiddleware) fail(c *gin.Context, err error) {
	// never log the token itself
	m.logger.Warn("Authentication failed",
		logging.String("path", c.Request.URL.Path),
		logging.String("ip", c.ClientIP()),
		logging.Err(err),
	)
	c.Header("WWW-Authenticate", "Bearer")
	status := http.StatusUnauthorized
	code := errors.CodeUnauthorized
	if !errors.IsCode(err, errors.CodeUnauthorized) {
		// the identity provider itself is unavailable
		status = http.StatusServiceUnavailable
		code = errors.ErrCodeServiceUnavailable
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code":    string(code),
		"message": errors.DefaultMessageForCode(code),
	})
}

// RequirePermission rejects callers whose roles do not grant perm.
func RequirePermission(enforcer *idam.Enforcer, perm idam.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    string(errors.CodeUnauthorized),
				"message": errors.DefaultMessageForCode(errors.CodeUnauthorized),
			})
			return
		}
		if err := enforcer.Enforce(id, perm); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":    string(errors.ErrCodeForbidden),
				"message": err.Error(),
			})
			return
		}
		c.Next()
	}
}

func extractBearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", ErrMissingAuthHeader
	}
	if !strings.HasPrefix(h, "Bearer ") {
		return "", ErrInvalidAuthFormat
	}
	return strings.TrimPrefix(h, "Bearer "), nil
}

// IdentityFrom returns the identity set by AuthMiddleware.
func IdentityFrom(c *gin.Context) (workflow.Identity, bool) {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return workflow.Identity{}, false
	}
	id, ok := v.(workflow.Identity)
	return id, ok
}

//Personal.AI order the ending
