package workflow

import (
	"context"

	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

type serviceTokenKey struct{}

// WithServiceToken returns ctx carrying the engine's service token.
func WithServiceToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, serviceTokenKey{}, token)
}

// ServiceToken returns the service token placed on ctx, or "".
func ServiceToken(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	t, _ := ctx.Value(serviceTokenKey{}).(string)
	return t
}

// credentials wraps collaborator calls so a call rejected for stale
// credentials is retried once with a freshly issued service token.
type credentials struct {
	identity IdentityResolver
	metrics  *prometheus.EngineMetrics
	logger   logging.Logger
}

// retryWithFreshCredentials runs fn with the current service token. If fn
// fails with an unauthorized error the token is refreshed and fn runs once
// more; that second result is returned as is. Without an IdentityResolver fn
// runs once with no token.
func (c credentials) retryWithFreshCredentials(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if c.identity == nil {
		return fn(ctx)
	}

	token, err := c.identity.SystemToken(ctx, false)
	if err != nil {
		return errors.Wrap(err, errors.CodeUnauthorized, "obtain service token").WithDetail(op)
	}
	err = fn(WithServiceToken(ctx, token))
	if !errors.IsCode(err, errors.CodeUnauthorized) {
		return err
	}

	c.metrics.FeeLookupRetries.WithLabelValues(op).Inc()
	c.logger.Warn("collaborator rejected credentials, retrying", logging.String("operation", op), logging.Err(err))

	token, err = c.identity.SystemToken(ctx, true)
	if err != nil {
		return errors.Wrap(err, errors.CodeUnauthorized, "refresh service token").WithDetail(op)
	}
	return fn(WithServiceToken(ctx, token))
}

//Personal.AI order the ending
