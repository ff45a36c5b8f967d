package redis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

var (
	ErrLockNotAcquired = errors.New(errors.ErrCodeConflict, "failed to acquire case lock")
	ErrLockNotHeld     = errors.New(errors.ErrCodeConflict, "case lock not held by this owner")
)

const (
	unlockScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`
	extendScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end`
)

// CaseLocker serialises work on one case across worker replicas. Two events
// for the same case must not read and write the case record concurrently.
type CaseLocker interface {
	// Acquire blocks until the lock is held or retries run out. The returned
	// release func is safe to call once.
	Acquire(ctx context.Context, caseReference string) (release func(context.Context) error, err error)
}

type LockOption func(*lockConfig)

func WithLockTTL(ttl time.Duration) LockOption {
	return func(c *lockConfig) { c.ttl = ttl }
}

func WithRetryDelay(delay time.Duration) LockOption {
	return func(c *lockConfig) { c.retryDelay = delay }
}

func WithRetryCount(count int) LockOption {
	return func(c *lockConfig) { c.retryCount = count }
}

// WithWatchdog keeps extending the lock every ttl/3 while it is held.
func WithWatchdog(enabled bool) LockOption {
	return func(c *lockConfig) { c.watchdog = enabled }
}

type lockConfig struct {
	ttl        time.Duration
	retryDelay time.Duration
	retryCount int
	watchdog   bool
}

type redisCaseLocker struct {
	client   *Client
	config   lockConfig
	logger   logging.Logger
	newValue func() string
}

func NewCaseLocker(client *Client, log logging.Logger, opts ...LockOption) CaseLocker {
	if log == nil {
		log = logging.NewNopLogger()
	}
	cfg := lockConfig{
		ttl:        30 * time.Second,
		retryDelay: 100 * time.Millisecond,
		retryCount: 50,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &redisCaseLocker{client: client, config: cfg, logger: log.Named("case-lock"), newValue: uuid.NewString}
}

func (l *redisCaseLocker) key(caseReference string) string {
	return l.client.Key("lock", "case", caseReference)
}

func (l *redisCaseLocker) Acquire(ctx context.Context, caseReference string) (func(context.Context) error, error) {
	key := l.key(caseReference)
	value := l.newValue()

	for i := 0; i < l.config.retryCount; i++ {
		ok, err := l.client.SetNX(ctx, key, value, l.config.ttl).Result()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to set case lock")
		}
		if ok {
			return l.held(key, value), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.config.retryDelay):
		}
	}
	return nil, ErrLockNotAcquired.WithDetail(caseReference)
}

func (l *redisCaseLocker) held(key, value string) func(context.Context) error {
	stop := func() {}
	if l.config.watchdog {
		wctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go l.runWatchdog(wctx, key, value, done)
		stop = func() {
			cancel()
			<-done
		}
	}

	released := false
	return func(ctx context.Context) error {
		if released {
			return nil
		}
		released = true
		stop()
		res, err := l.client.Eval(ctx, unlockScript, []string{key}, value).Int64()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeCacheError, "failed to release case lock")
		}
		if res == 0 {
			return ErrLockNotHeld.WithDetail(key)
		}
		return nil
	}
}

func (l *redisCaseLocker) extend(ctx context.Context, key, value string) (bool, error) {
	res, err := l.client.Eval(ctx, extendScript, []string{key}, value, l.config.ttl.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (l *redisCaseLocker) runWatchdog(ctx context.Context, key, value string, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.config.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ok, err := l.extend(ctx, key, value)
			if err != nil {
				l.logger.Error("Watchdog failed to extend lock", logging.String("key", key), logging.Err(err))
				return
			}
			if !ok {
				l.logger.Warn("Watchdog lost lock", logging.String("key", key))
				return
			}
		}
	}
}

//Personal.AI order the ending
