package kafka

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

var (
	ErrAlreadyRunning = errors.New(errors.ErrCodeConflict, "consumer already running")
)

// Handler processes one message. A nil return commits it.
type Handler func(ctx context.Context, msg kafka.Message) error

// MessagePublisher sends a message; *Producer implements it.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	HandlerTimeout time.Duration
	Retry          RetryConfig
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one consumer-group member's partitions in order. Several
// Consumers in the same group share the topics' partitions.
type Consumer struct {
	reader     ReaderInterface
	cfg        ConsumerConfig
	deadLetter MessagePublisher
	metrics    *prometheus.EngineMetrics
	logger     logging.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
	running  atomic.Bool

	processed    atomic.Int64
	deadLettered atomic.Int64
}

func ValidateConsumerConfig(cfg ConsumerConfig) error {
	if len(cfg.Brokers) == 0 {
		return errors.InvalidParam("brokers required")
	}
	if cfg.GroupID == "" {
		return errors.InvalidParam("group id required")
	}
	if len(cfg.Topics) == 0 {
		return errors.InvalidParam("at least one topic required")
	}
	if cfg.Retry.MaxRetries < 0 {
		return errors.InvalidParam("MaxRetries must be >= 0")
	}
	return nil
}

// NewConsumer joins cfg.GroupID on cfg.Topics. deadLetter may be nil, in
// which case exhausted messages are logged and skipped.
func NewConsumer(cfg ConsumerConfig, deadLetter MessagePublisher, metrics *prometheus.EngineMetrics, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MinBytes:       1,
		MaxBytes:       10 * 1024 * 1024,
		MaxWait:        time.Second,
		SessionTimeout: 30 * time.Second,
		StartOffset:    kafka.FirstOffset,
		Dialer:         &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	})
	return NewConsumerWithReader(reader, cfg, deadLetter, metrics, logger), nil
}

func NewConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, deadLetter MessagePublisher, metrics *prometheus.EngineMetrics, logger logging.Logger) *Consumer {
	if cfg.HandlerTimeout == 0 {
		cfg.HandlerTimeout = time.Minute
	}
	if cfg.Retry.RetryBackoff == 0 {
		cfg.Retry.RetryBackoff = time.Second
	}
	if cfg.Retry.MaxRetryBackoff == 0 {
		cfg.Retry.MaxRetryBackoff = 30 * time.Second
	}
	if metrics == nil {
		metrics = prometheus.NewNopEngineMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader:     r,
		cfg:        cfg,
		deadLetter: deadLetter,
		metrics:    metrics,
		logger:     logger.Named("kafka-consumer"),
		handlers:   make(map[string]Handler),
	}
}

func (c *Consumer) Subscribe(topic string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = h
	c.logger.Info("Subscribed to topic", logging.String("topic", topic))
}

// Run fetches and handles messages until ctx is cancelled, then returns nil.
func (c *Consumer) Run(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	defer c.running.Store(false)
	c.logger.Info("Kafka consumer started", logging.String("group", c.cfg.GroupID))

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("FetchMessage error", logging.Err(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		c.mu.RLock()
		h, ok := c.handlers[m.Topic]
		c.mu.RUnlock()
		if !ok {
			c.logger.Warn("No handler for topic", logging.String("topic", m.Topic))
		} else if err := c.process(ctx, m, h); err != nil {
			// cancelled mid-message: leave it uncommitted for redelivery
			return nil
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Error("CommitMessages failed", logging.String("topic", m.Topic), logging.Int64("offset", m.Offset), logging.Err(err))
		}
	}
}

// process runs h with retries. It only returns an error when ctx is
// cancelled; exhausted or permanent failures are dead-lettered.
func (c *Consumer) process(ctx context.Context, m kafka.Message, h Handler) error {
	c.metrics.MessagesInFlight.WithLabelValues(m.Topic).Inc()
	defer c.metrics.MessagesInFlight.WithLabelValues(m.Topic).Dec()
	timer := prometheus.NewTimer(c.metrics.MessageProcessDuration.WithLabelValues(m.Topic))
	defer timer.ObserveDuration()

	backoff := c.cfg.Retry.RetryBackoff
	attempts := 0
	var err error
	for {
		attempts++
		err = c.handle(ctx, m, h)
		if err == nil {
			c.processed.Add(1)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if permanent(err) || attempts > c.cfg.Retry.MaxRetries {
			break
		}
		c.logger.Warn("Message failed, retrying",
			logging.String("topic", m.Topic),
			logging.Int64("offset", m.Offset),
			logging.Int("attempt", attempts),
			logging.Err(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.cfg.Retry.MaxRetryBackoff {
			backoff = c.cfg.Retry.MaxRetryBackoff
		}
	}

	prometheus.RecordError(c.metrics, "kafka-consumer", string(errors.GetCode(err)))
	c.logger.Error("Message processing failed",
		logging.String("topic", m.Topic),
		logging.Int64("offset", m.Offset),
		logging.Int("attempts", attempts),
		logging.Err(err))
	c.sendToDeadLetter(ctx, m, err, attempts)
	return nil
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message, h Handler) error {
	hctx, cancel := context.WithTimeout(ctx, c.cfg.HandlerTimeout)
	defer cancel()
	return h(hctx, m)
}

func (c *Consumer) sendToDeadLetter(ctx context.Context, m kafka.Message, cause error, attempts int) {
	if c.deadLetter == nil || c.cfg.Retry.DeadLetterTopic == "" {
		return
	}
	headers := make([]kafka.Header, 0, len(m.Headers)+3)
	headers = append(headers, m.Headers...)
	headers = append(headers,
		kafka.Header{Key: HeaderOriginalTopic, Value: []byte(m.Topic)},
		kafka.Header{Key: HeaderError, Value: []byte(cause.Error())},
		kafka.Header{Key: HeaderAttempts, Value: []byte(strconv.Itoa(attempts))},
	)
	dl := kafka.Message{
		Topic:   c.cfg.Retry.DeadLetterTopic,
		Key:     m.Key,
		Value:   m.Value,
		Headers: headers,
	}
	if err := c.deadLetter.Publish(ctx, dl); err != nil {
		c.logger.Error("Failed to send to dead letter topic", logging.Err(err))
		return
	}
	c.deadLettered.Add(1)
}

// permanent errors fail the same way on every attempt.
func permanent(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeValidation, errors.ErrCodeSerialization, errors.ErrCodeUnknownDecision,
		errors.ErrCodeInconsistentState, errors.CodeInvalidParam:
		return true
	}
	return false
}

// Stats returns the processed and dead-lettered counts.
func (c *Consumer) Stats() (processed, deadLettered int64) {
	return c.processed.Load(), c.deadLettered.Load()
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

//Personal.AI order the ending
