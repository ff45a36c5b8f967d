package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const sourceService = "civil-general-applications"

var (
	ErrProducerClosed = errors.New(errors.ErrCodeMessageQueueError, "producer closed")
)

type ProducerConfig struct {
	Brokers         []string
	MaxRetries      int
	BatchTimeout    time.Duration
	WriteTimeout    time.Duration
	MaxMessageBytes int
	// Acks is "none", "one" or "all" (the default).
	Acks string
}

// WriterInterface abstracts kafka.Writer for testing.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer          WriterInterface
	maxMessageBytes int
	logger          logging.Logger
	closed          atomic.Bool
	sent            atomic.Int64
	failed          atomic.Int64
}

func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidParam("brokers required")
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.InvalidParam("MaxRetries must be >= 0")
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BatchTimeout == 0 {
		// events are published one at a time; don't wait for a batch
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	acks := kafka.RequireAll
	switch cfg.Acks {
	case "none":
		acks = kafka.RequireNone
	case "one":
		acks = kafka.RequireOne
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxRetries + 1,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: acks,
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return NewProducerWithWriter(w, cfg.MaxMessageBytes, logger), nil
}

// NewProducerWithWriter wraps an existing writer. maxMessageBytes 0 means 1MB.
func NewProducerWithWriter(w WriterInterface, maxMessageBytes int, logger logging.Logger) *Producer {
	if maxMessageBytes == 0 {
		maxMessageBytes = 1024 * 1024
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: w, maxMessageBytes: maxMessageBytes, logger: logger.Named("kafka-producer")}
}

func (p *Producer) Publish(ctx context.Context, msg kafka.Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if msg.Topic == "" {
		return errors.InvalidParam("topic required")
	}
	if len(msg.Value) == 0 {
		return errors.InvalidParam("message value required")
	}
	if len(msg.Value) > p.maxMessageBytes {
		return errors.InvalidParam("message too large").WithDetail(msg.Topic)
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.failed.Add(1)
		return errors.Wrap(err, errors.ErrCodeMessageQueueError, "publish failed").WithDetail(msg.Topic)
	}
	p.sent.Add(1)
	p.logger.Debug("Message published",
		logging.String("topic", msg.Topic),
		logging.String("key", string(msg.Key)),
		logging.Duration("latency", time.Since(start)))
	return nil
}

// Stats returns the sent and failed counts.
func (p *Producer) Stats() (sent, failed int64) {
	return p.sent.Load(), p.failed.Load()
}

func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("Kafka producer closed", logging.Int64("sent", p.sent.Load()))
	return err
}

// BusinessProcessPublisher publishes business-process events for the case
// workflow engine.
type BusinessProcessPublisher struct {
	producer *Producer
	topic    string
}

var _ workflow.EventPublisher = (*BusinessProcessPublisher)(nil)

func NewBusinessProcessPublisher(p *Producer, topic string) *BusinessProcessPublisher {
	return &BusinessProcessPublisher{producer: p, topic: topic}
}

func (b *BusinessProcessPublisher) PublishBusinessProcess(ctx context.Context, evt workflow.BusinessProcessEvent) error {
	if evt.CaseReference == "" || evt.Event == "" {
		return errors.InvalidParam("business process event needs a case reference and an event")
	}
	env, err := NewEventEnvelope(EventBusinessProcess, sourceService, evt.CaseReference, evt)
	if err != nil {
		return err
	}
	if evt.ID != "" {
		env.EventID = evt.ID
	}
	msg, err := env.ToMessage(b.topic)
	if err != nil {
		return err
	}
	return b.producer.Publish(ctx, msg)
}

//Personal.AI order the ending
