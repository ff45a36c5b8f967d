package worker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/civil-general-applications/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
)

// Consumer is one consumer-group member. *kafka.Consumer implements it.
type Consumer interface {
	Subscribe(topic string, h kafka.Handler)
	Run(ctx context.Context) error
	Close() error
}

type Topics struct {
	Decision string
	Hwf      string
}

// Pool runs several group members side by side. Kafka assigns each member its
// own partitions, and messages are keyed by case, so a case is only ever
// handled by one member at a time outside of a rebalance.
type Pool struct {
	consumers []Consumer
	logger    logging.Logger
}

func NewPool(consumers []Consumer, topics Topics, h *Handlers, logger logging.Logger) *Pool {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	for _, c := range consumers {
		if topics.Decision != "" {
			c.Subscribe(topics.Decision, h.HandleDecision)
		}
		if topics.Hwf != "" {
			c.Subscribe(topics.Hwf, h.HandleHwf)
		}
	}
	return &Pool{consumers: consumers, logger: logger.Named("worker-pool")}
}

// Run blocks until ctx is cancelled or a member fails, then closes every
// member.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range p.consumers {
		i, c := i, c
		g.Go(func() error {
			p.logger.Info("Worker started", logging.Int("member", i))
			return c.Run(gctx)
		})
	}
	err := g.Wait()
	for _, c := range p.consumers {
		if cerr := c.Close(); cerr != nil {
			p.logger.Warn("Consumer close failed", logging.Err(cerr))
		}
	}
	p.logger.Info("Worker pool stopped")
	return err
}

//Personal.AI order the ending
