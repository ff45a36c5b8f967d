// Package worker consumes decision and Help with Fees requests from Kafka and
// applies them one case at a time.
package worker

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// CaseLocker serialises work on one case. The redis case locker implements it.
type CaseLocker interface {
	Acquire(ctx context.Context, caseReference string) (release func(context.Context) error, err error)
}

// Handlers turns envelopes into service calls.
type Handlers struct {
	decisions workflow.DecisionService
	hwf       workflow.HwfService
	locker    CaseLocker
	logger    logging.Logger
}

// NewHandlers wires the handlers. A nil locker runs without case locking.
func NewHandlers(decisions workflow.DecisionService, hwf workflow.HwfService, locker CaseLocker, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Handlers{decisions: decisions, hwf: hwf, locker: locker, logger: logger.Named("worker")}
}

// HandleDecision runs a recorded decision. Notification failures are logged
// and not retried: the transition event and the other notices have already gone out.
func (h *Handlers) HandleDecision(ctx context.Context, msg kafkago.Message) error {
	var req workflow.DecisionRequest
	ref, err := decode(msg, kafka.EventDecisionRequested, &req)
	if err != nil {
		return err
	}
	if ref == "" {
		ref = req.Application.CaseReference
	}
	if req.Application.CaseReference == "" {
		req.Application.CaseReference = ref
	}

	return h.withCase(ctx, ref, func(ctx context.Context) error {
		out, err := h.decisions.Decide(ctx, req)
		if errors.IsCode(err, errors.ErrCodeNotificationFailed) {
			h.logger.Error("Decision applied with failed notifications", logging.CaseReference(ref), logging.Err(err))
			return nil
		}
		if err != nil {
			return err
		}
		h.logger.Info("Decision applied",
			logging.CaseReference(ref),
			logging.String("criterion", string(out.Criterion)),
			logging.String("next_state", string(out.NextState)))
		return nil
	})
}

// HandleHwf applies one Help with Fees event. Payment results are never
// taken from the message.
func (h *Handlers) HandleHwf(ctx context.Context, msg kafkago.Message) error {
	var req workflow.HwfRequest
	ref, err := decode(msg, kafka.EventHwfRequested, &req)
	if err != nil {
		return err
	}
	if req.CaseReference == "" {
		req.CaseReference = ref
	}
	if err := req.RejectSuppliedPayment(); err != nil {
		return err
	}

	return h.withCase(ctx, req.CaseReference, func(ctx context.Context) error {
		res, err := h.hwf.ApplyEvent(ctx, req)
		if err != nil {
			return err
		}
		h.logger.Info("HWF event applied",
			logging.CaseReference(req.CaseReference),
			logging.String("kind", string(req.Event.Kind)),
			logging.String("next_event", string(res.NextEvent)))
		return nil
	})
}

func (h *Handlers) withCase(ctx context.Context, ref string, fn func(context.Context) error) error {
	if ref == "" {
		return errors.InvalidParam("case reference required")
	}
	if h.locker == nil {
		return fn(ctx)
	}
	release, err := h.locker.Acquire(ctx, ref)
	if err != nil {
		return err
	}
	defer func() {
		// release even if ctx was cancelled mid-handler
		if err := release(context.WithoutCancel(ctx)); err != nil {
			h.logger.Warn("Case lock release failed", logging.CaseReference(ref), logging.Err(err))
		}
	}()
	return fn(ctx)
}

// decode unwraps the envelope and returns its case reference.
func decode(msg kafkago.Message, eventType string, target interface{}) (string, error) {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return "", err
	}
	if env.EventType != eventType {
		return "", errors.New(errors.ErrCodeSerialization, "unexpected event type").WithDetail(env.EventType)
	}
	if err := env.DecodePayload(target); err != nil {
		return "", err
	}
	return env.CaseReference, nil
}

//Personal.AI order the ending
