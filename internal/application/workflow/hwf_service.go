package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// HwfRequest is one Help with Fees action on a case.
type HwfRequest struct {
	CaseReference string     `json:"caseReference"`
	Record        hwf.Record `json:"record"`
	Event         hwf.Event  `json:"event"`
}

// RejectSuppliedPayment fails when the request carries its own payment
// result. Only the payments service reports whether a fee was paid, so the
// API and the worker refuse such requests.
func (r HwfRequest) RejectSuppliedPayment() error {
	if r.Event.Payment != nil {
		return errors.InvalidParam("payment result can only come from the payments service").WithDetail(r.CaseReference)
	}
	return nil
}

// paymentNamespace scopes payment idempotency keys.
var paymentNamespace = uuid.MustParse("6f1c3b0e-8a52-4d2f-9d8e-3c4b5a6f7e81")

// paymentKey is stable for one fee on one case, so a retried event cannot
// take the same payment twice.
func paymentKey(req HwfRequest, fee generalapp.Fee) string {
	name := strings.Join([]string{
		req.CaseReference,
		string(req.Record.ActiveFeeType),
		fee.Code,
		fee.Version,
		req.Record.ReferenceNumber,
	}, "|")
	return uuid.NewSHA1(paymentNamespace, []byte(name)).String()
}

// HwfService applies Help with Fees events.
type HwfService interface {
	// ApplyEvent validates and applies the event. For a payment outcome
	// without a payment result the payment is taken first.
	ApplyEvent(ctx context.Context, req HwfRequest) (*hwf.Result, error)
}

// HwfServiceConfig holds tunables for the HWF service.
type HwfServiceConfig struct {
	Features Features
	Now      func() time.Time
}

type hwfServiceImpl struct {
	workflow  *hwf.Workflow
	payments  PaymentProcessor
	publisher EventPublisher
	creds     credentials
	now       func() time.Time
	metrics   *prometheus.EngineMetrics
	logger    logging.Logger
}

// NewHwfService constructs an HwfService. payments and publisher may be nil.
func NewHwfService(
	payments PaymentProcessor,
	publisher EventPublisher,
	identity IdentityResolver,
	metrics *prometheus.EngineMetrics,
	logger logging.Logger,
	cfg HwfServiceConfig,
) HwfService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if metrics == nil {
		metrics = prometheus.NewNopEngineMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("hwf")
	return &hwfServiceImpl{
		workflow:  hwf.NewWorkflow(cfg.Features.CoSCEnabled, hwf.WithClock(cfg.Now)),
		payments:  payments,
		publisher: publisher,
		creds:     credentials{identity: identity, metrics: metrics, logger: logger},
		now:       cfg.Now,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *hwfServiceImpl) ApplyEvent(ctx context.Context, req HwfRequest) (*hwf.Result, error) {
	log := s.logger.With(
		logging.CaseReference(req.CaseReference),
		logging.String("event", string(req.Event.Kind)),
		logging.String("fee_type", string(req.Record.ActiveFeeType)),
	)

	ev := req.Event
	if ev.Kind == hwf.EventPaymentOutcome && ev.Payment == nil && s.payments != nil {
		if err := s.workflow.CheckPaymentOutcome(req.Record, ev); err != nil {
			s.record(req, "rejected")
			return nil, err
		}
		payment, err := s.takePayment(ctx, req)
		if err != nil {
			s.record(req, "failed")
			log.Error("payment request failed", logging.Err(err))
			return nil, err
		}
		ev.Payment = payment
	}

	res, err := s.workflow.Apply(req.Record, ev)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeValidation) {
			s.record(req, "rejected")
			log.Info("hwf event rejected", logging.Any("messages", errors.ValidationMessages(err)))
		} else {
			s.record(req, "failed")
			prometheus.RecordError(s.metrics, "hwf", string(errors.GetCode(err)))
			log.Error("hwf event failed", logging.Err(err))
		}
		return nil, err
	}
	s.record(req, "applied")

	if res.NextEvent != "" && s.publisher != nil {
		evt := BusinessProcessEvent{
			ID:            uuid.NewString(),
			CaseReference: req.CaseReference,
			Event:         res.NextEvent,
			Source:        "hwf",
			OccurredAt:    s.now().UTC(),
		}
		if err := s.publisher.PublishBusinessProcess(ctx, evt); err != nil {
			prometheus.RecordError(s.metrics, "hwf", string(errors.ErrCodeMessageQueueError))
			return &res, errors.Wrap(err, errors.ErrCodeMessageQueueError, "publish hwf event").WithDetail(req.CaseReference)
		}
	}

	log.Info("hwf event applied", logging.String("next_event", string(res.NextEvent)))
	return &res, nil
}

// takePayment asks the payments service to settle the active fee. A nil
// result is returned as is; the workflow turns it into a payment failure.
func (s *hwfServiceImpl) takePayment(ctx context.Context, req HwfRequest) (*hwf.PaymentResult, error) {
	fee := req.Record.ActiveFee()
	if fee == nil {
		return nil, errors.InconsistentState("fee missing for hwf fee type").WithDetail(string(req.Record.ActiveFeeType))
	}
	preq := PaymentRequest{
		CaseReference:  req.CaseReference,
		HwfReference:   req.Record.ReferenceNumber,
		Fee:            *fee,
		IdempotencyKey: paymentKey(req, *fee),
	}
	var result *hwf.PaymentResult
	err := s.creds.retryWithFreshCredentials(ctx, "create_payment", func(ctx context.Context) error {
		var err error
		result, err = s.payments.CreatePayment(ctx, preq)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePaymentFailed, errors.DefaultMessageForCode(errors.ErrCodePaymentFailed))
	}
	return result, nil
}

func (s *hwfServiceImpl) record(req HwfRequest, outcome string) {
	s.metrics.HwfEventsTotal.WithLabelValues(string(req.Event.Kind), string(req.Record.ActiveFeeType), outcome).Inc()
}

//Personal.AI order the ending
