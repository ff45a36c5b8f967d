package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/civil-general-applications/internal/domain/decision"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/notification"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// DecisionRequest is a judge's decision on one application.
type DecisionRequest struct {
	Application generalapp.Application `json:"application"`
	Decision    decision.Envelope      `json:"decision"`
	Parties     notification.Parties   `json:"parties"`
	Audience    notification.Audience  `json:"audience,omitempty"`
	// SkipDocument leaves document generation to a later step.
	SkipDocument bool `json:"skipDocument,omitempty"`
}

// DecisionOutcome is everything that follows from a decision.
type DecisionOutcome struct {
	Criterion     decision.Criterion          `json:"criterion"`
	PreviousState generalapp.CaseState        `json:"previousState"`
	NextState     generalapp.CaseState        `json:"nextState"`
	Application   generalapp.Application      `json:"application"`
	Document      *DocumentReference          `json:"document,omitempty"`
	Notifications []notification.Notification `json:"notifications"`
	Delivered     int                         `json:"delivered"`
}

// DecisionService applies judicial decisions.
type DecisionService interface {
	// Evaluate classifies the decision and computes the next state and the
	// recipients without calling any collaborator.
	Evaluate(ctx context.Context, req DecisionRequest) (*DecisionOutcome, error)
	// Decide evaluates the decision, generates the order, notifies the parties
	// and publishes the business-process event.
	Decide(ctx context.Context, req DecisionRequest) (*DecisionOutcome, error)
}

// DecisionServiceConfig holds tunables for the decision service.
type DecisionServiceConfig struct {
	Location *time.Location
	Now      func() time.Time
}

type decisionServiceImpl struct {
	documents  DocumentGenerator
	sender     NotificationSender
	publisher  EventPublisher
	dispatcher *notification.Dispatcher
	creds      credentials
	loc        *time.Location
	now        func() time.Time
	metrics    *prometheus.EngineMetrics
	logger     logging.Logger
}

// NewDecisionService constructs a DecisionService. Any collaborator may be
// nil, in which case that step is skipped.
func NewDecisionService(
	documents DocumentGenerator,
	sender NotificationSender,
	publisher EventPublisher,
	identity IdentityResolver,
	metrics *prometheus.EngineMetrics,
	logger logging.Logger,
	cfg DecisionServiceConfig,
) DecisionService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if metrics == nil {
		metrics = prometheus.NewNopEngineMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("decision")
	return &decisionServiceImpl{
		documents:  documents,
		sender:     sender,
		publisher:  publisher,
		dispatcher: notification.NewDispatcher(cfg.Location),
		creds:      credentials{identity: identity, metrics: metrics, logger: logger},
		loc:        cfg.Location,
		now:        cfg.Now,
		metrics:    metrics,
		logger:     logger,
	}
}

func (s *decisionServiceImpl) Evaluate(ctx context.Context, req DecisionRequest) (*DecisionOutcome, error) {
	d, err := req.Decision.Decode()
	if err != nil {
		return nil, err
	}
	if err := decision.Validate(d, s.now().In(s.loc)); err != nil {
		return nil, err
	}

	app := req.Application
	criterion := decision.Classify(d, app.Flags(), app.State)
	next := decision.NextState(d, app.State)

	parties := req.Parties
	parties.Flags = app.Flags()
	if parties.CaseReference == "" {
		parties.CaseReference = app.CaseReference
	}
	if parties.ParentCaseReference == "" {
		parties.ParentCaseReference = app.ParentCaseReference
	}
	if parties.ClaimSuperclass == "" {
		parties.ClaimSuperclass = app.ClaimSuperclass
	}
	if len(parties.Types) == 0 {
		parties.Types = app.Types
	}
	if wr, ok := d.(decision.WrittenRepresentations); ok {
		deadline := wr.Deadline()
		parties.Deadline = &deadline
	}

	return &DecisionOutcome{
		Criterion:     criterion,
		PreviousState: app.State,
		NextState:     next,
		Application:   app.WithState(next),
		Notifications: s.dispatcher.Recipients(criterion, parties, req.Audience),
	}, nil
}

func (s *decisionServiceImpl) Decide(ctx context.Context, req DecisionRequest) (*DecisionOutcome, error) {
	out, err := s.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	ref := req.Application.CaseReference
	log := s.logger.With(logging.CaseReference(ref), logging.String("criterion", string(out.Criterion)))

	s.metrics.DecisionsClassifiedTotal.WithLabelValues(string(out.Criterion)).Inc()
	if out.NextState != out.PreviousState {
		s.metrics.StateTransitionsTotal.WithLabelValues(string(out.PreviousState), string(out.NextState)).Inc()
	}

	if s.documents != nil && !req.SkipDocument {
		docReq := DocumentRequest{
			CaseReference:       ref,
			ParentCaseReference: req.Application.ParentCaseReference,
			Criterion:           out.Criterion,
			Decision:            req.Decision,
			IssuedAt:            s.now(),
		}
		err := s.creds.retryWithFreshCredentials(ctx, "generate_document", func(ctx context.Context) error {
			doc, err := s.documents.GenerateDocument(ctx, docReq, ServiceToken(ctx))
			if err != nil {
				return err
			}
			out.Document = &doc
			return nil
		})
		if err != nil {
			prometheus.RecordError(s.metrics, "decision", string(errors.ErrCodeDocumentGeneration))
			return nil, errors.Wrap(err, errors.ErrCodeDocumentGeneration, "generate order document").WithDetail(ref)
		}
	}

	// Notification failures do not hold back the state transition; the
	// aggregated error is returned once the event is out.
	var notifyErr error
	if s.sender != nil {
		var failed int
		for _, n := range out.Notifications {
			reference := fmt.Sprintf("general-application-%s-%s", ref, uuid.NewString())
			err := s.creds.retryWithFreshCredentials(ctx, "send_notification", func(ctx context.Context) error {
				return s.sender.SendNotification(ctx, n.Recipient.Email, n.Template, n.Properties, reference)
			})
			if err != nil {
				failed++
				s.metrics.NotificationsTotal.WithLabelValues(string(n.Template), "failed").Inc()
				log.Error("notification failed", logging.String("template", string(n.Template)), logging.Err(err))
				continue
			}
			out.Delivered++
			s.metrics.NotificationsTotal.WithLabelValues(string(n.Template), "sent").Inc()
		}
		if failed > 0 {
			prometheus.RecordError(s.metrics, "decision", string(errors.ErrCodeNotificationFailed))
			notifyErr = errors.New(errors.ErrCodeNotificationFailed, "notification delivery failed").
				WithDetail(fmt.Sprintf("%d of %d failed", failed, len(out.Notifications)))
		}
	}

	if s.publisher != nil {
		evt := BusinessProcessEvent{
			ID:            uuid.NewString(),
			CaseReference: ref,
			Event:         generalapp.MakeDecision,
			State:         out.NextState,
			Source:        "decision",
			OccurredAt:    s.now().UTC(),
		}
		if err := s.publisher.PublishBusinessProcess(ctx, evt); err != nil {
			prometheus.RecordError(s.metrics, "decision", string(errors.GetCode(err)))
			return out, errors.Wrap(err, errors.ErrCodeMessageQueueError, "publish decision event").WithDetail(ref)
		}
	}

	if notifyErr != nil {
		return out, notifyErr
	}
	log.Info("decision applied",
		logging.String("from", string(out.PreviousState)),
		logging.String("to", string(out.NextState)),
		logging.Int("notified", out.Delivered),
	)
	return out, nil
}

//Personal.AI order the ending
