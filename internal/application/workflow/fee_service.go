package workflow

import (
	"context"
	"time"

	"github.com/turtacn/civil-general-applications/internal/domain/fee"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// FeeResult is the outcome of a fee computation.
type FeeResult struct {
	Application  generalapp.Application `json:"application"`
	Fee          generalapp.Fee         `json:"fee"`
	Candidates   []fee.Candidate        `json:"candidates"`
	Confirmation string                 `json:"confirmation,omitempty"`
}

// FeeService computes the fee for a general application.
type FeeService interface {
	// ComputeFee returns a copy of app carrying its fee.
	ComputeFee(ctx context.Context, app generalapp.Application) (*FeeResult, error)
}

// FeeServiceConfig holds tunables for the fee service.
type FeeServiceConfig struct {
	Keywords fee.Keywords
	// CaseDetailsBaseURL is linked from the payment confirmation. Empty
	// disables the confirmation body.
	CaseDetailsBaseURL string
	Now                func() time.Time
}

type feeServiceImpl struct {
	calculator *fee.Calculator
	creds      credentials
	baseURL    string
	metrics    *prometheus.EngineMetrics
	logger     logging.Logger
}

// NewFeeService constructs a FeeService. identity may be nil when no
// collaborator needs credentials.
func NewFeeService(
	lookup FeeLookup,
	identity IdentityResolver,
	metrics *prometheus.EngineMetrics,
	logger logging.Logger,
	cfg FeeServiceConfig,
) FeeService {
	if cfg.Keywords == (fee.Keywords{}) {
		cfg.Keywords = fee.DefaultKeywords()
	}
	if metrics == nil {
		metrics = prometheus.NewNopEngineMetrics()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	var opts []fee.Option
	if cfg.Now != nil {
		opts = append(opts, fee.WithClock(cfg.Now))
	}
	logger = logger.Named("fee")
	return &feeServiceImpl{
		calculator: fee.NewCalculator(lookup, cfg.Keywords, opts...),
		creds:      credentials{identity: identity, metrics: metrics, logger: logger},
		baseURL:    cfg.CaseDetailsBaseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// ComputeFee runs the fee assessment, retrying once with fresh credentials
// if the registry rejects the service token.
func (s *feeServiceImpl) ComputeFee(ctx context.Context, app generalapp.Application) (*FeeResult, error) {
	var assessment fee.Assessment
	err := s.creds.retryWithFreshCredentials(ctx, "fee_lookup", func(ctx context.Context) error {
		var err error
		assessment, err = s.calculator.Assess(ctx, app)
		return err
	})
	if err != nil {
		code := errors.GetCode(err)
		s.metrics.FeeComputationsTotal.WithLabelValues("none", string(code)).Inc()
		if code != errors.ErrCodeValidation {
			prometheus.RecordError(s.metrics, "fee", string(code))
			s.logger.Error("fee computation failed", logging.CaseReference(app.CaseReference), logging.Err(err))
		}
		return nil, err
	}

	s.metrics.FeeComputationsTotal.WithLabelValues(assessment.Fee.Code, "ok").Inc()
	s.logger.Info("fee computed",
		logging.CaseReference(app.CaseReference),
		logging.String("fee_code", assessment.Fee.Code),
		logging.Int64("amount_pence", assessment.Fee.AmountPence),
		logging.Int("candidates", len(assessment.Candidates)),
	)

	res := &FeeResult{
		Application: app.WithFee(assessment.Fee),
		Fee:         assessment.Fee,
		Candidates:  assessment.Candidates,
	}
	if s.baseURL != "" && !assessment.Fee.IsFree() {
		res.Confirmation = fee.ConfirmationBody(assessment.Fee, app.CaseReference, s.baseURL)
	}
	return res, nil
}

//Personal.AI order the ending
