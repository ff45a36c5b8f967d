package hwf

import (
	"strings"
	"time"

	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// Validation messages returned to the caseworker.
const (
	MsgRemissionNotLessThanFee    = "Remission amount must be less than application fee"
	MsgRemissionNotLessThanAddFee = "Remission amount must be less than additional application fee"
	MsgRemissionNegative          = "Remission amount must not be negative"
	MsgIncorrectRemissionType     = "Incorrect remission type selected"
	MsgDocumentsDateNotFuture     = "Documents date must be future date"
	MsgFullRemissionZeroFee       = "Full remission cannot be applied to a zero fee"
	MsgReferenceRequired          = "Enter a Help with Fees reference number"
	MsgReferenceNotInvalid        = "Help with Fees reference can only be replaced after it was marked invalid"
)

// EventKind is the HWF action being applied.
type EventKind string

const (
	EventFullRemission    EventKind = "FULL_REMISSION"
	EventPartialRemission EventKind = "PARTIAL_REMISSION"
	EventNoRemission      EventKind = "NO_REMISSION"
	EventInvalidReference EventKind = "INVALID_REFERENCE"
	EventRequested        EventKind = "REQUESTED"
	EventMoreInformation  EventKind = "MORE_INFORMATION"
	EventPaymentOutcome   EventKind = "PAYMENT_OUTCOME"
)

// PaymentResult is what the payment collaborator returned.
type PaymentResult struct {
	Status       PaymentStatus `json:"status"`
	Reference    string        `json:"reference,omitempty"`
	ErrorCode    string        `json:"errorCode,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// Event is one HWF action and its payload. Only the fields of Kind are read.
type Event struct {
	Kind EventKind `json:"kind"`
	// RemissionPence is the partial remission.
	RemissionPence int64 `json:"remissionAmount,omitempty"`
	// NoRemissionReason explains a refusal.
	NoRemissionReason string `json:"noRemissionReason,omitempty"`
	// Reference is the replacement HWF reference for EventRequested.
	Reference       string                  `json:"reference,omitempty"`
	MoreInformation *MoreInformationRequest `json:"moreInformation,omitempty"`
	// FullRemissionGranted is the caseworker's answer on the payment outcome
	// screen; it is only consistent with a zero outstanding fee.
	FullRemissionGranted bool           `json:"fullRemissionGranted,omitempty"`
	Payment              *PaymentResult `json:"payment,omitempty"`
}

// Result is the updated record and the business-process event to run next.
// NextEvent is empty when nothing is to be started.
type Result struct {
	Record    Record               `json:"record"`
	NextEvent generalapp.CaseEvent `json:"nextEvent,omitempty"`
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock overrides the time source used for document-date checks.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// Workflow applies HWF events. It holds no per-case state.
type Workflow struct {
	coscEnabled bool
	now         func() time.Time
}

// NewWorkflow builds a Workflow. coscEnabled routes paid certificate of
// satisfaction applications to their own initiation event.
func NewWorkflow(coscEnabled bool, opts ...Option) *Workflow {
	w := &Workflow{coscEnabled: coscEnabled, now: time.Now}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Apply returns the record after ev. On error the input record is untouched
// and must be kept as is.
func (w *Workflow) Apply(rec Record, ev Event) (Result, error) {
	if rec.ActiveFeeType != FeeTypeApplication && rec.ActiveFeeType != FeeTypeAdditional {
		return Result{}, errors.InconsistentState("hwf fee type not set").WithDetail(string(rec.ActiveFeeType))
	}

	switch ev.Kind {
	case EventFullRemission:
		return w.fullRemission(rec)
	case EventPartialRemission:
		return w.partialRemission(rec, ev.RemissionPence)
	case EventNoRemission:
		return w.noRemission(rec, ev.NoRemissionReason)
	case EventInvalidReference:
		out, d := rec.withActive()
		d.CaseEvent = InvalidReference
		return notify(out), nil
	case EventRequested:
		return w.requested(rec, ev.Reference)
	case EventMoreInformation:
		return w.moreInformation(rec, ev.MoreInformation)
	case EventPaymentOutcome:
		return w.paymentOutcome(rec, ev)
	}
	return Result{}, errors.InvalidParam("unknown hwf event").WithDetail(string(ev.Kind))
}

func notify(rec Record) Result {
	rec.BusinessProcess = generalapp.ReadyFor(generalapp.NotifyApplicantLipHwf)
	return Result{Record: rec, NextEvent: generalapp.NotifyApplicantLipHwf}
}

func requireFee(rec Record) (generalapp.Fee, error) {
	fee := rec.ActiveFee()
	if fee == nil {
		return generalapp.Fee{}, errors.InconsistentState("fee missing for hwf fee type").WithDetail(string(rec.ActiveFeeType))
	}
	return *fee, nil
}

func (w *Workflow) fullRemission(rec Record) (Result, error) {
	fee, err := requireFee(rec)
	if err != nil {
		return Result{}, err
	}
	if fee.AmountPence <= 0 {
		return Result{}, errors.NewValidation(MsgFullRemissionZeroFee)
	}
	out, d := rec.withActive()
	d.RemissionPence = fee.AmountPence
	d.OutstandingFee = generalapp.PoundsFromPence(0)
	d.CaseEvent = FullRemission
	return notify(out), nil
}

func (w *Workflow) partialRemission(rec Record, remission int64) (Result, error) {
	fee, err := requireFee(rec)
	if err != nil {
		return Result{}, err
	}
	switch {
	case remission < 0:
		return Result{}, errors.NewValidation(MsgRemissionNegative)
	case remission >= fee.AmountPence && rec.ActiveFeeType == FeeTypeAdditional:
		return Result{}, errors.NewValidation(MsgRemissionNotLessThanAddFee)
	case remission >= fee.AmountPence:
		return Result{}, errors.NewValidation(MsgRemissionNotLessThanFee)
	}
	out, d := rec.withActive()
	d.RemissionPence = remission
	d.OutstandingFee = generalapp.PoundsFromPence(fee.AmountPence - remission)
	d.CaseEvent = PartialRemission
	return notify(out), nil
}

func (w *Workflow) noRemission(rec Record, reason string) (Result, error) {
	fee, err := requireFee(rec)
	if err != nil {
		return Result{}, err
	}
	out, d := rec.withActive()
	d.RemissionPence = 0
	d.OutstandingFee = fee.Pounds()
	d.NoRemissionReason = reason
	d.CaseEvent = NoRemission
	return notify(out), nil
}

// requested replaces the HWF reference after an invalid one. Amounts are left
// alone and no business process is started.
func (w *Workflow) requested(rec Record, reference string) (Result, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return Result{}, errors.NewValidation(MsgReferenceRequired)
	}
	if cur := rec.ActiveDetails(); cur == nil || cur.CaseEvent != InvalidReference {
		return Result{}, errors.NewValidation(MsgReferenceNotInvalid)
	}
	out, d := rec.withActive()
	out.ReferenceNumber = reference
	d.ReferenceNumber = reference
	d.CaseEvent = UpdateReference
	return Result{Record: out}, nil
}

func (w *Workflow) moreInformation(rec Record, req *MoreInformationRequest) (Result, error) {
	if req == nil || !afterToday(req.DocumentsDate, w.now()) {
		return Result{}, errors.NewValidation(MsgDocumentsDateNotFuture)
	}
	out, d := rec.withActive()
	mi := *req
	mi.Documents = append([]string(nil), req.Documents...)
	out.MoreInformation = &mi
	d.CaseEvent = MoreInformation
	return notify(out), nil
}

// CheckPaymentOutcome runs the payment outcome checks that do not need the
// payment result, so a caller can reject the request before taking payment.
func (w *Workflow) CheckPaymentOutcome(rec Record, ev Event) error {
	if rec.ActiveFeeType != FeeTypeApplication && rec.ActiveFeeType != FeeTypeAdditional {
		return errors.InconsistentState("hwf fee type not set").WithDetail(string(rec.ActiveFeeType))
	}
	d := rec.ActiveDetails()
	if d == nil {
		return errors.InconsistentState("hwf details missing for payment outcome").WithDetail(string(rec.ActiveFeeType))
	}
	if ev.FullRemissionGranted && !d.OutstandingFee.IsZero() {
		return errors.NewValidation(MsgIncorrectRemissionType)
	}
	return nil
}

func (w *Workflow) paymentOutcome(rec Record, ev Event) (Result, error) {
	if err := w.CheckPaymentOutcome(rec, ev); err != nil {
		return Result{}, err
	}
	if ev.Payment == nil {
		return Result{}, errors.New(errors.ErrCodePaymentFailed, errors.DefaultMessageForCode(errors.ErrCodePaymentFailed))
	}

	out, od := rec.withActive()
	if ev.Payment.Status != PaymentSuccess {
		out.PaymentError = &PaymentError{
			Status:       ev.Payment.Status,
			ErrorCode:    ev.Payment.ErrorCode,
			ErrorMessage: ev.Payment.ErrorMessage,
		}
		return Result{Record: out}, nil
	}

	out.PaymentError = nil
	od.CaseEvent = FeePaymentOutcome
	next := w.afterPayment(out)
	out.BusinessProcess = generalapp.ReadyFor(next)
	return Result{Record: out, NextEvent: next}, nil
}

func (w *Workflow) afterPayment(rec Record) generalapp.CaseEvent {
	if rec.ActiveFeeType == FeeTypeAdditional {
		return generalapp.UpdateGeneralApplicationAdditionalFee
	}
	if w.coscEnabled && (generalapp.Application{Types: rec.Types}).Has(generalapp.ConfirmCCJDebtPaid) {
		return generalapp.InitiateCoSCApplicationAfterPayment
	}
	return generalapp.InitiateGeneralApplicationAfterPayment
}

func afterToday(date, now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	dy, dm, dd := date.In(now.Location()).Date()
	return time.Date(dy, dm, dd, 0, 0, 0, 0, now.Location()).After(today)
}

//Personal.AI order the ending
