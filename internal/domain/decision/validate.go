package decision

import (
	"time"

	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const (
	MsgPastDate                = "The date entered cannot be in the past"
	MsgRespondentDatePast      = "The date by which the respondent should respond cannot be in the past"
	MsgApplicantDatePast       = "The date by which the applicant should respond cannot be in the past"
	MsgApplicantBeforeRespond  = "The date by which the applicant should respond must be after the respondent's date"
	MsgConcurrentDatePast      = "The date by which both parties should respond cannot be in the past"
	MsgRequestInfoDateRequired = "Enter the date by which the information must be provided"
	MsgRequestInfoDatePast     = "The date by which the information must be provided cannot be in the past"
	MsgDirectionsRequired      = "Directions text is required when giving directions"
	MsgOrderTextRequired       = "Order text is required when approving an order"
	MsgUnknownOutcome          = "Select how the order disposes of the application"
	MsgUnknownOption           = "Select a valid option for this decision"
)

// Validate checks the user-correctable rules of d at now. Dates are compared
// as calendar days in now's location, so today is never in the past.
func Validate(d Decision, now time.Time) error {
	var msgs []string
	today := truncateDay(now)
	past := func(t time.Time) bool { return truncateDay(t.In(now.Location())).Before(today) }

	switch v := d.(type) {
	case *MakeOrder:
		return Validate(*v, now)
	case *WrittenRepresentations:
		return Validate(*v, now)
	case *RequestMoreInformation:
		return Validate(*v, now)
	case MakeOrder:
		switch v.Outcome {
		case OutcomeApproveOrEdit:
			if v.OrderText == "" {
				msgs = append(msgs, MsgOrderTextRequired)
			}
		case OutcomeGiveDirections:
			if !v.HasDirections() {
				msgs = append(msgs, MsgDirectionsRequired)
			}
		case OutcomeDismiss:
		default:
			msgs = append(msgs, MsgUnknownOutcome)
		}
		if v.OrderEndDate != nil && past(*v.OrderEndDate) {
			msgs = append(msgs, MsgPastDate)
		}
	case WrittenRepresentations:
		switch v.Option {
		case Sequential:
			if past(v.RespondentBy) {
				msgs = append(msgs, MsgRespondentDatePast)
			}
			if past(v.ApplicantBy) {
				msgs = append(msgs, MsgApplicantDatePast)
			}
			if !v.ApplicantBy.After(v.RespondentBy) {
				msgs = append(msgs, MsgApplicantBeforeRespond)
			}
		case Concurrent:
			if past(v.ConcurrentBy) {
				msgs = append(msgs, MsgConcurrentDatePast)
			}
		default:
			msgs = append(msgs, MsgUnknownOption)
		}
	case RequestMoreInformation:
		switch v.Option {
		case RequestMoreInfo, SendToOtherParty:
		default:
			msgs = append(msgs, MsgUnknownOption)
		}
		switch {
		case v.ByDate == nil || v.ByDate.IsZero():
			if v.Option == RequestMoreInfo {
				msgs = append(msgs, MsgRequestInfoDateRequired)
			}
		case past(*v.ByDate):
			msgs = append(msgs, MsgRequestInfoDatePast)
		}
	case ListForHearing:
	case nil:
		return errors.New(errors.ErrCodeUnknownDecision, "no decision supplied")
	default:
		return errors.New(errors.ErrCodeUnknownDecision, "unsupported decision kind")
	}

	if ve := errors.NewValidation(msgs...); ve != nil {
		return ve
	}
	return nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

//Personal.AI order the ending
