package decision

import (
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
)

// Criterion is the notification and processing category of a decision.
type Criterion string

const (
	ConcurrentWrittenRep      Criterion = "CONCURRENT_WRITTEN_REP"
	SequentialWrittenRep      Criterion = "SEQUENTIAL_WRITTEN_REP"
	ListForHearingCriterion   Criterion = "LIST_FOR_HEARING"
	JudgeApprovedOrder        Criterion = "JUDGE_APPROVED_THE_ORDER"
	JudgeApprovedOrderCloaked Criterion = "JUDGE_APPROVED_THE_ORDER_CLOAK"
	JudgeDismissed            Criterion = "JUDGE_DISMISSED_APPLICATION"
	JudgeDismissedCloaked     Criterion = "JUDGE_DISMISSED_APPLICATION_CLOAK"
	DirectionOrder            Criterion = "JUDGE_DIRECTION_ORDER"
	DirectionOrderCloaked     Criterion = "JUDGE_DIRECTION_ORDER_CLOAK"
	RequestForInformation     Criterion = "REQUEST_FOR_INFORMATION"
	NonCriterion              Criterion = "NON_CRITERION"
)

// Cloaked reports whether the criterion is an applicant-only cloaked variant.
func (c Criterion) Cloaked() bool {
	switch c {
	case JudgeApprovedOrderCloaked, JudgeDismissedCloaked, DirectionOrderCloaked:
		return true
	}
	return false
}

// Classify maps a decision and the case flags to a Criterion. Conditions are
// checked in a fixed order: written representations (concurrent, then
// sequential), list for hearing, approve, dismiss, directions, request for
// information. A request to send the application to the other party while the
// additional fee is still owed is not notified.
func Classify(d Decision, flags generalapp.CaseFlags, state generalapp.CaseState) Criterion {
	cloaked := flags.Cloaked()

	switch v := d.(type) {
	case WrittenRepresentations:
		switch v.Option {
		case Concurrent:
			return ConcurrentWrittenRep
		case Sequential:
			return SequentialWrittenRep
		}
	case *WrittenRepresentations:
		return Classify(*v, flags, state)
	case ListForHearing, *ListForHearing:
		return ListForHearingCriterion
	case MakeOrder:
		return classifyOrder(v, cloaked)
	case *MakeOrder:
		return classifyOrder(*v, cloaked)
	case RequestMoreInformation:
		return classifyRequest(v, state)
	case *RequestMoreInformation:
		return classifyRequest(*v, state)
	}
	return NonCriterion
}

func classifyOrder(m MakeOrder, cloaked bool) Criterion {
	switch m.Outcome {
	case OutcomeApproveOrEdit:
		if cloaked {
			return JudgeApprovedOrderCloaked
		}
		return JudgeApprovedOrder
	case OutcomeDismiss:
		if cloaked {
			return JudgeDismissedCloaked
		}
		return JudgeDismissed
	case OutcomeGiveDirections:
		if cloaked {
			return DirectionOrderCloaked
		}
		return DirectionOrder
	}
	return NonCriterion
}

func classifyRequest(r RequestMoreInformation, state generalapp.CaseState) Criterion {
	switch r.Option {
	case RequestMoreInfo:
		return RequestForInformation
	case SendToOtherParty:
		if state == generalapp.ApplicationAddPayment {
			return NonCriterion
		}
		return RequestForInformation
	}
	return NonCriterion
}

//Personal.AI order the ending
