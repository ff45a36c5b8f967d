package decision

import (
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
)

// NextState returns the case state after d. Only one rule fires:
//
//   - a dismissing order ends in ApplicationDismissed
//   - an order with directions text waits for the directions order documents
//   - a request for more information waits for that information
//   - an order for written representations waits for them
//
// Any other decision leaves current unchanged. Dismissal is checked before
// directions text, so a dismissing order that also carries directions is
// dismissed.
func NextState(d Decision, current generalapp.CaseState) generalapp.CaseState {
	switch v := d.(type) {
	case MakeOrder:
		return nextForOrder(v, current)
	case *MakeOrder:
		return nextForOrder(*v, current)
	case RequestMoreInformation, *RequestMoreInformation:
		return generalapp.AwaitingAdditionalInformation
	case WrittenRepresentations, *WrittenRepresentations:
		return generalapp.AwaitingWrittenRepresentations
	}
	return current
}

func nextForOrder(m MakeOrder, current generalapp.CaseState) generalapp.CaseState {
	if m.Dismissed() {
		return generalapp.ApplicationDismissed
	}
	if m.HasDirections() {
		return generalapp.AwaitingDirectionsOrderDocs
	}
	return current
}

//Personal.AI order the ending
