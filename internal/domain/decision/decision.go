// Package decision models a judge's decision on a general application and
// derives from it the notification criterion and the next case state.
//
// Decision is a closed sum type: only the four variants in this package
// implement it, so a type switch over Decision covers every kind.
package decision

import (
	"strings"
	"time"
)

// Kind names a decision variant on the wire.
type Kind string

const (
	KindMakeOrder              Kind = "MAKE_AN_ORDER"
	KindListForHearing         Kind = "LIST_FOR_A_HEARING"
	KindWrittenRepresentations Kind = "MAKE_ORDER_FOR_WRITTEN_REPRESENTATIONS"
	KindRequestMoreInformation Kind = "REQUEST_MORE_INFO"
)

// Decision is implemented by MakeOrder, ListForHearing, WrittenRepresentations
// and RequestMoreInformation.
type Decision interface {
	Kind() Kind
	sealed()
}

// OrderOutcome is what a MakeOrder decision does with the application.
type OrderOutcome string

const (
	OutcomeApproveOrEdit  OrderOutcome = "APPROVE_OR_EDIT"
	OutcomeDismiss        OrderOutcome = "DISMISS_THE_APPLICATION"
	OutcomeGiveDirections OrderOutcome = "GIVE_DIRECTIONS_WITHOUT_HEARING"
)

// MakeOrder approves, dismisses or gives directions.
type MakeOrder struct {
	Outcome        OrderOutcome `json:"outcome"`
	OrderText      string       `json:"orderText,omitempty"`
	DirectionsText string       `json:"directionsText,omitempty"`
	// OrderEndDate is optional; when set it must not be in the past.
	OrderEndDate *time.Time `json:"orderEndDate,omitempty"`
}

func (MakeOrder) Kind() Kind { return KindMakeOrder }
func (MakeOrder) sealed()    {}

// Dismissed reports whether the order dismisses the application.
func (m MakeOrder) Dismissed() bool { return m.Outcome == OutcomeDismiss }

// HasDirections reports whether non-blank directions text is present.
func (m MakeOrder) HasDirections() bool { return strings.TrimSpace(m.DirectionsText) != "" }

// ListForHearing sends the application to a hearing.
type ListForHearing struct {
	HearingPreference string `json:"hearingPreference,omitempty"`
	TimeEstimate      string `json:"timeEstimate,omitempty"`
	Venue             string `json:"venue,omitempty"`
}

func (ListForHearing) Kind() Kind { return KindListForHearing }
func (ListForHearing) sealed()    {}

// WrittenRepOption selects sequential or concurrent written representations.
type WrittenRepOption string

const (
	Sequential WrittenRepOption = "SEQUENTIAL_REPRESENTATIONS"
	Concurrent WrittenRepOption = "CONCURRENT_REPRESENTATIONS"
)

// WrittenRepresentations orders the parties to make written submissions.
// Sequential orders use RespondentBy then ApplicantBy; concurrent orders use
// ConcurrentBy for both parties.
type WrittenRepresentations struct {
	Option       WrittenRepOption `json:"option"`
	RespondentBy time.Time        `json:"respondentBy,omitempty"`
	ApplicantBy  time.Time        `json:"applicantBy,omitempty"`
	ConcurrentBy time.Time        `json:"concurrentBy,omitempty"`
}

func (WrittenRepresentations) Kind() Kind { return KindWrittenRepresentations }
func (WrittenRepresentations) sealed()    {}

// Deadline is the date quoted to the parties: the respondent's date for a
// sequential order, the shared date for a concurrent one.
func (w WrittenRepresentations) Deadline() time.Time {
	if w.Option == Concurrent {
		return w.ConcurrentBy
	}
	return w.RespondentBy
}

// RequestMoreInfoOption selects how the judge wants more information.
type RequestMoreInfoOption string

const (
	RequestMoreInfo  RequestMoreInfoOption = "REQUEST_MORE_INFORMATION"
	SendToOtherParty RequestMoreInfoOption = "SEND_APP_TO_OTHER_PARTY"
)

// RequestMoreInformation asks for more information by ByDate.
type RequestMoreInformation struct {
	Option RequestMoreInfoOption `json:"option"`
	Detail string                `json:"detail,omitempty"`
	ByDate *time.Time            `json:"byDate,omitempty"`
}

func (RequestMoreInformation) Kind() Kind { return KindRequestMoreInformation }
func (RequestMoreInformation) sealed()    {}

//Personal.AI order the ending
