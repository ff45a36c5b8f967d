// Package generalapp holds the shared model of a general application: the
// selected application types, the notice and agreement flags, the computed fee
// and the lifecycle state. The cloaking and free-application predicates live
// here and nowhere else.
package generalapp

import (
	"fmt"
	"time"

	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// ApplicationType is one of the multi-selectable application types.
type ApplicationType string

const (
	StrikeOut            ApplicationType = "STRIKE_OUT"
	SummaryJudgement     ApplicationType = "SUMMARY_JUDGEMENT"
	StayTheClaim         ApplicationType = "STAY_THE_CLAIM"
	ExtendTime           ApplicationType = "EXTEND_TIME"
	AmendStatementOfCase ApplicationType = "AMEND_A_STMT_OF_CASE"
	ReliefFromSanctions  ApplicationType = "RELIEF_FROM_SANCTIONS"
	SetAsideJudgment     ApplicationType = "SET_ASIDE_JUDGEMENT"
	SettleByConsent      ApplicationType = "SETTLE_BY_CONSENT"
	VaryOrder            ApplicationType = "VARY_ORDER"
	AdjournHearing       ApplicationType = "ADJOURN_HEARING"
	UnlessOrder          ApplicationType = "UNLESS_ORDER"
	Other                ApplicationType = "OTHER"
	VaryPaymentTerms     ApplicationType = "VARY_PAYMENT_TERMS_OF_JUDGMENT"
	ConfirmCCJDebtPaid   ApplicationType = "CONFIRM_CCJ_DEBT_PAID"
)

var knownTypes = map[ApplicationType]struct{}{
	StrikeOut: {}, SummaryJudgement: {}, StayTheClaim: {}, ExtendTime: {},
	AmendStatementOfCase: {}, ReliefFromSanctions: {}, SetAsideJudgment: {},
	SettleByConsent: {}, VaryOrder: {}, AdjournHearing: {}, UnlessOrder: {},
	Other: {}, VaryPaymentTerms: {}, ConfirmCCJDebtPaid: {},
}

// Valid reports whether t is a known application type.
func (t ApplicationType) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// ClaimSuperclass distinguishes damages (unspecified) claims from specified
// claims. It drives the strike-out notification templates.
type ClaimSuperclass string

const (
	ClaimUnspecified ClaimSuperclass = "UNSPEC_CLAIM"
	ClaimSpecified   ClaimSuperclass = "SPEC_CLAIM"
)

// CaseFlags are the two flags the cloaking rule is computed from.
type CaseFlags struct {
	WithNotice       bool `json:"withNotice"`
	RespondentAgreed bool `json:"respondentAgreed"`
}

// Cloaked reports whether the application is hidden from the other party.
func (f CaseFlags) Cloaked() bool {
	return IsCloaked(f.RespondentAgreed, f.WithNotice)
}

// IsCloaked is true only when the respondent has not agreed and the
// application was made without notice.
func IsCloaked(respondentAgreed, withNotice bool) bool {
	return !respondentAgreed && !withNotice
}

// FreeApplicationWindow is how far beyond now a hearing must be for an agreed
// adjournment to be free.
const FreeApplicationWindow = 14 * 24 * time.Hour

// IsFreeApplication reports whether the fee is waived: the sole type is
// AdjournHearing, the respondent agreed, and a hearing is scheduled more than
// 14 days after now. A missing hearing date is never free.
func IsFreeApplication(types []ApplicationType, respondentAgreed bool, hearingDate *time.Time, now time.Time) bool {
	if len(types) != 1 || types[0] != AdjournHearing || !respondentAgreed {
		return false
	}
	if hearingDate == nil || hearingDate.IsZero() {
		return false
	}
	return hearingDate.After(now.Add(FreeApplicationWindow))
}

// Application is an immutable snapshot of the general application read from
// the case record. Components return modified copies.
type Application struct {
	CaseReference       string            `json:"caseReference"`
	ParentCaseReference string            `json:"parentCaseReference"`
	Types               []ApplicationType `json:"types"`
	Urgent              bool              `json:"urgent"`
	WithNotice          bool              `json:"withNotice"`
	RespondentAgreed    bool              `json:"respondentAgreed"`
	ConsentOrder        bool              `json:"consentOrder"`
	MultiParty          bool              `json:"multiParty"`
	HearingDate         *time.Time        `json:"hearingDate,omitempty"`
	ClaimSuperclass     ClaimSuperclass   `json:"claimSuperclass,omitempty"`
	Fee                 *Fee              `json:"fee,omitempty"`
	BusinessProcess     BusinessProcess   `json:"businessProcess"`
	State               CaseState         `json:"state"`
}

// Validate checks the structural invariants: a non-empty set of known types
// with no duplicates.
func (a Application) Validate() error {
	if len(a.Types) == 0 {
		return errors.NewValidation("At least one application type must be selected")
	}
	seen := make(map[ApplicationType]struct{}, len(a.Types))
	var msgs []string
	for _, t := range a.Types {
		if !t.Valid() {
			msgs = append(msgs, fmt.Sprintf("Unknown application type %q", t))
			continue
		}
		if _, dup := seen[t]; dup {
			msgs = append(msgs, fmt.Sprintf("Application type %s selected more than once", t))
		}
		seen[t] = struct{}{}
	}
	if ve := errors.NewValidation(msgs...); ve != nil {
		return ve
	}
	return nil
}

// Has reports whether t is among the selected types.
func (a Application) Has(t ApplicationType) bool {
	for _, x := range a.Types {
		if x == t {
			return true
		}
	}
	return false
}

func (a Application) Flags() CaseFlags {
	return CaseFlags{WithNotice: a.WithNotice, RespondentAgreed: a.RespondentAgreed}
}

func (a Application) Cloaked() bool {
	return a.Flags().Cloaked()
}

func (a Application) IsFree(now time.Time) bool {
	return IsFreeApplication(a.Types, a.RespondentAgreed, a.HearingDate, now)
}

// WithFee returns a copy carrying fee.
func (a Application) WithFee(fee Fee) Application {
	a.Types = append([]ApplicationType(nil), a.Types...)
	a.Fee = &fee
	return a
}

// WithState returns a copy in state s.
func (a Application) WithState(s CaseState) Application {
	a.Types = append([]ApplicationType(nil), a.Types...)
	a.State = s
	return a
}

//Personal.AI order the ending
