// Package notification decides who is told about a judicial decision and
// which template each recipient gets. It returns data only; delivery belongs
// to the caller.
package notification

import (
	"strings"
	"time"

	"github.com/turtacn/civil-general-applications/internal/domain/decision"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
)

// DeadlineLayout is how written-representation deadlines appear in templates.
const DeadlineLayout = "2 January 2006"

// Property keys passed to templates.
const (
	PropCaseReference       = "caseReference"
	PropParentCaseReference = "claimReferenceNumber"
	PropRecipientName       = "recipientName"
	PropDeadline            = "deadline"
)

// Audience restricts which parties a dispatch reaches.
type Audience int

const (
	AudienceAll Audience = iota
	AudienceRespondentsOnly
	AudienceApplicantOnly
)

func (a Audience) String() string {
	switch a {
	case AudienceRespondentsOnly:
		return "respondents"
	case AudienceApplicantOnly:
		return "applicant"
	default:
		return "all"
	}
}

func (a Audience) includesRespondents() bool { return a != AudienceApplicantOnly }
func (a Audience) includesApplicant() bool   { return a != AudienceRespondentsOnly }

// Role is the side a recipient acts for.
type Role string

const (
	RoleApplicant  Role = "APPLICANT"
	RoleRespondent Role = "RESPONDENT"
)

// Recipient is one addressee. Recipients without an email are skipped.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

// Parties is the case data the dispatcher reads.
type Parties struct {
	CaseReference        string                       `json:"caseReference"`
	ParentCaseReference  string                       `json:"parentCaseReference"`
	Applicant            Recipient                    `json:"applicant"`
	RespondentSolicitors []Recipient                  `json:"respondentSolicitors"`
	Flags                generalapp.CaseFlags         `json:"flags"`
	ClaimSuperclass      generalapp.ClaimSuperclass   `json:"claimSuperclass,omitempty"`
	Types                []generalapp.ApplicationType `json:"types"`
	// Deadline is the written-representation date quoted to the parties.
	Deadline *time.Time `json:"deadline,omitempty"`
}

// Notification is one message to send.
type Notification struct {
	Recipient  Recipient         `json:"recipient"`
	Template   TemplateKey       `json:"template"`
	Properties map[string]string `json:"properties"`
}

type templatePair struct {
	applicant, applicantCloaked, respondent TemplateKey
}

var templatesByCriterion = map[decision.Criterion]templatePair{
	decision.ConcurrentWrittenRep:      {ConcurrentRepsApplicant, ConcurrentRepsApplicant, ConcurrentRepsRespondent},
	decision.SequentialWrittenRep:      {SequentialRepsApplicant, SequentialRepsApplicant, SequentialRepsRespondent},
	decision.ListForHearingCriterion:   {ListForHearingApplicant, ListForHearingApplicant, ListForHearingRespondent},
	decision.JudgeApprovedOrder:        {ApprovedOrderApplicant, ApprovedOrderApplicantCloaked, ApprovedOrderRespondent},
	decision.JudgeApprovedOrderCloaked: {ApprovedOrderApplicant, ApprovedOrderApplicantCloaked, ApprovedOrderRespondent},
	decision.JudgeDismissed:            {DismissedApplicant, DismissedApplicantCloaked, DismissedRespondent},
	decision.JudgeDismissedCloaked:     {DismissedApplicant, DismissedApplicantCloaked, DismissedRespondent},
	decision.DirectionOrder:            {DirectionOrderApplicant, DirectionOrderApplicantCloaked, DirectionOrderRespondent},
	decision.DirectionOrderCloaked:     {DirectionOrderApplicant, DirectionOrderApplicantCloaked, DirectionOrderRespondent},
	decision.RequestForInformation:     {RequestInfoApplicant, RequestInfoApplicant, RequestInfoRespondent},
}

// Dispatcher computes recipients and templates. The zero value formats
// deadlines in UTC.
type Dispatcher struct {
	loc *time.Location
}

// NewDispatcher formats deadlines in loc.
func NewDispatcher(loc *time.Location) *Dispatcher {
	return &Dispatcher{loc: loc}
}

// StrikeOutTemplate picks the approved-order template family for a strike-out
// application by claim type. ok is false when the application is not a strike
// out or the claim type is unknown, in which case the generic template applies.
func StrikeOutTemplate(types []generalapp.ApplicationType, claim generalapp.ClaimSuperclass) (TemplateKey, bool) {
	if !(generalapp.Application{Types: types}).Has(generalapp.StrikeOut) {
		return "", false
	}
	switch claim {
	case generalapp.ClaimUnspecified:
		return StrikeOutDamages, true
	case generalapp.ClaimSpecified:
		return StrikeOutSpecified, true
	}
	return "", false
}

// Recipients returns the notifications for criterion, respondent solicitors
// first and the applicant last. The cloaked order, dismissal and direction
// criteria reach the applicant alone. NonCriterion yields nothing.
func (d *Dispatcher) Recipients(criterion decision.Criterion, parties Parties, audience Audience) []Notification {
	pair, ok := templatesByCriterion[criterion]
	if !ok {
		return nil
	}

	cloaked := criterion.Cloaked()
	applicantTpl, respondentTpl := pair.applicant, pair.respondent
	if cloaked {
		applicantTpl = pair.applicantCloaked
	}
	if criterion == decision.JudgeApprovedOrder && !cloaked {
		if tpl, ok := StrikeOutTemplate(parties.Types, parties.ClaimSuperclass); ok {
			applicantTpl, respondentTpl = tpl, tpl
		}
	}

	var out []Notification
	if !cloaked && audience.includesRespondents() {
		for _, r := range parties.RespondentSolicitors {
			if strings.TrimSpace(r.Email) == "" {
				continue
			}
			r.Role = RoleRespondent
			out = append(out, d.build(r, respondentTpl, criterion, parties))
		}
	}
	if audience.includesApplicant() && strings.TrimSpace(parties.Applicant.Email) != "" {
		a := parties.Applicant
		a.Role = RoleApplicant
		out = append(out, d.build(a, applicantTpl, criterion, parties))
	}
	return out
}

func (d *Dispatcher) build(r Recipient, tpl TemplateKey, criterion decision.Criterion, p Parties) Notification {
	props := map[string]string{
		PropCaseReference:       p.CaseReference,
		PropParentCaseReference: p.ParentCaseReference,
	}
	if r.Name != "" {
		props[PropRecipientName] = r.Name
	}
	if (criterion == decision.ConcurrentWrittenRep || criterion == decision.SequentialWrittenRep) && p.Deadline != nil {
		props[PropDeadline] = d.FormatDeadline(*p.Deadline)
	}
	return Notification{Recipient: r, Template: tpl, Properties: props}
}

// FormatDeadline renders t as written in templates, for example "10 January 2024".
// The date is taken as given, not recomputed.
func (d *Dispatcher) FormatDeadline(t time.Time) string {
	if d != nil && d.loc != nil {
		t = t.In(d.loc)
	}
	return t.Format(DeadlineLayout)
}

//Personal.AI order the ending
