package notification

// TemplateKey identifies a notification template. Keys are mapped to provider
// template ids by configuration.
type TemplateKey string

const (
	ConcurrentRepsApplicant  TemplateKey = "written-reps-concurrent-applicant"
	ConcurrentRepsRespondent TemplateKey = "written-reps-concurrent-respondent"
	SequentialRepsApplicant  TemplateKey = "written-reps-sequential-applicant"
	SequentialRepsRespondent TemplateKey = "written-reps-sequential-respondent"

	ListForHearingApplicant  TemplateKey = "list-for-hearing-applicant"
	ListForHearingRespondent TemplateKey = "list-for-hearing-respondent"

	ApprovedOrderApplicant        TemplateKey = "approved-order-applicant"
	ApprovedOrderApplicantCloaked TemplateKey = "approved-order-applicant-cloaked"
	ApprovedOrderRespondent       TemplateKey = "approved-order-respondent"
	StrikeOutDamages              TemplateKey = "approved-order-strike-out-damages"
	StrikeOutSpecified            TemplateKey = "approved-order-strike-out-specified"

	DismissedApplicant        TemplateKey = "dismissed-applicant"
	DismissedApplicantCloaked TemplateKey = "dismissed-applicant-cloaked"
	DismissedRespondent       TemplateKey = "dismissed-respondent"

	DirectionOrderApplicant        TemplateKey = "direction-order-applicant"
	DirectionOrderApplicantCloaked TemplateKey = "direction-order-applicant-cloaked"
	DirectionOrderRespondent       TemplateKey = "direction-order-respondent"

	RequestInfoApplicant  TemplateKey = "request-more-info-applicant"
	RequestInfoRespondent TemplateKey = "request-more-info-respondent"

	HwfOutcomeApplicant TemplateKey = "hwf-outcome-applicant"
)

// AllTemplateKeys lists every key, for configuration checks.
func AllTemplateKeys() []TemplateKey {
	return []TemplateKey{
		ConcurrentRepsApplicant, ConcurrentRepsRespondent,
		SequentialRepsApplicant, SequentialRepsRespondent,
		ListForHearingApplicant, ListForHearingRespondent,
		ApprovedOrderApplicant, ApprovedOrderApplicantCloaked, ApprovedOrderRespondent,
		StrikeOutDamages, StrikeOutSpecified,
		DismissedApplicant, DismissedApplicantCloaked, DismissedRespondent,
		DirectionOrderApplicant, DirectionOrderApplicantCloaked, DirectionOrderRespondent,
		RequestInfoApplicant, RequestInfoRespondent,
		HwfOutcomeApplicant,
	}
}

//Personal.AI order the ending
