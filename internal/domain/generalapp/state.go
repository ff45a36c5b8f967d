package generalapp

// CaseState is the lifecycle stage of a general application.
type CaseState string

const (
	AwaitingApplicationPayment     CaseState = "AWAITING_APPLICATION_PAYMENT"
	AwaitingRespondentResponse     CaseState = "AWAITING_RESPONDENT_RESPONSE"
	ApplicationAddPayment          CaseState = "APPLICATION_ADD_PAYMENT"
	AwaitingJudicialDecision       CaseState = "AWAITING_JUDICIAL_DECISION"
	AwaitingAdditionalInformation  CaseState = "AWAITING_ADDITIONAL_INFORMATION"
	AwaitingWrittenRepresentations CaseState = "AWAITING_WRITTEN_REPRESENTATIONS"
	AwaitingDirectionsOrderDocs    CaseState = "AWAITING_DIRECTIONS_ORDER_DOCS"
	ListingForHearing              CaseState = "LISTING_FOR_A_HEARING"
	OrderMade                      CaseState = "ORDER_MADE"
	ApplicationDismissed           CaseState = "APPLICATION_DISMISSED"
	ApplicationClosed              CaseState = "APPLICATION_CLOSED"
	ProceedsInHeritage             CaseState = "PROCEEDS_IN_HERITAGE"
)

// IsTerminal reports whether the state ends the application's lifecycle.
func (s CaseState) IsTerminal() bool {
	switch s {
	case ApplicationClosed, ApplicationDismissed, ProceedsInHeritage:
		return true
	}
	return false
}

// BusinessProcessStatus tracks the external workflow engine's progress.
type BusinessProcessStatus string

const (
	BusinessProcessReady    BusinessProcessStatus = "READY"
	BusinessProcessStarted  BusinessProcessStatus = "STARTED"
	BusinessProcessFinished BusinessProcessStatus = "FINISHED"
)

// CaseEvent names the next event the workflow engine must run.
type CaseEvent string

const (
	InitiateGeneralApplicationAfterPayment CaseEvent = "INITIATE_GENERAL_APPLICATION_AFTER_PAYMENT"
	InitiateCoSCApplicationAfterPayment    CaseEvent = "INITIATE_COSC_APPLICATION_AFTER_PAYMENT"
	UpdateGeneralApplicationAdditionalFee  CaseEvent = "UPDATE_GENERAL_APPLICATION_ADDITIONAL_FEE"
	NotifyApplicantLipHwf                  CaseEvent = "NOTIFY_APPLICANT_LIP_HWF"
	MakeDecision                           CaseEvent = "MAKE_DECISION"
)

// BusinessProcess is the record of which workflow event is pending.
type BusinessProcess struct {
	Status            BusinessProcessStatus `json:"status,omitempty"`
	CamundaEvent      CaseEvent             `json:"camundaEvent,omitempty"`
	ActivityID        string                `json:"activityId,omitempty"`
	ProcessInstanceID string                `json:"processInstanceId,omitempty"`
}

// ReadyFor returns a business process waiting to run event.
func ReadyFor(event CaseEvent) BusinessProcess {
	return BusinessProcess{Status: BusinessProcessReady, CamundaEvent: event}
}

//Personal.AI order the ending
