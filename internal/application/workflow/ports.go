// Package workflow orchestrates the general application engine: it calls the
// pure domain rules, talks to the external collaborators through the ports
// below, and publishes the business-process events that follow.
package workflow

import (
	"context"
	"time"

	"github.com/turtacn/civil-general-applications/internal/domain/decision"
	"github.com/turtacn/civil-general-applications/internal/domain/fee"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	"github.com/turtacn/civil-general-applications/internal/domain/notification"
)

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// FeeLookup resolves a fee from the fee registry.
type FeeLookup = fee.Lookup

// DocumentRequest describes the order document to produce for a decision.
type DocumentRequest struct {
	CaseReference       string             `json:"caseReference"`
	ParentCaseReference string             `json:"parentCaseReference"`
	Criterion           decision.Criterion `json:"criterion"`
	Decision            decision.Envelope  `json:"decision"`
	IssuedAt            time.Time          `json:"issuedAt"`
}

// DocumentReference points at a generated document.
type DocumentReference struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// DocumentGenerator renders and stores the order document.
type DocumentGenerator interface {
	GenerateDocument(ctx context.Context, req DocumentRequest, authToken string) (DocumentReference, error)
}

// PaymentRequest asks the payments service to settle a fee.
type PaymentRequest struct {
	CaseReference  string         `json:"caseReference"`
	HwfReference   string         `json:"hwfReference,omitempty"`
	Fee            generalapp.Fee `json:"fee"`
	IdempotencyKey string         `json:"idempotencyKey"`
}

// PaymentProcessor takes payment. A nil result with a nil error means the
// service gave no answer.
type PaymentProcessor interface {
	CreatePayment(ctx context.Context, req PaymentRequest) (*hwf.PaymentResult, error)
}

// NotificationSender delivers one templated message.
type NotificationSender interface {
	SendNotification(ctx context.Context, recipient string, template notification.TemplateKey, properties map[string]string, referenceID string) error
}

// Identity is the caller resolved from a bearer token.
type Identity struct {
	UserID   string   `json:"uid"`
	Email    string   `json:"email"`
	Forename string   `json:"forename,omitempty"`
	Surname  string   `json:"surname,omitempty"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether role is among the identity's roles.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IdentityResolver resolves caller tokens and supplies the engine's own
// service token. forceRefresh discards any cached service token.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (Identity, error)
	SystemToken(ctx context.Context, forceRefresh bool) (string, error)
}

// BusinessProcessEvent tells the workflow engine which case event to run.
type BusinessProcessEvent struct {
	ID            string               `json:"id"`
	CaseReference string               `json:"caseReference"`
	Event         generalapp.CaseEvent `json:"event"`
	State         generalapp.CaseState `json:"state,omitempty"`
	Source        string               `json:"source"`
	OccurredAt    time.Time            `json:"occurredAt"`
}

// EventPublisher publishes business-process events.
type EventPublisher interface {
	PublishBusinessProcess(ctx context.Context, evt BusinessProcessEvent) error
}

// Features are the feature flags, resolved once from configuration.
type Features struct {
	CoSCEnabled bool `json:"coscEnabled"`
}

//Personal.AI order the ending
