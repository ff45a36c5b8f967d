package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/domain/decision"
	"github.com/turtacn/civil-general-applications/internal/domain/notification"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const orderContentType = "text/plain; charset=utf-8"

// DocumentStore renders the judge's order as plain text and stores it in the
// order bucket.
type DocumentStore struct {
	client *Client
	logger logging.Logger
	newID  func() string
}

var _ workflow.DocumentGenerator = (*DocumentStore)(nil)

func NewDocumentStore(client *Client, log logging.Logger) *DocumentStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DocumentStore{client: client, logger: log.Named("documents"), newID: uuid.NewString}
}

// GenerateDocument stores the order under orders/<case>/<id>.txt. The object
// store has its own credentials so the service token is not forwarded.
func (s *DocumentStore) GenerateDocument(ctx context.Context, req workflow.DocumentRequest, _ string) (workflow.DocumentReference, error) {
	if req.CaseReference == "" {
		return workflow.DocumentReference{}, errors.InvalidParam("case reference required")
	}
	body, err := RenderOrder(req)
	if err != nil {
		return workflow.DocumentReference{}, err
	}

	id := s.newID()
	key := fmt.Sprintf("orders/%s/%s.txt", req.CaseReference, id)
	filename := fmt.Sprintf("%s_%s_%s.txt", orderTitlePrefix(req.Criterion), req.CaseReference, req.IssuedAt.Format("2006-01-02"))
	meta := map[string]string{
		"case-reference": req.CaseReference,
		"criterion":      string(req.Criterion),
	}
	if req.ParentCaseReference != "" {
		meta["parent-case-reference"] = req.ParentCaseReference
	}

	size, err := s.client.Put(ctx, key, bytes.NewReader(body), int64(len(body)), orderContentType, meta)
	if err != nil {
		return workflow.DocumentReference{}, err
	}
	link, err := s.client.PresignedURL(ctx, key, filename)
	if err != nil {
		return workflow.DocumentReference{}, err
	}

	s.logger.Info("Order document stored",
		logging.CaseReference(req.CaseReference),
		logging.String("key", key),
		logging.Int64("size", size))
	return workflow.DocumentReference{
		ID:          id,
		Filename:    filename,
		URL:         link,
		ContentType: orderContentType,
		Size:        size,
	}, nil
}

func orderTitlePrefix(c decision.Criterion) string {
	switch c {
	case decision.ConcurrentWrittenRep, decision.SequentialWrittenRep:
		return "Written_representations_order"
	case decision.ListForHearingCriterion:
		return "Hearing_order"
	case decision.JudgeDismissed, decision.JudgeDismissedCloaked:
		return "Dismissal_order"
	case decision.DirectionOrder, decision.DirectionOrderCloaked:
		return "Directions_order"
	case decision.RequestForInformation:
		return "Request_for_information"
	}
	return "General_order"
}

// RenderOrder produces the text of the order for req.
func RenderOrder(req workflow.DocumentRequest) ([]byte, error) {
	d, err := req.Decision.Decode()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", strings.ReplaceAll(orderTitlePrefix(req.Criterion), "_", " "))
	fmt.Fprintf(&b, "Claim number: %s\n", req.CaseReference)
	if req.ParentCaseReference != "" {
		fmt.Fprintf(&b, "Parent claim: %s\n", req.ParentCaseReference)
	}
	if !req.IssuedAt.IsZero() {
		fmt.Fprintf(&b, "Date: %s\n", req.IssuedAt.Format(notification.DeadlineLayout))
	}
	b.WriteString("\n")

	switch v := d.(type) {
	case decision.MakeOrder:
		switch {
		case v.Dismissed():
			b.WriteString("The application is dismissed.\n")
		case v.HasDirections():
			fmt.Fprintf(&b, "Directions:\n%s\n", v.DirectionsText)
		default:
			fmt.Fprintf(&b, "It is ordered that:\n%s\n", v.OrderText)
		}
		if v.OrderEndDate != nil {
			fmt.Fprintf(&b, "\nThis order has effect until %s.\n", v.OrderEndDate.Format(notification.DeadlineLayout))
		}
	case decision.ListForHearing:
		b.WriteString("The application will be listed for a hearing.\n")
		if v.HearingPreference != "" {
			fmt.Fprintf(&b, "Hearing type: %s\n", v.HearingPreference)
		}
		if v.TimeEstimate != "" {
			fmt.Fprintf(&b, "Time estimate: %s\n", v.TimeEstimate)
		}
		if v.Venue != "" {
			fmt.Fprintf(&b, "Venue: %s\n", v.Venue)
		}
	case decision.WrittenRepresentations:
		if v.Option == decision.Concurrent {
			fmt.Fprintf(&b, "Both parties must file written representations by %s.\n", v.ConcurrentBy.Format(notification.DeadlineLayout))
		} else {
			fmt.Fprintf(&b, "The respondent must file written representations by %s.\n", v.RespondentBy.Format(notification.DeadlineLayout))
			fmt.Fprintf(&b, "The applicant may reply by %s.\n", v.ApplicantBy.Format(notification.DeadlineLayout))
		}
	case decision.RequestMoreInformation:
		if v.Option == decision.SendToOtherParty {
			b.WriteString("The application must be sent to the other party.\n")
		} else {
			b.WriteString("The judge requires more information.\n")
		}
		if v.Detail != "" {
			fmt.Fprintf(&b, "%s\n", v.Detail)
		}
		if v.ByDate != nil {
			fmt.Fprintf(&b, "Respond by %s.\n", v.ByDate.Format(notification.DeadlineLayout))
		}
	default:
		return nil, errors.New(errors.ErrCodeUnknownDecision, "cannot render decision").WithDetail(string(d.Kind()))
	}
	return []byte(b.String()), nil
}

//Personal.AI order the ending
