package client

import (
	"context"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/domain/decision"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// Wire types shared with the server.
type (
	Application      = generalapp.Application
	FeeResult        = workflow.FeeResult
	DecisionRequest  = workflow.DecisionRequest
	DecisionOutcome  = workflow.DecisionOutcome
	DecisionEnvelope = decision.Envelope
	HwfRequest       = workflow.HwfRequest
	HwfResult        = hwf.Result
	DeadlineQuery    = workflow.DeadlineQuery
	DeadlineResult   = workflow.DeadlineResult
)

type FeesClient struct {
	client *Client
}

// Compute prices app and returns it with the fee set.
func (f *FeesClient) Compute(ctx context.Context, app Application) (*FeeResult, error) {
	if len(app.Types) == 0 {
		return nil, errors.InvalidParam("application has no types")
	}
	var out FeeResult
	if err := f.client.post(ctx, "/fees", app, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type DecisionsClient struct {
	client *Client
}

// Decide records the decision: the order is generated and the parties are
// notified.
func (d *DecisionsClient) Decide(ctx context.Context, req DecisionRequest) (*DecisionOutcome, error) {
	return d.send(ctx, "/decisions", req)
}

// Evaluate classifies the decision without side effects.
func (d *DecisionsClient) Evaluate(ctx context.Context, req DecisionRequest) (*DecisionOutcome, error) {
	return d.send(ctx, "/decisions/evaluate", req)
}

func (d *DecisionsClient) send(ctx context.Context, path string, req DecisionRequest) (*DecisionOutcome, error) {
	if req.Decision.Kind == "" {
		return nil, errors.InvalidParam("decision kind required")
	}
	var out DecisionOutcome
	if err := d.client.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type HwfClient struct {
	client *Client
}

func (h *HwfClient) ApplyEvent(ctx context.Context, req HwfRequest) (*HwfResult, error) {
	if req.Event.Kind == "" {
		return nil, errors.InvalidParam("event kind required")
	}
	var out HwfResult
	if err := h.client.post(ctx, "/hwf/events", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type DeadlinesClient struct {
	client *Client
}

func (d *DeadlinesClient) Calculate(ctx context.Context, q DeadlineQuery) (*DeadlineResult, error) {
	var out DeadlineResult
	if err := d.client.post(ctx, "/deadlines", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
