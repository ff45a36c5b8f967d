package worker

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/domain/decision"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/civil-general-applications/internal/testutil"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

type mockDecisionService struct{ mock.Mock }

func (m *mockDecisionService) Evaluate(ctx context.Context, req workflow.DecisionRequest) (*workflow.DecisionOutcome, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(*workflow.DecisionOutcome)
	return out, args.Error(1)
}

func (m *mockDecisionService) Decide(ctx context.Context, req workflow.DecisionRequest) (*workflow.DecisionOutcome, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(*workflow.DecisionOutcome)
	return out, args.Error(1)
}

type mockHwfService struct{ mock.Mock }

func (m *mockHwfService) ApplyEvent(ctx context.Context, req workflow.HwfRequest) (*hwf.Result, error) {
	args := m.Called(ctx, req)
	out, _ := args.Get(0).(*hwf.Result)
	return out, args.Error(1)
}

type fakeLocker struct {
	mu       sync.Mutex
	acquired []string
	released int
	err      error
}

func (l *fakeLocker) Acquire(_ context.Context, ref string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, ref)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, nil
}

func message(t *testing.T, eventType, ref string, payload interface{}) kafkago.Message {
	t.Helper()
	env, err := kafka.NewEventEnvelope(eventType, "test", ref, payload)
	require.NoError(t, err)
	msg, err := env.ToMessage("in")
	require.NoError(t, err)
	return msg
}

func decisionRequest() workflow.DecisionRequest {
	return workflow.DecisionRequest{
		Application: generalapp.Application{State: generalapp.AwaitingJudicialDecision},
		Decision:    decision.Encode(decision.MakeOrder{Outcome: decision.OutcomeDismiss}),
	}
}

func TestHandleDecision_LocksAndDecides(t *testing.T) {
	decisions := &mockDecisionService{}
	locker := &fakeLocker{}
	h := NewHandlers(decisions, nil, locker, nil)

	decisions.On("Decide", mock.Anything, mock.MatchedBy(func(r workflow.DecisionRequest) bool {
		return r.Application.CaseReference == "1234"
	})).Return(&workflow.DecisionOutcome{Criterion: decision.JudgeDismissed, NextState: generalapp.OrderMade}, nil).Once()

	require.NoError(t, h.HandleDecision(context.Background(), message(t, kafka.EventDecisionRequested, "1234", decisionRequest())))
	assert.Equal(t, []string{"1234"}, locker.acquired)
	assert.Equal(t, 1, locker.released)
	decisions.AssertExpectations(t)
}

func TestHandleDecision_NotificationFailureNotRetried(t *testing.T) {
	decisions := &mockDecisionService{}
	logger := testutil.NewRecordingLogger()
	h := NewHandlers(decisions, nil, nil, logger)
	decisions.On("Decide", mock.Anything, mock.Anything).
		Return(&workflow.DecisionOutcome{}, errors.New(errors.ErrCodeNotificationFailed, "1 of 2 failed")).Once()

	assert.NoError(t, h.HandleDecision(context.Background(), message(t, kafka.EventDecisionRequested, "1234", decisionRequest())))
	assert.True(t, logger.Has("error", "Decision applied with failed notifications"))
	ref, ok := logger.Field("Decision applied with failed notifications", "case_reference")
	require.True(t, ok)
	assert.Equal(t, "1234", ref.Value)
}

func TestHandleDecision_Errors(t *testing.T) {
	decisions := &mockDecisionService{}
	locker := &fakeLocker{}
	h := NewHandlers(decisions, nil, locker, nil)

	// wrong event type
	err := h.HandleDecision(context.Background(), message(t, kafka.EventHwfRequested, "1234", decisionRequest()))
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))

	// no case reference anywhere
	err = h.HandleDecision(context.Background(), message(t, kafka.EventDecisionRequested, "", decisionRequest()))
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))

	// service failure is returned for retry and the lock is still released
	decisions.On("Decide", mock.Anything, mock.Anything).Return(nil, errors.New(errors.ErrCodeDocumentGeneration, "minio down")).Once()
	err = h.HandleDecision(context.Background(), message(t, kafka.EventDecisionRequested, "1234", decisionRequest()))
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentGeneration))
	assert.Equal(t, 1, locker.released)

	locker.err = errors.New(errors.ErrCodeConflict, "failed to acquire case lock")
	err = h.HandleDecision(context.Background(), message(t, kafka.EventDecisionRequested, "1234", decisionRequest()))
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
	decisions.AssertNumberOfCalls(t, "Decide", 1)
}

func TestHandleHwf(t *testing.T) {
	svc := &mockHwfService{}
	locker := &fakeLocker{}
	h := NewHandlers(nil, svc, locker, nil)

	req := workflow.HwfRequest{Event: hwf.Event{Kind: hwf.EventFullRemission}}
	svc.On("ApplyEvent", mock.Anything, mock.MatchedBy(func(r workflow.HwfRequest) bool {
		return r.CaseReference == "5678"
	})).Return(&hwf.Result{NextEvent: generalapp.CaseEvent("NOTIFY_APPLICANT_LIP_HWF")}, nil).Once()

	require.NoError(t, h.HandleHwf(context.Background(), message(t, kafka.EventHwfRequested, "5678", req)))
	assert.Equal(t, []string{"5678"}, locker.acquired)
	svc.AssertExpectations(t)
}

func TestHandleHwf_RejectsPaymentResultInMessage(t *testing.T) {
	svc := &mockHwfService{}
	locker := &fakeLocker{}
	h := NewHandlers(nil, svc, locker, nil)

	req := workflow.HwfRequest{Event: hwf.Event{
		Kind:    hwf.EventPaymentOutcome,
		Payment: &hwf.PaymentResult{Status: hwf.PaymentSuccess},
	}}
	err := h.HandleHwf(context.Background(), message(t, kafka.EventHwfRequested, "5678", req))

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	assert.Empty(t, locker.acquired)
	svc.AssertNotCalled(t, "ApplyEvent", mock.Anything, mock.Anything)
}

type fakeConsumer struct {
	mu     sync.Mutex
	topics []string
	closed bool
	err    error
}

func (c *fakeConsumer) Subscribe(topic string, _ kafka.Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
}

func (c *fakeConsumer) Run(ctx context.Context) error {
	if c.err != nil {
		return c.err
	}
	<-ctx.Done()
	return nil
}

func (c *fakeConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestPool_RunAndStop(t *testing.T) {
	a, b := &fakeConsumer{}, &fakeConsumer{}
	p := NewPool([]Consumer{a, b}, Topics{Decision: "ga.decision.requested", Hwf: "ga.hwf.requested"}, NewHandlers(nil, nil, nil, nil), nil)
	assert.Equal(t, []string{"ga.decision.requested", "ga.hwf.requested"}, a.topics)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()
	require.NoError(t, <-done)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestPool_MemberFailureStopsAll(t *testing.T) {
	bad := &fakeConsumer{err: stderrors.New("broker gone")}
	good := &fakeConsumer{}
	p := NewPool([]Consumer{bad, good}, Topics{Decision: "d"}, NewHandlers(nil, nil, nil, nil), nil)

	err := p.Run(context.Background())
	assert.EqualError(t, err, "broker gone")
	assert.True(t, good.closed)
}

//Personal.AI order the ending
