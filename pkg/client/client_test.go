package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/domain/calendar"
	"github.com/turtacn/civil-general-applications/internal/domain/decision"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	apihttp "github.com/turtacn/civil-general-applications/internal/interfaces/http"
	"github.com/turtacn/civil-general-applications/internal/interfaces/http/handlers"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetry(3, time.Millisecond, 5*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, StaticToken("test-token"), opts...)
	require.NoError(t, err)
	return c
}

type testLogger struct {
	mu      sync.Mutex
	lastMsg string
	count   int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }

func (l *testLogger) log(format string, args ...interface{}) {
	atomic.AddInt32(&l.count, 1)
	l.mu.Lock()
	l.lastMsg = fmt.Sprintf(format, args...)
	l.mu.Unlock()
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		tokens  TokenSource
	}{
		{"empty base url", "", StaticToken("t")},
		{"bad scheme", "ftp://api.example.com", StaticToken("t")},
		{"no token source", "http://api.example.com", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.baseURL, tt.tokens)
			assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
		})
	}
}

func TestNewClient_WithOptions(t *testing.T) {
	custom := &http.Client{Timeout: 10 * time.Second}
	logger := &testLogger{}
	c, err := NewClient("http://api.example.com/", StaticToken("t"),
		WithHTTPClient(custom),
		WithLogger(logger),
		WithRetry(5, time.Second, 100*time.Millisecond),
		WithUserAgent("caseworker-ui/2"),
	)
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Same(t, custom, c.httpClient)
	assert.Equal(t, logger, c.logger)
	assert.Equal(t, 5, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 5*time.Second, c.retryWaitMax)
	assert.Equal(t, "caseworker-ui/2", c.userAgent)

	c, err = NewClient("http://api.example.com", StaticToken("t"), WithHTTPClient(custom), WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.Equal(t, 10*time.Second, custom.Timeout)
}

func TestClient_SubClients_LazyInit(t *testing.T) {
	c, err := NewClient("http://api.example.com", StaticToken("t"))
	require.NoError(t, err)
	assert.Nil(t, c.fees)

	var wg sync.WaitGroup
	got := make([]*FeesClient, 50)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = c.Fees()
		}(i)
	}
	wg.Wait()
	for _, f := range got {
		assert.Same(t, got[0], f)
	}
	assert.Same(t, c.Decisions(), c.Decisions())
	assert.Same(t, c.Hwf(), c.Hwf())
	assert.Same(t, c.Deadlines(), c.Deadlines())
}

func TestClient_RequestHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/deadlines", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "gaengine-go-sdk/")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `{"formatted":"13 May 2024","holidaysKnown":1}`)
	})

	res, err := c.Deadlines().Calculate(context.Background(), DeadlineQuery{Days: 5})
	require.NoError(t, err)
	assert.Equal(t, "13 May 2024", res.Formatted)
}

func TestClient_ValidationErrorNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"code":"GA_001","message":"validation failed","errors":["Order text is required when approving an order"]}`)
	})

	_, err := c.Decisions().Evaluate(context.Background(), DecisionRequest{
		Decision: decision.Encode(decision.MakeOrder{Outcome: decision.OutcomeApproveOrEdit}),
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t, []string{"Order text is required when approving an order"}, apiErr.Errors)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ServerErrorRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"nextEvent":"NOTIFY_APPLICANT_LIP_HWF"}`)
	})

	res, err := c.Hwf().ApplyEvent(context.Background(), HwfRequest{Event: hwf.Event{Kind: hwf.EventFullRemission}})
	require.NoError(t, err)
	assert.Equal(t, generalapp.NotifyApplicantLipHwf, res.NextEvent)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ServerErrorExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"code":"COMMON_001","message":"internal server error"}`)
	}, WithRetry(2, 0, 0))

	_, err := c.Deadlines().Calculate(context.Background(), DeadlineQuery{Days: 1})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_RateLimitedHonoursRetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"formatted":"1 May 2024"}`)
	})

	_, err := c.Deadlines().Calculate(context.Background(), DeadlineQuery{Days: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetry(3, time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Deadlines().Calculate(ctx, DeadlineQuery{Days: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_TokenSourceFailure(t *testing.T) {
	c, err := NewClient("http://api.example.com", func(context.Context) (string, error) {
		return "", fmt.Errorf("idam down")
	})
	require.NoError(t, err)

	_, err = c.Deadlines().Calculate(context.Background(), DeadlineQuery{Days: 1})
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnauthorized))
}

func TestClient_LocalPreconditions(t *testing.T) {
	c, err := NewClient("http://api.example.com", StaticToken("t"))
	require.NoError(t, err)

	_, err = c.Fees().Compute(context.Background(), Application{})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	_, err = c.Decisions().Decide(context.Background(), DecisionRequest{})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
	_, err = c.Hwf().ApplyEvent(context.Background(), HwfRequest{})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestAPIError_Methods(t *testing.T) {
	e := &APIError{StatusCode: 429, Code: "COMMON_007", Message: "rate limited", RequestID: "r-1"}
	assert.True(t, e.IsRateLimited())
	assert.False(t, e.IsServerError())
	assert.Contains(t, e.Error(), "HTTP 429")
	assert.Contains(t, e.Error(), "request_id=r-1")

	assert.True(t, (&APIError{StatusCode: 401}).IsUnauthorized())
	assert.True(t, (&APIError{StatusCode: 400, Code: "GA_001"}).IsValidation())
}

// The SDK against the real router and services.
func TestClient_AgainstRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	deadlines := workflow.NewDeadlineService(nil, nil, workflow.DeadlineServiceConfig{
		Location: loc,
		StaticHolidays: []calendar.Holiday{
			{Date: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), Title: "Early May bank holiday"},
		},
	})
	hwfSvc := workflow.NewHwfService(nil, nil, nil, nil, nil, workflow.HwfServiceConfig{})
	decisions := workflow.NewDecisionService(nil, nil, nil, nil, nil, nil, workflow.DecisionServiceConfig{Location: loc})

	router := apihttp.NewRouter(apihttp.RouterConfig{
		DecisionHandler: handlers.NewDecisionHandler(decisions, nil),
		HwfHandler:      handlers.NewHwfHandler(hwfSvc, nil),
		DeadlineHandler: handlers.NewDeadlineHandler(deadlines, nil),
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, StaticToken("t"), WithRetry(0, 0, 0))
	require.NoError(t, err)
	ctx := context.Background()

	dl, err := c.Deadlines().Calculate(ctx, DeadlineQuery{
		Base: time.Date(2024, 5, 3, 10, 0, 0, 0, loc),
		Days: 5,
		Mode: workflow.ModeWorkingDays,
	})
	require.NoError(t, err)
	assert.Equal(t, "13 May 2024", dl.Formatted)

	res, err := c.Hwf().ApplyEvent(ctx, HwfRequest{
		CaseReference: "1700000000000003",
		Record: hwf.Record{
			ActiveFeeType:  hwf.FeeTypeApplication,
			Types:          []generalapp.ApplicationType{generalapp.ExtendTime},
			ApplicationFee: &generalapp.Fee{AmountPence: 27500, Code: "FEE0444", Version: "1"},
		},
		Event: hwf.Event{Kind: hwf.EventFullRemission},
	})
	require.NoError(t, err)
	assert.Equal(t, generalapp.NotifyApplicantLipHwf, res.NextEvent)

	out, err := c.Decisions().Evaluate(ctx, DecisionRequest{
		Application: generalapp.Application{
			CaseReference: "1700000000000002",
			Types:         []generalapp.ApplicationType{generalapp.ExtendTime},
			State:         generalapp.AwaitingJudicialDecision,
		},
		Decision: decision.Encode(decision.MakeOrder{Outcome: decision.OutcomeDismiss}),
	})
	require.NoError(t, err)
	assert.Equal(t, decision.JudgeDismissed, out.Criterion)
	assert.Equal(t, generalapp.ApplicationDismissed, out.NextState)

	_, err = c.Decisions().Evaluate(ctx, DecisionRequest{
		Application: generalapp.Application{CaseReference: "1700000000000002", State: generalapp.AwaitingJudicialDecision},
		Decision:    decision.Encode(decision.MakeOrder{Outcome: decision.OutcomeApproveOrEdit}),
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsValidation())
	assert.Contains(t, apiErr.Errors, decision.MsgOrderTextRequired)
}

//Personal.AI order the ending
