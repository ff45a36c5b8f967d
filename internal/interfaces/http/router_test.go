package http

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/config"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/domain/hwf"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/auth/idam"
	"github.com/turtacn/civil-general-applications/internal/interfaces/http/handlers"
	"github.com/turtacn/civil-general-applications/internal/interfaces/http/middleware"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

type mockFeeService struct{ mock.Mock }

func (m *mockFeeService) ComputeFee(ctx context.Context, app generalapp.Application) (*workflow.FeeResult, error) {
	args := m.Called(ctx, app)
	res, _ := args.Get(0).(*workflow.FeeResult)
	return res, args.Error(1)
}

type mockDecisionService struct{ mock.Mock }

func (m *mockDecisionService) Evaluate(ctx context.Context, req workflow.DecisionRequest) (*workflow.DecisionOutcome, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*workflow.DecisionOutcome)
	return res, args.Error(1)
}

func (m *mockDecisionService) Decide(ctx context.Context, req workflow.DecisionRequest) (*workflow.DecisionOutcome, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*workflow.DecisionOutcome)
	return res, args.Error(1)
}

type mockHwfService struct{ mock.Mock }

func (m *mockHwfService) ApplyEvent(ctx context.Context, req workflow.HwfRequest) (*hwf.Result, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*hwf.Result)
	return res, args.Error(1)
}

type stubResolver struct{}

func (stubResolver) ResolveIdentity(_ context.Context, token string) (workflow.Identity, error) {
	switch token {
	case "judge":
		return workflow.Identity{UserID: "j1", Roles: []string{string(idam.RoleJudge)}}, nil
	case "staff":
		return workflow.Identity{UserID: "s1", Roles: []string{string(idam.RoleCaseworker)}}, nil
	}
	return workflow.Identity{}, errors.Unauthorized("unknown token")
}

func (stubResolver) SystemToken(context.Context, bool) (string, error) { return "sys", nil }

type RouterSuite struct {
	suite.Suite
	fees      *mockFeeService
	decisions *mockDecisionService
	hwf       *mockHwfService
	router    *gin.Engine
}

func (s *RouterSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.fees = &mockFeeService{}
	s.decisions = &mockDecisionService{}
	s.hwf = &mockHwfService{}

	s.router = NewRouter(RouterConfig{
		FeeHandler:      handlers.NewFeeHandler(s.fees, nil),
		DecisionHandler: handlers.NewDecisionHandler(s.decisions, nil),
		HwfHandler:      handlers.NewHwfHandler(s.hwf, nil),
		DeadlineHandler: handlers.NewDeadlineHandler(workflow.NewDeadlineService(nil, nil, workflow.DeadlineServiceConfig{CutOffHour: 16}), nil),
		HealthHandler: handlers.NewHealthHandler("test",
			handlers.CheckFunc("redis", func(context.Context) error { return nil })),
		AuthMiddleware: middleware.NewAuthMiddleware(stubResolver{}, nil, middleware.AuthMiddlewareConfig{}),
		Enforcer:       idam.NewEnforcer(nil, nil),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics")) }),
	})
}

func (s *RouterSuite) TearDownTest() {
	s.fees.AssertExpectations(s.T())
	s.decisions.AssertExpectations(s.T())
	s.hwf.AssertExpectations(s.T())
}

func (s *RouterSuite) post(path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) TestProbesAndMetricsArePublic() {
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		s.Equal(http.StatusOK, w.Code, path)
	}
}

func (s *RouterSuite) TestAPIRequiresToken() {
	s.Equal(http.StatusUnauthorized, s.post("/api/v1/fees", "", `{}`).Code)
	s.Equal(http.StatusUnauthorized, s.post("/api/v1/fees", "nobody", `{}`).Code)
}

func (s *RouterSuite) TestComputeFee() {
	s.fees.On("ComputeFee", mock.Anything, mock.Anything).
		Return(&workflow.FeeResult{Fee: generalapp.Fee{AmountPence: 27500, Code: "FEE0443", Version: "2"}}, nil)

	w := s.post("/api/v1/fees", "staff", `{}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var got workflow.FeeResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
	s.Equal(int64(27500), got.Fee.AmountPence)
	s.Equal("FEE0443", got.Fee.Code)
}

func (s *RouterSuite) TestValidationMessagesReturned() {
	s.hwf.On("ApplyEvent", mock.Anything, mock.Anything).
		Return(nil, errors.NewValidation("Documents date must be future date"))

	w := s.post("/api/v1/hwf/events", "staff", `{"caseReference":"1234","event":{"kind":"MORE_INFORMATION"}}`)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	var body handlers.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(string(errors.ErrCodeValidation), body.Code)
	s.Equal([]string{"Documents date must be future date"}, body.Errors)
}

func (s *RouterSuite) TestHwfRejectsCallerPaymentResult() {
	w := s.post("/api/v1/hwf/events", "staff",
		`{"caseReference":"1234","event":{"kind":"PAYMENT_OUTCOME","payment":{"status":"SUCCESS"}}}`)
	s.Equal(http.StatusBadRequest, w.Code)

	var body handlers.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(string(errors.CodeInvalidParam), body.Code)
	s.hwf.AssertNotCalled(s.T(), "ApplyEvent", mock.Anything, mock.Anything)
}

func (s *RouterSuite) TestServerErrorsAreMasked() {
	s.fees.On("ComputeFee", mock.Anything, mock.Anything).
		Return(nil, errors.Wrap(assert.AnError, errors.ErrCodeInconsistentState, "secret detail"))

	w := s.post("/api/v1/fees", "staff", `{}`)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "secret detail")
}

func (s *RouterSuite) TestDecisionNeedsJudge() {
	s.Equal(http.StatusForbidden, s.post("/api/v1/decisions", "staff", `{}`).Code)

	s.decisions.On("Decide", mock.Anything, mock.Anything).
		Return(&workflow.DecisionOutcome{NextState: generalapp.OrderMade}, nil)
	w := s.post("/api/v1/decisions", "judge", `{}`)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"nextState":"ORDER_MADE"`)
}

func (s *RouterSuite) TestMalformedBody() {
	w := s.post("/api/v1/decisions/evaluate", "judge", `{not json`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestDeadline() {
	w := s.post("/api/v1/deadlines", "staff", `{"base":"2024-05-03T10:00:00Z","days":5,"mode":"working_days"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"formatted":"10 May 2024"`)

	w = s.post("/api/v1/deadlines", "staff", `{"base":"2024-05-03T10:00:00Z","days":-1}`)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func TestServer_ServeAndStop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(config.ServerConfig{Port: 0, ShutdownTimeout: time.Second},
		NewRouter(RouterConfig{HealthHandler: handlers.NewHealthHandler("test")}), nil)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Stop(context.Background()))
	assert.NoError(t, <-done)
}

//Personal.AI order the ending
