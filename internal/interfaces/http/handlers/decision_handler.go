package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
)

// DecisionHandler serves judicial decisions.
type DecisionHandler struct {
	svc    workflow.DecisionService
	logger logging.Logger
}

func NewDecisionHandler(svc workflow.DecisionService, logger logging.Logger) *DecisionHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DecisionHandler{svc: svc, logger: logger}
}

// Decide handles POST /api/v1/decisions.
func (h *DecisionHandler) Decide(c *gin.Context) {
	h.handle(c, h.svc.Decide)
}

// Evaluate handles POST /api/v1/decisions/evaluate. Nothing is sent or stored.
func (h *DecisionHandler) Evaluate(c *gin.Context) {
	h.handle(c, h.svc.Evaluate)
}

func (h *DecisionHandler) handle(c *gin.Context, run func(ctx context.Context, req workflow.DecisionRequest) (*workflow.DecisionOutcome, error)) {
	var req workflow.DecisionRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := run(c.Request.Context(), req)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

//Personal.AI order the ending
