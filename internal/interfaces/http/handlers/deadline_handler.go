package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
)

type DeadlineHandler struct {
	svc    workflow.DeadlineService
	logger logging.Logger
}

func NewDeadlineHandler(svc workflow.DeadlineService, logger logging.Logger) *DeadlineHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DeadlineHandler{svc: svc, logger: logger}
}

// Calculate handles POST /api/v1/deadlines.
func (h *DeadlineHandler) Calculate(c *gin.Context) {
	var q workflow.DeadlineQuery
	if !bindJSON(c, &q) {
		return
	}
	res, err := h.svc.Deadline(c.Request.Context(), q)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

//Personal.AI order the ending
