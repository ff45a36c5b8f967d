package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/domain/generalapp"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
)

// FeeHandler serves fee computation.
type FeeHandler struct {
	svc    workflow.FeeService
	logger logging.Logger
}

func NewFeeHandler(svc workflow.FeeService, logger logging.Logger) *FeeHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FeeHandler{svc: svc, logger: logger}
}

// Compute handles POST /api/v1/fees. The body is the application; the
// response carries it back with its fee.
func (h *FeeHandler) Compute(c *gin.Context) {
	var app generalapp.Application
	if !bindJSON(c, &app) {
		return
	}
	res, err := h.svc.ComputeFee(c.Request.Context(), app)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

//Personal.AI order the ending
