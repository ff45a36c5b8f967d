package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/civil-general-applications/internal/application/workflow"
	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
)

// HwfHandler serves Help with Fees events.
type HwfHandler struct {
	svc    workflow.HwfService
	logger logging.Logger
}

func NewHwfHandler(svc workflow.HwfService, logger logging.Logger) *HwfHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HwfHandler{svc: svc, logger: logger}
}

// ApplyEvent handles POST /api/v1/hwf/events.
func (h *HwfHandler) ApplyEvent(c *gin.Context) {
	var req workflow.HwfRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.RejectSuppliedPayment(); err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	res, err := h.svc.ApplyEvent(c.Request.Context(), req)
	if err != nil {
		writeAppError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

//Personal.AI order the ending
