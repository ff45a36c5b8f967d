package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// ErrorResponse is the error body of every endpoint. Errors carries the
// user-facing validation messages.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// bindJSON decodes the body into dst and writes a 400 when it cannot.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Code:    string(errors.ErrCodeBadRequest),
			Message: "malformed request body",
			Errors:  []string{err.Error()},
		})
		return false
	}
	return true
}

// writeAppError maps err to its status. Server-side failures are masked.
func writeAppError(c *gin.Context, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)
	_ = c.Error(err)

	resp := ErrorResponse{Code: string(code), Message: errors.DefaultMessageForCode(code)}
	switch {
	case code == errors.ErrCodeValidation:
		resp.Errors = errors.ValidationMessages(err)
	case status < http.StatusInternalServerError:
		resp.Message = err.Error()
	default:
		logger.Error("Request failed", logging.String("path", c.FullPath()), logging.Err(err))
	}
	c.AbortWithStatusJSON(status, resp)
}

//Personal.AI order the ending
