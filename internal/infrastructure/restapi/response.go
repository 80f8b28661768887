package restapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wallet_dashboard/internal/domain/entity"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Data          any    `json:"data,omitempty"`
	StatusMessage string `json:"status_message"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, APIResponse{Data: data, StatusMessage: message})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnknownNetwork), errors.Is(err, entity.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrConnectionInProgress), errors.Is(err, entity.ErrAlreadyConnected):
		return http.StatusConflict
	case errors.Is(err, entity.ErrConnectionFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. data may carry the state the
// request left behind.
func respondError(c *gin.Context, err error, data any) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	respond(c, status, data, err.Error())
}
