package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/midnight-circuit/pkg/apperror"
	"github.com/oksasatya/midnight-circuit/pkg/response"
)

// statusFor maps a semantic error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an error envelope. Storage and unknown errors are
// logged and reported without their cause.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, status, "internal server error", nil)
		return
	}

	msg := err.Error()
	var details any
	var ae *apperror.Error
	if errors.As(err, &ae) {
		if m := ae.Message(); m != "" {
			msg = m
		}
		if d := ae.Details(); len(d) > 0 {
			details = d
		}
	}
	response.Error[any](c, status, msg, details)
}

// currentEmail is the email of the authenticated caller set by middleware.Auth.
func currentEmail(c *gin.Context) string { return c.GetString("userEmail") }
