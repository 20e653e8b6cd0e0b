package controllers

import (
	"errors"
	"net/http"

	"github.com/CUknot/fairmind/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrResolutionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyVoted),
		errors.Is(err, service.ErrRoomFull),
		errors.Is(err, service.ErrRoomNotActive),
		errors.Is(err, service.ErrGenerationInProgress),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInsufficientContext):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrTranscriptionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Internal failures are logged and
// reported without detail.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	switch status {
	case http.StatusInternalServerError:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		body["error"] = service.ErrInternal.Error()
	case http.StatusTooManyRequests:
		body["remaining"] = 0
	}
	c.AbortWithStatusJSON(status, body)
}

func currentUser(c *gin.Context) uint {
	return c.MustGet("userID").(uint)
}
