package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/listinghub/internal/apperr"
	"github.com/geocoder89/listinghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Details   any    `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(middlewares.CtxRequestID); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, message string, details any) {
	ctx.JSON(status, APIError{
		Message:   message,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details any) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondErr writes the status and message carried by an *apperr.Error.
// Anything else is logged and answered with 500 and fallback, so driver
// details never reach the client.
func RespondErr(ctx *gin.Context, err error, fallback string) {
	var appErr *apperr.Error

	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		RespondError(ctx, statusFor(appErr.Kind), appErr.Message, nil)
		return
	}

	slog.Default().ErrorContext(ctx.Request.Context(), "request_failed",
		"route", ctx.FullPath(),
		"request_id", requestIDFrom(ctx),
		"err", err,
	)
	RespondInternal(ctx, fallback)
}
