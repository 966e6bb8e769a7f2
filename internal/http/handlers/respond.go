package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the wire shape for every domain failure:
// {"error": {"name": ..., "message": ...}}.
type APIError struct {
	Name    string      `json:"name"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func RespondError(ctx *gin.Context, status int, name, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Name:    name,
			Message: message,
			Details: details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "InvalidRequest", message, details)
}

// RespondUnauthorized is deliberately uniform: missing header, bad token and
// unknown user all look the same to the caller.
func RespondUnauthorized(ctx *gin.Context) {
	RespondError(ctx, http.StatusUnauthorized, "Unauthorized", "Request is unauthorized!", nil)
}

func RespondUnprocessable(ctx *gin.Context, name, message string) {
	RespondError(ctx, http.StatusUnprocessableEntity, name, message, nil)
}

func RespondUpstreamUnavailable(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadGateway, "UpstreamUnavailable", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "InternalError", message, nil)
}
