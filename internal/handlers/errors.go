package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/internal/chatbot"
	"github.com/taskpilot-dev/taskpilot/internal/store"
	"github.com/taskpilot-dev/taskpilot/pkg/logger"
)

// respondError maps domain errors to HTTP statuses and renders the
// {"error": ...} envelope. Unknown errors are logged and hidden behind a
// generic message.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUserNotFound), errors.Is(err, store.ErrTaskNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrUsernameTaken), errors.Is(err, store.ErrEmailTaken):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, chatbot.ErrUnavailable):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "completion service unavailable"})
	default:
		logger.Get().Error().
			Err(err).
			Str("method", ctx.Request.Method).
			Str("path", ctx.FullPath()).
			Msg("unhandled error")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// idParam parses a positive integer path parameter. On failure it renders
// a 400 and returns false.
func idParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}

	return uint(id), true
}
