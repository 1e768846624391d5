package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/internal/chatbot"
	"github.com/taskpilot-dev/taskpilot/pkg/logger"
)

type ChatbotInput struct {
	UserInput string `json:"user_input" binding:"required"`
}

const fallbackReply = "Sorry, I could not map that request to an operation. Please try rephrasing it."

// Chatbot returns the handler for POST /chatbot_gpt/. A structured
// dispatch answers with {"response": {operation, result}}; everything
// else degrades to a plain-text reply.
func Chatbot(dispatcher *chatbot.Dispatcher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var body ChatbotInput

		if err := ctx.BindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		result, err := dispatcher.Dispatch(ctx.Request.Context(), body.UserInput)
		if err != nil {
			if errors.Is(err, chatbot.ErrBadDirective) {
				logger.Get().Warn().Err(err).Msg("rejected chatbot directive")
				ctx.JSON(http.StatusOK, gin.H{"response": fallbackReply})
				return
			}
			respondError(ctx, err)
			return
		}

		if result.Structured {
			ctx.JSON(http.StatusOK, gin.H{"response": gin.H{
				"operation": result.Operation,
				"result":    result.Payload,
			}})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"response": result.Text})
	}
}
