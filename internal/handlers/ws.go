package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskpilot-dev/taskpilot/internal/chatbot"
	"github.com/taskpilot-dev/taskpilot/internal/types"
	"github.com/taskpilot-dev/taskpilot/pkg/logger"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxMessageSize  = 4096
	dispatchTimeout = 30 * time.Second
)

// WebSocketChat upgrades the connection and runs a chat loop: each text
// frame carrying {"user_input": ...} is dispatched and the reply written
// back as JSON. Connections are independent; no state is shared.
func WebSocketChat(dispatcher *chatbot.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				for _, allowed := range types.AllowedOrigins {
					if origin == allowed {
						return true
					}
				}
				return false
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Get().Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		defer conn.Close()

		conn.SetReadLimit(maxMessageSize)
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		done := make(chan struct{})
		defer close(done)

		go func() {
			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()

			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
						return
					}
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()

		for {
			if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
				return
			}

			messageType, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Get().Warn().Err(err).Msg("websocket read failed")
				}
				return
			}

			if messageType != websocket.TextMessage {
				continue
			}

			var input ChatbotInput

			if err := json.Unmarshal(message, &input); err != nil || input.UserInput == "" {
				writeChatReply(conn, gin.H{"error": "expected {\"user_input\": string}"})
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
			result, err := dispatcher.Dispatch(ctx, input.UserInput)
			cancel()

			switch {
			case errors.Is(err, chatbot.ErrBadDirective):
				writeChatReply(conn, gin.H{"response": fallbackReply})
			case errors.Is(err, chatbot.ErrUnavailable):
				writeChatReply(conn, gin.H{"error": "completion service unavailable"})
			case err != nil:
				writeChatReply(conn, gin.H{"error": err.Error()})
			case result.Structured:
				writeChatReply(conn, gin.H{"response": gin.H{
					"operation": result.Operation,
					"result":    result.Payload,
				}})
			default:
				writeChatReply(conn, gin.H{"response": result.Text})
			}
		}
	}
}

func writeChatReply(conn *websocket.Conn, payload interface{}) {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return
	}
	if err := conn.WriteJSON(payload); err != nil {
		logger.Get().Warn().Err(err).Msg("websocket write failed")
	}
}
