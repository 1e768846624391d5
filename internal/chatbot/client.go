package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/taskpilot-dev/taskpilot/internal/config"
)

// ErrUnavailable marks a completion call that failed or timed out. The
// handler maps it to 503 rather than letting it crash the request.
var ErrUnavailable = errors.New("completion service unavailable")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  ToolParameters `json:"parameters"`
}

type ToolParameters struct {
	Type       string                  `json:"type"`
	Properties map[string]ToolProperty `json:"properties"`
	Required   []string                `json:"required,omitempty"`
}

type ToolProperty struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ToolCall is the structured action selected by the completion service.
// Arguments is the raw JSON object the service produced.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// Reply is a completion response reduced to what the dispatcher needs:
// an optional tool call and the assistant's text.
type Reply struct {
	Content  string
	ToolCall *ToolCall
}

// Completer performs one blocking chat-completion call.
type Completer interface {
	Complete(ctx context.Context, messages []Message, tools []Tool) (*Reply, error)
}

type chatRequest struct {
	Model      string    `json:"model,omitempty"`
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice string    `json:"tool_choice,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

// HTTPCompleter talks to an OpenAI-compatible chat-completions endpoint.
type HTTPCompleter struct {
	url        string
	apiKey     string
	authHeader string
	model      string
	client     *http.Client
}

func NewHTTPCompleter(cfg config.CompletionConfig) *HTTPCompleter {
	return &HTTPCompleter{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		authHeader: cfg.AuthHeaderName,
		model:      cfg.Model,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *HTTPCompleter) Complete(ctx context.Context, messages []Message, tools []Tool) (*Reply, error) {
	payload := chatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	}
	if len(tools) > 0 {
		payload.ToolChoice = "auto"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(c.authHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, raw)
	}

	var parsed chatResponse

	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: response contains no choices", ErrUnavailable)
	}

	message := parsed.Choices[0].Message
	reply := &Reply{Content: message.Content}

	if len(message.ToolCalls) > 0 {
		call := message.ToolCalls[0]
		reply.ToolCall = &ToolCall{
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		}
	}

	return reply, nil
}
