package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"github.com/taskpilot-dev/taskpilot/internal/store"
	"github.com/taskpilot-dev/taskpilot/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrBadDirective marks a tool call the dispatcher refuses to execute:
// unknown operation, missing required parameter, or wrongly typed
// parameter. No store call happens when it is returned.
var ErrBadDirective = errors.New("malformed directive")

const systemPrompt = `You are a backend assistant for a user and task management API.
Understand the user's intent and call the matching tool with every required parameter filled in.

Interpret completion phrases as the boolean "completed" parameter:
- "not completed", "incomplete", "not done", "still pending" mean false
- "completed", "done", "finished", "already completed" mean true

Always produce valid JSON arguments and match parameter names exactly.
If required information is missing, answer in plain text asking for it instead of calling a tool.`

// Result is the outcome of one dispatched exchange. Structured results
// carry the executed operation and its payload; otherwise Text holds the
// conversational fallback reply.
type Result struct {
	Structured bool
	Operation  string
	Payload    interface{}
	Text       string
}

// Dispatcher is stateless across requests; no conversation memory is kept.
type Dispatcher struct {
	db        *gorm.DB
	completer Completer
	log       zerolog.Logger
}

func NewDispatcher(db *gorm.DB, completer Completer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{db: db, completer: completer, log: log}
}

// Dispatch forwards the input to the completion service, validates the
// returned tool call against the catalogue and executes it.
func (d *Dispatcher) Dispatch(ctx context.Context, input string) (*Result, error) {
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: input},
	}

	reply, err := d.completer.Complete(ctx, messages, Tools())
	if err != nil {
		d.record(ctx, input, "error", "", nil)
		return nil, err
	}

	if reply.ToolCall == nil {
		d.record(ctx, input, "fallback", "", nil)
		return &Result{Text: reply.Content}, nil
	}

	dir, err := parseDirective(reply.ToolCall)
	if err != nil {
		d.record(ctx, input, "error", reply.ToolCall.Name, nil)
		return nil, err
	}

	payload, err := d.execute(ctx, dir)
	if err != nil {
		d.record(ctx, input, "error", dir.op.Name, reply.ToolCall.Arguments)
		return nil, err
	}

	d.record(ctx, input, "directive", dir.op.Name, reply.ToolCall.Arguments)

	return &Result{
		Structured: true,
		Operation:  dir.op.Name,
		Payload:    payload,
	}, nil
}

// directive is a validated tool call: a catalogue operation plus its
// decoded arguments.
type directive struct {
	op   Operation
	args map[string]interface{}
}

func parseDirective(call *ToolCall) (*directive, error) {
	op, ok := lookupOperation(call.Name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown operation %q", ErrBadDirective, call.Name)
	}

	args := make(map[string]interface{})
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return nil, fmt.Errorf("%w: arguments are not a JSON object", ErrBadDirective)
		}
	}

	for _, param := range op.Params {
		value, present := args[param.Name]

		if !present {
			if param.Required {
				return nil, fmt.Errorf("%w: %s is missing required parameter %q", ErrBadDirective, op.Name, param.Name)
			}
			continue
		}

		switch param.Type {
		case ParamString:
			if _, ok := value.(string); !ok {
				return nil, fmt.Errorf("%w: parameter %q must be a string", ErrBadDirective, param.Name)
			}
		case ParamInteger:
			n, ok := value.(float64)
			if !ok || n != float64(int64(n)) || n < 0 {
				return nil, fmt.Errorf("%w: parameter %q must be an integer", ErrBadDirective, param.Name)
			}
		case ParamBoolean:
			if _, ok := value.(bool); !ok {
				return nil, fmt.Errorf("%w: parameter %q must be a boolean", ErrBadDirective, param.Name)
			}
		}
	}

	return &directive{op: op, args: args}, nil
}

func (d *directive) str(name string) (string, bool) {
	v, ok := d.args[name].(string)
	return v, ok
}

func (d *directive) id(name string) (uint, bool) {
	v, ok := d.args[name].(float64)
	return uint(v), ok
}

func (d *directive) boolean(name string) (bool, bool) {
	v, ok := d.args[name].(bool)
	return v, ok
}

func (d *directive) strPtr(name string) *string {
	if v, ok := d.str(name); ok {
		return &v
	}
	return nil
}

func (d *directive) idPtr(name string) *uint {
	if v, ok := d.id(name); ok {
		return &v
	}
	return nil
}

func (d *directive) boolPtr(name string) *bool {
	if v, ok := d.boolean(name); ok {
		return &v
	}
	return nil
}

// execute runs the directive against the store. The switch is exhaustive
// over the catalogue; parseDirective guarantees the operation is known.
func (d *Dispatcher) execute(ctx context.Context, dir *directive) (interface{}, error) {
	switch dir.op.Name {
	case OpCreateUser:
		username, _ := dir.str("username")
		email, _ := dir.str("email")
		firstName, _ := dir.str("first_name")
		lastName, _ := dir.str("last_name")
		phone, _ := dir.str("phone")
		password, _ := dir.str("password")

		user, err := store.CreateUser(ctx, d.db, store.CreateUserInput{
			Username:  username,
			Email:     email,
			FirstName: firstName,
			LastName:  lastName,
			Phone:     phone,
			Password:  password,
		})
		if err != nil {
			return nil, err
		}
		return types.NewUserResponse(*user), nil

	case OpListUsers:
		users, err := store.ListUsers(ctx, d.db, store.UserFilter{
			Username: dir.strPtr("username"),
			Email:    dir.strPtr("email"),
			Phone:    dir.strPtr("phone"),
		})
		if err != nil {
			return nil, err
		}
		return types.NewUserListResponse(users), nil

	case OpGetUser:
		id, _ := dir.id("id")
		user, err := store.GetUser(ctx, d.db, id)
		if err != nil {
			return nil, err
		}
		return types.NewUserResponse(*user), nil

	case OpUpdateUser:
		id, _ := dir.id("id")
		user, err := store.UpdateUser(ctx, d.db, id, store.UpdateUserInput{
			Username:  dir.strPtr("username"),
			Email:     dir.strPtr("email"),
			FirstName: dir.strPtr("first_name"),
			LastName:  dir.strPtr("last_name"),
			Phone:     dir.strPtr("phone"),
			Password:  dir.strPtr("password"),
		})
		if err != nil {
			return nil, err
		}
		return types.NewUserResponse(*user), nil

	case OpDeleteUser:
		id, _ := dir.id("id")
		if err := store.DeleteUser(ctx, d.db, id); err != nil {
			return nil, err
		}
		return map[string]string{"detail": "User deleted successfully."}, nil

	case OpCreateTask:
		title, _ := dir.str("title")
		content, _ := dir.str("content")
		completed, _ := dir.boolean("completed")
		userID, _ := dir.id("user_id")

		task, err := store.CreateTask(ctx, d.db, store.CreateTaskInput{
			Title:     title,
			Content:   content,
			Completed: completed,
			UserID:    userID,
		})
		if err != nil {
			return nil, err
		}
		return types.NewTaskResponse(*task), nil

	case OpListTasks:
		tasks, err := store.ListTasks(ctx, d.db, store.TaskFilter{
			Title:     dir.strPtr("title"),
			Content:   dir.strPtr("content"),
			Completed: dir.boolPtr("completed"),
			UserID:    dir.idPtr("user_id"),
			Username:  dir.strPtr("username"),
		})
		if err != nil {
			return nil, err
		}
		return types.NewTaskListResponse(tasks), nil

	case OpGetTask:
		id, _ := dir.id("id")
		task, err := store.GetTask(ctx, d.db, id)
		if err != nil {
			return nil, err
		}
		return types.NewTaskResponse(*task), nil

	case OpUpdateTask:
		id, _ := dir.id("id")
		task, err := store.UpdateTask(ctx, d.db, id, store.UpdateTaskInput{
			Title:     dir.strPtr("title"),
			Content:   dir.strPtr("content"),
			Completed: dir.boolPtr("completed"),
		})
		if err != nil {
			return nil, err
		}
		return types.NewTaskResponse(*task), nil

	case OpDeleteTask:
		id, _ := dir.id("id")
		if err := store.DeleteTask(ctx, d.db, id); err != nil {
			return nil, err
		}
		return map[string]string{"detail": "Task deleted successfully."}, nil
	}

	return nil, fmt.Errorf("%w: unknown operation %q", ErrBadDirective, dir.op.Name)
}

// record writes the exchange to chat_messages. Failures are logged and
// never affect the reply.
func (d *Dispatcher) record(ctx context.Context, input, kind, operation string, args json.RawMessage) {
	message := models.ChatMessage{
		Input:     input,
		Kind:      kind,
		Operation: operation,
	}

	if len(args) > 0 {
		raw, err := json.Marshal(map[string]interface{}{
			"operation": operation,
			"params":    args,
		})
		if err == nil {
			message.Directive = datatypes.JSON(raw)
		}
	}

	if err := d.db.WithContext(ctx).Create(&message).Error; err != nil {
		d.log.Warn().Err(err).Msg("failed to record chat message")
	}
}
