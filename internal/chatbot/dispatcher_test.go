package chatbot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"github.com/taskpilot-dev/taskpilot/internal/store"
	"github.com/taskpilot-dev/taskpilot/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubCompleter struct {
	reply *Reply
	err   error

	gotMessages []Message
	gotTools    []Tool
}

func (s *stubCompleter) Complete(_ context.Context, messages []Message, tools []Tool) (*Reply, error) {
	s.gotMessages = messages
	s.gotTools = tools
	return s.reply, s.err
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.ChatMessage{}))

	return db
}

func seedUserAndTask(t *testing.T, db *gorm.DB) (*models.User, *models.Task) {
	t.Helper()

	user, err := store.CreateUser(t.Context(), db, store.CreateUserInput{
		Username:  "ann",
		Email:     "ann@example.com",
		FirstName: "Ann",
		LastName:  "Smith",
		Phone:     "555",
		Password:  "secret",
	})
	require.NoError(t, err)

	task, err := store.CreateTask(t.Context(), db, store.CreateTaskInput{
		Title:  "buy milk",
		UserID: user.ID,
	})
	require.NoError(t, err)

	return user, task
}

func toolCallReply(name, arguments string) *Reply {
	return &Reply{ToolCall: &ToolCall{Name: name, Arguments: json.RawMessage(arguments)}}
}

func TestDispatchDeleteTaskDirective(t *testing.T) {
	db := testDB(t)
	_, task := seedUserAndTask(t, db)

	completer := &stubCompleter{
		reply: toolCallReply(OpDeleteTask, fmt.Sprintf(`{"id": %d}`, task.ID)),
	}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	result, err := dispatcher.Dispatch(t.Context(), fmt.Sprintf("delete task %d", task.ID))
	require.NoError(t, err)

	assert.True(t, result.Structured)
	assert.Equal(t, OpDeleteTask, result.Operation)
	assert.Equal(t, map[string]string{"detail": "Task deleted successfully."}, result.Payload)

	_, err = store.GetTask(t.Context(), db, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestDispatchComposesPromptAndTools(t *testing.T) {
	db := testDB(t)
	completer := &stubCompleter{reply: &Reply{Content: "hello"}}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	_, err := dispatcher.Dispatch(t.Context(), "hi there")
	require.NoError(t, err)

	require.Len(t, completer.gotMessages, 2)
	assert.Equal(t, "system", completer.gotMessages[0].Role)
	assert.Equal(t, "user", completer.gotMessages[1].Role)
	assert.Equal(t, "hi there", completer.gotMessages[1].Content)

	assert.Len(t, completer.gotTools, len(Catalog))
}

func TestDispatchFallbackWhenNoToolCall(t *testing.T) {
	db := testDB(t)
	completer := &stubCompleter{reply: &Reply{Content: "which task do you mean?"}}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	result, err := dispatcher.Dispatch(t.Context(), "delete the task")
	require.NoError(t, err)

	assert.False(t, result.Structured)
	assert.Equal(t, "which task do you mean?", result.Text)
}

func TestDispatchUnknownOperationHasNoSideEffect(t *testing.T) {
	db := testDB(t)
	_, task := seedUserAndTask(t, db)

	completer := &stubCompleter{
		reply: toolCallReply("drop_all_tables", `{}`),
	}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	_, err := dispatcher.Dispatch(t.Context(), "do something weird")
	assert.ErrorIs(t, err, ErrBadDirective)

	_, err = store.GetTask(t.Context(), db, task.ID)
	assert.NoError(t, err, "no CRUD side effect on a rejected directive")
}

func TestDispatchRejectsMissingRequiredParam(t *testing.T) {
	db := testDB(t)
	completer := &stubCompleter{reply: toolCallReply(OpDeleteTask, `{}`)}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	_, err := dispatcher.Dispatch(t.Context(), "delete a task")
	assert.ErrorIs(t, err, ErrBadDirective)
}

func TestDispatchRejectsWrongParamTypes(t *testing.T) {
	db := testDB(t)
	dispatcher := NewDispatcher(db, nil, zerolog.Nop())

	cases := map[string]struct {
		op   string
		args string
	}{
		"string for integer":  {OpDeleteTask, `{"id": "five"}`},
		"fraction for id":     {OpGetTask, `{"id": 1.5}`},
		"number for string":   {OpCreateUser, `{"username": 7, "email": "a@b.com", "first_name": "a", "last_name": "b", "phone": "1", "password": "x"}`},
		"string for boolean":  {OpListTasks, `{"completed": "yes"}`},
		"arguments not a map": {OpListTasks, `[1, 2]`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dispatcher.completer = &stubCompleter{reply: toolCallReply(tc.op, tc.args)}
			_, err := dispatcher.Dispatch(t.Context(), "input")
			assert.ErrorIs(t, err, ErrBadDirective)
		})
	}
}

func TestDispatchCompleterFailurePropagates(t *testing.T) {
	db := testDB(t)
	completer := &stubCompleter{err: fmt.Errorf("%w: timeout", ErrUnavailable)}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	_, err := dispatcher.Dispatch(t.Context(), "anything")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDispatchCreateTask(t *testing.T) {
	db := testDB(t)
	user, _ := seedUserAndTask(t, db)

	args := fmt.Sprintf(`{"title": "walk dog", "content": "before dinner", "user_id": %d, "completed": false}`, user.ID)
	completer := &stubCompleter{reply: toolCallReply(OpCreateTask, args)}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	result, err := dispatcher.Dispatch(t.Context(), "create a task for ann to walk the dog, not done yet")
	require.NoError(t, err)

	require.True(t, result.Structured)
	payload, ok := result.Payload.(types.TaskResponse)
	require.True(t, ok)
	assert.Equal(t, "walk dog", payload.Title)
	assert.False(t, payload.Completed)
	assert.Equal(t, user.ID, payload.UserID)
}

func TestDispatchListTasksWithFilters(t *testing.T) {
	db := testDB(t)
	user, _ := seedUserAndTask(t, db)

	_, err := store.CreateTask(t.Context(), db, store.CreateTaskInput{
		Title:     "done chore",
		Completed: true,
		UserID:    user.ID,
	})
	require.NoError(t, err)

	completer := &stubCompleter{reply: toolCallReply(OpListTasks, `{"completed": true}`)}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	result, err := dispatcher.Dispatch(t.Context(), "show me finished tasks")
	require.NoError(t, err)

	payload, ok := result.Payload.([]types.TaskResponse)
	require.True(t, ok)
	require.Len(t, payload, 1)
	assert.Equal(t, "done chore", payload[0].Title)
}

func TestDispatchStoreErrorPropagates(t *testing.T) {
	db := testDB(t)
	completer := &stubCompleter{reply: toolCallReply(OpDeleteTask, `{"id": 9999}`)}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	_, err := dispatcher.Dispatch(t.Context(), "delete task 9999")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestDispatchRecordsExchanges(t *testing.T) {
	db := testDB(t)
	_, task := seedUserAndTask(t, db)

	completer := &stubCompleter{
		reply: toolCallReply(OpDeleteTask, fmt.Sprintf(`{"id": %d}`, task.ID)),
	}
	dispatcher := NewDispatcher(db, completer, zerolog.Nop())

	_, err := dispatcher.Dispatch(t.Context(), "delete my task")
	require.NoError(t, err)

	var messages []models.ChatMessage
	require.NoError(t, db.Find(&messages).Error)
	require.Len(t, messages, 1)

	assert.Equal(t, "directive", messages[0].Kind)
	assert.Equal(t, OpDeleteTask, messages[0].Operation)
	assert.NotEmpty(t, messages[0].Directive)
}
