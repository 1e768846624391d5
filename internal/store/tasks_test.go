package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskpilot-dev/taskpilot/internal/models"
)

func TestCreateTask(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "ann")

	task, err := CreateTask(t.Context(), db, CreateTaskInput{
		Title:   "buy milk",
		Content: "two litres",
		UserID:  user.ID,
	})
	require.NoError(t, err)

	assert.NotZero(t, task.ID)
	assert.False(t, task.Completed)
	assert.Equal(t, user.ID, task.UserID)
}

func TestCreateTaskUnknownOwnerPersistsNothing(t *testing.T) {
	db := testDB(t)

	_, err := CreateTask(t.Context(), db, CreateTaskInput{
		Title:  "orphan",
		UserID: 42,
	})
	assert.ErrorIs(t, err, ErrUserNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateTaskValidation(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "ann")

	_, err := CreateTask(t.Context(), db, CreateTaskInput{UserID: user.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = CreateTask(t.Context(), db, CreateTaskInput{Title: "no owner"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListTasksNoFilterReturnsAllOrdered(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "ann")
	first := seedTask(t, db, user.ID, "first", false)
	second := seedTask(t, db, user.ID, "second", true)

	tasks, err := ListTasks(t.Context(), db, TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)
}

func TestListTasksFilters(t *testing.T) {
	db := testDB(t)
	ann := seedUser(t, db, "ann")
	bob := seedUser(t, db, "bob")
	seedTask(t, db, ann.ID, "Buy Milk", false)
	seedTask(t, db, ann.ID, "walk dog", true)
	seedTask(t, db, bob.ID, "buy bread", true)

	title := "BUY"
	tasks, err := ListTasks(t.Context(), db, TaskFilter{Title: &title})
	require.NoError(t, err)
	assert.Len(t, tasks, 2, "title match is a case-insensitive substring")

	completed := true
	tasks, err = ListTasks(t.Context(), db, TaskFilter{Completed: &completed})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	tasks, err = ListTasks(t.Context(), db, TaskFilter{UserID: &ann.ID})
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	content := "of walk"
	tasks, err = ListTasks(t.Context(), db, TaskFilter{Content: &content})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "walk dog", tasks[0].Title)
}

func TestListTasksFilterByOwnerUsername(t *testing.T) {
	db := testDB(t)
	ann := seedUser(t, db, "ann")
	bob := seedUser(t, db, "bob")
	seedTask(t, db, ann.ID, "a task", false)
	seedTask(t, db, bob.ID, "b task", false)

	username := "AN"
	tasks, err := ListTasks(t.Context(), db, TaskFilter{Username: &username})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, ann.ID, tasks[0].UserID)
}

func TestListTasksConjunction(t *testing.T) {
	db := testDB(t)
	ann := seedUser(t, db, "ann")
	seedTask(t, db, ann.ID, "buy milk", false)
	seedTask(t, db, ann.ID, "buy bread", true)

	title := "buy"
	completed := true
	tasks, err := ListTasks(t.Context(), db, TaskFilter{Title: &title, Completed: &completed})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy bread", tasks[0].Title)
}

func TestGetTaskNotFound(t *testing.T) {
	db := testDB(t)

	_, err := GetTask(t.Context(), db, 42)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateTaskPartial(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "ann")
	task := seedTask(t, db, user.ID, "buy milk", false)

	completed := true
	updated, err := UpdateTask(t.Context(), db, task.ID, UpdateTaskInput{Completed: &completed})
	require.NoError(t, err)

	assert.True(t, updated.Completed)
	assert.Equal(t, "buy milk", updated.Title, "unset fields are untouched")
}

func TestUpdateTaskNotFound(t *testing.T) {
	db := testDB(t)

	title := "nope"
	_, err := UpdateTask(t.Context(), db, 42, UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTaskRemovesRow(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "ann")
	task := seedTask(t, db, user.ID, "buy milk", false)

	require.NoError(t, DeleteTask(t.Context(), db, task.ID))

	var count int64
	require.NoError(t, db.Unscoped().Model(&models.Task{}).Where("id = ?", task.ID).Count(&count).Error)
	assert.Zero(t, count, "deleted task row should be removed from the table")
}

func TestDeleteTaskRepeatedDeleteFails(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db, "ann")
	task := seedTask(t, db, user.ID, "buy milk", false)

	require.NoError(t, DeleteTask(t.Context(), db, task.ID))
	assert.ErrorIs(t, DeleteTask(t.Context(), db, task.ID), ErrTaskNotFound)
	assert.ErrorIs(t, DeleteTask(t.Context(), db, task.ID), ErrTaskNotFound)
}
