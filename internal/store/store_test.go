package store

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens an isolated in-memory sqlite database migrated with the
// full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}, &models.ChatMessage{}))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user, err := CreateUser(t.Context(), db, CreateUserInput{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Test",
		LastName:  "User",
		Phone:     "555-0100",
		Password:  "secret123",
	})
	require.NoError(t, err)

	return user
}

func seedTask(t *testing.T, db *gorm.DB, userID uint, title string, completed bool) *models.Task {
	t.Helper()

	task, err := CreateTask(t.Context(), db, CreateTaskInput{
		Title:     title,
		Content:   "content of " + title,
		Completed: completed,
		UserID:    userID,
	})
	require.NoError(t, err)

	return task
}
