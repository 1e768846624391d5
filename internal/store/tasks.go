package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taskpilot-dev/taskpilot/internal/models"
	"gorm.io/gorm"
)

type CreateTaskInput struct {
	Title     string
	Content   string
	Completed bool
	UserID    uint
}

// UpdateTaskInput carries a partial update; nil fields are left untouched.
type UpdateTaskInput struct {
	Title     *string
	Content   *string
	Completed *bool
}

// TaskFilter narrows ListTasks. Title, Content and Username match as
// case-insensitive substrings, Completed and UserID exactly. Username
// matches against the owning user.
type TaskFilter struct {
	Title     *string
	Content   *string
	Completed *bool
	UserID    *uint
	Username  *string
}

func (f TaskFilter) apply(query *gorm.DB) *gorm.DB {
	if f.Title != nil {
		query = query.Where("LOWER(tasks.title) LIKE ?", contains(*f.Title))
	}
	if f.Content != nil {
		query = query.Where("LOWER(tasks.content) LIKE ?", contains(*f.Content))
	}
	if f.Completed != nil {
		query = query.Where("tasks.completed = ?", *f.Completed)
	}
	if f.UserID != nil {
		query = query.Where("tasks.user_id = ?", *f.UserID)
	}
	if f.Username != nil {
		query = query.
			Joins("JOIN users ON users.id = tasks.user_id").
			Where("LOWER(users.username) LIKE ?", contains(*f.Username))
	}
	return query
}

// CreateTask persists a task after verifying the owner exists. Nothing is
// written when the referenced user is unknown.
func CreateTask(ctx context.Context, db *gorm.DB, in CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.UserID == 0 {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	if _, err := GetUser(ctx, db, in.UserID); err != nil {
		return nil, err
	}

	task := models.Task{
		Title:     in.Title,
		Content:   in.Content,
		Completed: in.Completed,
		UserID:    in.UserID,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func ListTasks(ctx context.Context, db *gorm.DB, filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := filter.apply(db.WithContext(ctx).Model(&models.Task{}))

	if err := query.Order("tasks.id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func GetTask(ctx context.Context, db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task

	if err := db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return &task, nil
}

func UpdateTask(ctx context.Context, db *gorm.DB, id uint, in UpdateTaskInput) (*models.Task, error) {
	task, err := GetTask(ctx, db, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		updates["title"] = *in.Title
	}

	if in.Content != nil {
		updates["content"] = *in.Content
	}

	if in.Completed != nil {
		updates["completed"] = *in.Completed
	}

	if len(updates) == 0 {
		return task, nil
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(task).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return GetTask(ctx, db, id)
}

// DeleteTask permanently removes the task row.
func DeleteTask(ctx context.Context, db *gorm.DB, id uint) error {
	task, err := GetTask(ctx, db, id)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Unscoped().Delete(task).Error
	})
}
