// Package store implements the CRUD operations and query filtering for
// users and tasks. Every operation takes the GORM handle explicitly so
// handlers, the chatbot dispatcher and tests share the same code path.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/taskpilot-dev/taskpilot/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Password  string
}

// UpdateUserInput carries a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Password  *string
}

// UserFilter narrows ListUsers. String fields match as case-insensitive
// substrings; nil fields impose no constraint.
type UserFilter struct {
	Username *string
	Email    *string
	Phone    *string
}

func (f UserFilter) apply(query *gorm.DB) *gorm.DB {
	if f.Username != nil {
		query = query.Where("LOWER(username) LIKE ?", contains(*f.Username))
	}
	if f.Email != nil {
		query = query.Where("LOWER(email) LIKE ?", contains(*f.Email))
	}
	if f.Phone != nil {
		query = query.Where("LOWER(phone) LIKE ?", contains(*f.Phone))
	}
	return query
}

func contains(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func CreateUser(ctx context.Context, db *gorm.DB, in CreateUserInput) (*models.User, error) {
	required := map[string]string{
		"username":   in.Username,
		"email":      in.Email,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"phone":      in.Phone,
		"password":   in.Password,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrValidation, field)
		}
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	if err := checkUserUnique(ctx, db, in.Username, email, 0); err != nil {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     in.Username,
		Email:        email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		PasswordHash: string(passwordHash),
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func ListUsers(ctx context.Context, db *gorm.DB, filter UserFilter) ([]models.User, error) {
	var users []models.User

	query := filter.apply(db.WithContext(ctx).Model(&models.User{}))

	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func GetUser(ctx context.Context, db *gorm.DB, id uint) (*models.User, error) {
	var user models.User

	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}

func UpdateUser(ctx context.Context, db *gorm.DB, id uint, in UpdateUserInput) (*models.User, error) {
	user, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})

	if in.Username != nil {
		if strings.TrimSpace(*in.Username) == "" {
			return nil, fmt.Errorf("%w: username must not be empty", ErrValidation)
		}
		updates["username"] = *in.Username
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if err := validate.Var(email, "email"); err != nil {
			return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
		}
		updates["email"] = email
	}

	if in.FirstName != nil {
		updates["first_name"] = *in.FirstName
	}

	if in.LastName != nil {
		updates["last_name"] = *in.LastName
	}

	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}

	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password must not be empty", ErrValidation)
		}
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = string(passwordHash)
	}

	if len(updates) == 0 {
		return user, nil
	}

	username := user.Username
	if v, ok := updates["username"].(string); ok {
		username = v
	}
	email := user.Email
	if v, ok := updates["email"].(string); ok {
		email = v
	}
	if err := checkUserUnique(ctx, db, username, email, user.ID); err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(user).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	return GetUser(ctx, db, id)
}

// DeleteUser removes the user and every task it owns in one transaction.
// Deletion is permanent (Unscoped), so the username and email free up for
// re-registration instead of lingering under the unique indexes.
func DeleteUser(ctx context.Context, db *gorm.DB, id uint) error {
	user, err := GetUser(ctx, db, id)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(user).Error
	})
}

// VerifyPassword checks plaintext credentials against the stored hash.
func VerifyPassword(ctx context.Context, db *gorm.DB, username, password string) (*models.User, error) {
	var user models.User

	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%w: wrong password", ErrValidation)
	}

	return &user, nil
}

func checkUserUnique(ctx context.Context, db *gorm.DB, username, email string, selfID uint) error {
	var count int64

	err := db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id != ?", username, selfID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}

	err = db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id != ?", email, selfID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}

	return nil
}
