package types

import "github.com/taskpilot-dev/taskpilot/internal/models"

// UserResponse is the serialized user shape. The password hash never
// leaves the process.
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
	}
}

type UserListResponse struct {
	Total int            `json:"total"`
	Users []UserResponse `json:"users"`
}

func NewUserListResponse(users []models.User) UserListResponse {
	response := UserListResponse{
		Total: len(users),
		Users: make([]UserResponse, 0, len(users)),
	}
	for _, user := range users {
		response.Users = append(response.Users, NewUserResponse(user))
	}
	return response
}

type TaskResponse struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	UserID    uint   `json:"user_id"`
}

func NewTaskResponse(task models.Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		Title:     task.Title,
		Content:   task.Content,
		Completed: task.Completed,
		UserID:    task.UserID,
	}
}

func NewTaskListResponse(tasks []models.Task) []TaskResponse {
	response := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		response = append(response, NewTaskResponse(task))
	}
	return response
}
