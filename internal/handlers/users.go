package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/db"
	"github.com/taskpilot-dev/taskpilot/internal/store"
	"github.com/taskpilot-dev/taskpilot/internal/types"
)

type CreateUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Password  *string `json:"password"`
}

func CreateUser(ctx *gin.Context) {
	var body CreateUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := store.CreateUser(ctx.Request.Context(), db.DB, store.CreateUserInput{
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Password:  body.Password,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewUserResponse(*user))
}

func ListUsers(ctx *gin.Context) {
	var filter store.UserFilter

	if v, ok := ctx.GetQuery("username"); ok {
		filter.Username = &v
	}
	if v, ok := ctx.GetQuery("email"); ok {
		filter.Email = &v
	}
	if v, ok := ctx.GetQuery("phone"); ok {
		filter.Phone = &v
	}

	users, err := store.ListUsers(ctx.Request.Context(), db.DB, filter)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserListResponse(users))
}

func GetUser(ctx *gin.Context) {
	id, ok := idParam(ctx, "user_id")
	if !ok {
		return
	}

	user, err := store.GetUser(ctx.Request.Context(), db.DB, id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(*user))
}

func UpdateUser(ctx *gin.Context) {
	id, ok := idParam(ctx, "user_id")
	if !ok {
		return
	}

	var body UpdateUserRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	user, err := store.UpdateUser(ctx.Request.Context(), db.DB, id, store.UpdateUserInput{
		Username:  body.Username,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Password:  body.Password,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(*user))
}

func DeleteUser(ctx *gin.Context) {
	id, ok := idParam(ctx, "user_id")
	if !ok {
		return
	}

	if err := store.DeleteUser(ctx.Request.Context(), db.DB, id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"detail": "User deleted successfully."})
}
