package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/db"
	"github.com/taskpilot-dev/taskpilot/internal/store"
	"github.com/taskpilot-dev/taskpilot/internal/types"
)

type CreateTaskRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
	UserID    uint   `json:"user_id" binding:"required"`
}

type UpdateTaskRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Completed *bool   `json:"completed"`
}

func CreateTask(ctx *gin.Context) {
	var body CreateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := store.CreateTask(ctx.Request.Context(), db.DB, store.CreateTaskInput{
		Title:     body.Title,
		Content:   body.Content,
		Completed: body.Completed,
		UserID:    body.UserID,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewTaskResponse(*task))
}

func ListTasks(ctx *gin.Context) {
	var filter store.TaskFilter

	if v, ok := ctx.GetQuery("title"); ok {
		filter.Title = &v
	}
	if v, ok := ctx.GetQuery("content"); ok {
		filter.Content = &v
	}
	if v, ok := ctx.GetQuery("username"); ok {
		filter.Username = &v
	}
	if v, ok := ctx.GetQuery("completed"); ok {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid completed"})
			return
		}
		filter.Completed = &completed
	}
	if v, ok := ctx.GetQuery("user_id"); ok {
		userID, err := strconv.ParseUint(v, 10, 32)
		// Zero is never a valid user id, so reject it like a bad path param.
		if err != nil || userID == 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		id := uint(userID)
		filter.UserID = &id
	}

	tasks, err := store.ListTasks(ctx.Request.Context(), db.DB, filter)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskListResponse(tasks))
}

func GetTask(ctx *gin.Context) {
	id, ok := idParam(ctx, "task_id")
	if !ok {
		return
	}

	task, err := store.GetTask(ctx.Request.Context(), db.DB, id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(*task))
}

func UpdateTask(ctx *gin.Context) {
	id, ok := idParam(ctx, "task_id")
	if !ok {
		return
	}

	var body UpdateTaskRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := store.UpdateTask(ctx.Request.Context(), db.DB, id, store.UpdateTaskInput{
		Title:     body.Title,
		Content:   body.Content,
		Completed: body.Completed,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewTaskResponse(*task))
}

func DeleteTask(ctx *gin.Context) {
	id, ok := idParam(ctx, "task_id")
	if !ok {
		return
	}

	if err := store.DeleteTask(ctx.Request.Context(), db.DB, id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"detail": "Task deleted successfully."})
}
