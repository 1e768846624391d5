package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/taskpilot-dev/taskpilot/internal/chatbot"
	"github.com/taskpilot-dev/taskpilot/internal/handlers"
	"github.com/taskpilot-dev/taskpilot/internal/middleware"
	"github.com/taskpilot-dev/taskpilot/internal/types"
)

func NewRouter(dispatcher *chatbot.Dispatcher) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Presentation shell
	r.StaticFile("/", "./web/static/index.html")
	r.Static("/static", "./web/static")

	r.GET("/health", handlers.HealthCheck)

	auth := r.Group("/auth")
	{
		auth.POST("/login", handlers.Login)
		auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
	}

	users := r.Group("/users")
	{
		users.POST("", handlers.CreateUser)
		users.GET("", handlers.ListUsers)
		users.GET("/:user_id", handlers.GetUser)
		users.PUT("/:user_id", handlers.UpdateUser)
		users.DELETE("/:user_id", handlers.DeleteUser)
	}

	tasks := r.Group("/tasks")
	{
		tasks.POST("", handlers.CreateTask)
		tasks.GET("", handlers.ListTasks)
		tasks.GET("/:task_id", handlers.GetTask)
		tasks.PUT("/:task_id", handlers.UpdateTask)
		tasks.DELETE("/:task_id", handlers.DeleteTask)
	}

	r.POST("/chatbot_gpt/", handlers.Chatbot(dispatcher))
	r.GET("/ws/chat", handlers.WebSocketChat(dispatcher))

	return r
}
