package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskflow/api/handler"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	User         *apiHandler.UserHandler
	Task         *apiHandler.TaskHandler
	Notification *apiHandler.NotificationHandler
	Stream       *apiHandler.StreamHandler
	Health       *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Directory
	r.GET("/api/v1/users", authMiddleware(handlers.User.List))
	r.GET("/api/v1/me", authMiddleware(handlers.User.Me))

	// Tasks
	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.GET("/api/v1/tasks/stream", authMiddleware(handlers.Stream.Tasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}/complete", authMiddleware(handlers.Task.ToggleComplete))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	// Notifications
	r.GET("/api/v1/notifications", authMiddleware(handlers.Notification.List))
	r.GET("/api/v1/notifications/stream", authMiddleware(handlers.Stream.Notifications))

	return r
}
