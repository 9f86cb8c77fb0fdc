package router

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kanmind-dev/kanmind/internal/handlers"
	"github.com/kanmind-dev/kanmind/internal/middleware"
	"github.com/kanmind-dev/kanmind/internal/types"
)

func NewRouter() *gin.Engine {
	registerTagNames()

	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/email-check", middleware.AuthMiddleware(), handlers.EmailCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/registration", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		boards := api.Group("/boards", middleware.AuthMiddleware())
		{
			boards.GET("", handlers.ListBoards)
			boards.POST("", handlers.CreateBoard)
			boards.GET("/:board_id", handlers.GetBoard)
			boards.PUT("/:board_id", handlers.UpdateBoard)
			boards.PATCH("/:board_id", handlers.UpdateBoard)
			boards.DELETE("/:board_id", handlers.DeleteBoard)
		}

		tasks := api.Group("/tasks", middleware.AuthMiddleware())
		{
			tasks.GET("", handlers.ListTasks)
			tasks.POST("", handlers.CreateTask)
			tasks.GET("/assigned-to-me", handlers.AssignedTasks)
			tasks.GET("/reviewing", handlers.ReviewingTasks)
			tasks.GET("/:task_id", handlers.GetTask)
			tasks.PUT("/:task_id", handlers.UpdateTask)
			tasks.PATCH("/:task_id", handlers.UpdateTask)
			tasks.DELETE("/:task_id", handlers.DeleteTask)

			tasks.GET("/:task_id/comments", handlers.ListComments)
			tasks.POST("/:task_id/comments", handlers.CreateComment)
			tasks.DELETE("/:task_id/comments/:comment_id", handlers.DeleteComment)
		}
	}

	return r
}

// registerTagNames makes validator errors report json field names, which
// the field-keyed validation error maps rely on.
func registerTagNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)

	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
