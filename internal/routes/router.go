package routes

import (
	"task-tracker/internal/controller"
	"task-tracker/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Router builds the HTTP API.
func Router(tasks *controller.Tasks, ready gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	// Health for load balancers and probes
	router.GET("/health", controller.Health)
	router.GET("/ready", ready)

	router.GET("/tasks", tasks.List)
	router.POST("/tasks", tasks.Create)
	router.GET("/tasks/:id", tasks.Get)
	router.POST("/tasks/:id/complete", tasks.Complete)
	router.DELETE("/tasks/incomplete", tasks.DeleteIncomplete)

	stats := router.Group("/stats")
	{
		stats.GET("/weekdays", tasks.WeekdayStats)
		stats.GET("/completion-times", tasks.CompletionTimes)
	}

	return router
}
