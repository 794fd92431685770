package routes

import (
	"github.com/gin-gonic/gin"
	"media2text/internal/api/v1/handlers"
)

// RegisterRoutes registers the transcription endpoint. It is mounted both at
// the root, where existing clients post, and under the versioned prefix.
func RegisterRoutes(router *gin.Engine, container *ServiceContainer) {
	transcribeHandler := handlers.NewTranscribeHandler(container.JobRunner, container.Logger)

	router.POST("/transcribe", transcribeHandler.Transcribe)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/transcribe", transcribeHandler.Transcribe)
	}
}
