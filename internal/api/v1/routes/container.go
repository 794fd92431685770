package routes

import (
	"go.uber.org/zap"
	"media2text/internal/api/v1/handlers"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	JobRunner handlers.JobRunner
	Logger    *zap.Logger
}
