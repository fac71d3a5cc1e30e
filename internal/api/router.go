package api

import (
	"net/http"
	"time"
	"traffic-forecast-service/internal/api/handlers"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(wf handlers.Workflow, sessionTTL time.Duration, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))

	wfHandler := &handlers.WorkflowHandler{
		Workflow:   wf,
		SessionTTL: sessionTTL,
		Log:        log.Named("api"),
	}

	router.GET("/", handlers.Page)
	router.GET("/health", handlers.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/session", wfHandler.State)
		v1.POST("/search", wfHandler.Search)
		v1.POST("/select", wfHandler.Select)
		v1.POST("/reset", wfHandler.Reset)
	}

	return router
}
