// Package httpapi exposes the document service over HTTP with gin.
package httpapi

import (
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	DocumentHandler *DocumentHandler
	AIHandler       *AIHandler
	HealthHandler   *HealthHandler

	CORSOrigins []string
	// MaxUploadSize caps the multipart memory used for uploads.
	MaxUploadSize int64
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(CORS(cfg.CORSOrigins))
	if cfg.MaxUploadSize > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadSize
	}

	r.NoRoute(func(c *gin.Context) {
		RespondError(c, errRouteNotFound)
	})

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	documents := r.Group("/documents")
	{
		if cfg.DocumentHandler != nil {
			documents.POST("/upload", cfg.DocumentHandler.Upload)
			documents.GET("", cfg.DocumentHandler.List)
			documents.GET("/:id", cfg.DocumentHandler.Get)
			documents.DELETE("/:id", cfg.DocumentHandler.Delete)
			documents.GET("/:id/requests", cfg.DocumentHandler.RequestHistory)
		}

		if cfg.AIHandler != nil {
			documents.POST("/:id/summarize", cfg.AIHandler.Summarize)
			documents.POST("/:id/qa", cfg.AIHandler.Answer)
		}
	}

	return r
}
