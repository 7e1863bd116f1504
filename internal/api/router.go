// Package api wires the HTTP surface: routing, middleware, and server
// lifecycle.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sellerledger-sync/internal/api/handler"
	"github.com/sellerledger-sync/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	importHandler *handler.ImportHandler,
	exportHandler *handler.ExportHandler,
	mappingHandler *handler.MappingHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints, scoped per organization
	v1 := r.Group("/api/v1")
	{
		orgs := v1.Group("/orgs/:org_id")
		{
			orgs.POST("/imports", importHandler.Create)

			exports := orgs.Group("/exports")
			{
				exports.POST("", exportHandler.Create)
				exports.POST("/preview", exportHandler.Preview)
				exports.GET("", exportHandler.List)
				exports.POST("/verify", exportHandler.Verify)
			}

			mappings := orgs.Group("/mappings")
			{
				mappings.GET("/:provider", mappingHandler.Get)
				mappings.PUT("/:provider", mappingHandler.Put)
			}
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
