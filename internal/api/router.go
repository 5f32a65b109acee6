package api

import (
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharmassist/internal/api/handlers"
	"pharmassist/internal/api/middleware"
	"pharmassist/internal/assistant"
	"pharmassist/internal/store"
)

// Version reported by the health and root endpoints.
const Version = "1.0.0"

// SetupRouter configures and returns a Gin router with all API routes.
func SetupRouter(agent *assistant.Agent, dataStore *store.FileStore) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.Use(gin.Recovery())

	registerRoutes(r, agent, dataStore)

	// Root route
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"name":    "PharmAssist API",
			"version": Version,
			"docs":    "/api/v1",
		})
	})

	return r
}

// SetupRouterWithUI configures a Gin router with API routes and the
// embedded web chat UI served for all non-API paths.
func SetupRouterWithUI(agent *assistant.Agent, dataStore *store.FileStore, staticFS fs.FS) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Logger())
	r.Use(middleware.CORS())
	r.Use(gin.Recovery())

	registerRoutes(r, agent, dataStore)

	// Use NoRoute to serve static files for all non-API routes.
	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path

		file, err := staticFS.Open(path[1:]) // Remove leading slash
		if err != nil {
			// File not found, serve index.html for SPA routing
			indexFile, err := staticFS.Open("index.html")
			if err != nil {
				c.JSON(404, gin.H{"error": "Web UI not found"})
				return
			}
			defer indexFile.Close()

			c.Header("Content-Type", "text/html; charset=utf-8")
			http.ServeContent(c.Writer, c.Request, "index.html", time.Now(), indexFile.(io.ReadSeeker))
			return
		}
		defer file.Close()

		http.ServeContent(c.Writer, c.Request, path, time.Now(), file.(io.ReadSeeker))
	})

	return r
}

func registerRoutes(r *gin.Engine, agent *assistant.Agent, dataStore *store.FileStore) {
	chatHandler := handlers.NewChatHandler(agent)
	entityHandler := handlers.NewEntityHandler(dataStore)
	activityHandler := handlers.NewActivityHandler(dataStore, agent)

	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"version": Version,
			})
		})

		// Conversational routes
		v1.POST("/chat", chatHandler.Chat)
		v1.GET("/commands", chatHandler.Commands)
		v1.GET("/history/:user", chatHandler.History)

		// Activity and audit routes
		v1.GET("/activity", activityHandler.Recent)
		v1.GET("/audit", activityHandler.AuditEvents)
		v1.GET("/audit/stats", activityHandler.AuditStatistics)

		// Raw record routes
		v1.GET("/collections", entityHandler.ListCollections)
		entities := v1.Group("/collections/:collection")
		{
			entities.GET("", entityHandler.ListRecords)
			entities.GET("/:id", entityHandler.GetRecord)
			entities.POST("/query", entityHandler.QueryRecords)
		}

		// Stock routes
		v1.GET("/medicines/:id/stock", entityHandler.GetStock)
	}
}
