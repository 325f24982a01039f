package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/waterbar/waterbar/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		errorHandlingMiddleware(handler.logger),
	)

	// The plan endpoint promises a literal 405 body on any other verb.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	router.POST("/plan", handler.GeneratePlan)

	api := router.Group("/api/v1")
	{
		api.GET("/drinks", handler.ListDrinks)
		api.POST("/drinks/log", handler.LogDrink)
		api.GET("/hydration", handler.HydrationStatus)
		api.GET("/hydration/history", handler.HydrationHistory)
		api.POST("/refills", handler.LogRefill)
		api.GET("/impact", handler.Impact)
		api.POST("/chat", handler.Chat)
		api.GET("/chat/:sessionId", handler.ChatHistory)
		api.POST("/shop/handoff", handler.ShopHandoff)
		api.GET("/shop/recommendations", handler.ShopRecommendations)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
