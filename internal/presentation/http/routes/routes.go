package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tsiory/pos-print-relay/internal/config"
	"github.com/tsiory/pos-print-relay/internal/presentation/http/handler"
	"github.com/tsiory/pos-print-relay/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Print     *handler.PrintHandler
	Receipt   *handler.ReceiptHandler
	Discovery *handler.DiscoveryHandler
	Settings  *handler.SettingsHandler
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": cfg.App.Name,
		})
	})

	rateLimiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.RateLimit.Requests) / float64(cfg.RateLimit.Duration),
		BurstSize:         cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})

	v1 := router.Group("/api/v1")
	v1.Use(rateLimiter.Middleware())
	{
		v1.GET("/info", h.Discovery.GetInfo)
		v1.GET("/receipt/:name", h.Receipt.GetReceipt)
		v1.POST("/print", h.Print.Print)

		printerGroup := v1.Group("/printer")
		{
			printerGroup.GET("/status", h.Print.GetStatus)
			printerGroup.POST("/test", h.Print.TestPrint)
		}

		v1.GET("/config", h.Settings.GetConfig)
		v1.GET("/state", h.Settings.GetState)
	}

	return router
}
