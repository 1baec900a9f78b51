package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(periodsH *handlers.PeriodsHandler, collectionsH *handlers.CollectionsHandler, reportsH *handlers.ReportsHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.GET("/periods", periodsH.List)
		api.GET("/periods/classify", periodsH.Classify)
		api.GET("/periods/name", periodsH.Name)

		api.GET("/collections", collectionsH.List)
		api.POST("/collections", collectionsH.Create)
		api.PUT("/collections/:id", collectionsH.Update)
		api.POST("/collections/import", collectionsH.Import)
		api.POST("/collections/recalculate", collectionsH.Recalculate)

		api.GET("/reports/bill-check", reportsH.BillCheck)
		api.GET("/reports/supply-analysis", reportsH.SupplyAnalysis)
		api.GET("/reports/procurement-comparison", reportsH.ProcurementComparison)
		api.GET("/reports/latest-snapshot", reportsH.LatestSnapshot)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
