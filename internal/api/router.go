package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/sdr-records-go/internal/config"
	"github.com/jengzang/sdr-records-go/internal/handler"
	"github.com/jengzang/sdr-records-go/internal/logger"
	"github.com/jengzang/sdr-records-go/internal/metrics"
	"github.com/jengzang/sdr-records-go/internal/middleware"
	"github.com/jengzang/sdr-records-go/internal/service"
)

// Dependencies are the collaborators the router wires into handlers
type Dependencies struct {
	Config             *config.Config
	Logger             *logger.Log
	Metrics            *metrics.Collector
	MeasurementService *service.MeasurementService
	SchemaVersion      uint // applied migration version, reported by /health
}

// SetupRouter 设置路由
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(deps.Logger.WithComponent("http")),
		middleware.Metrics(deps.Metrics),
	)

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		stored, err := deps.MeasurementService.StoredCount(c.Request.Context())
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"message": "database is unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":        "ok",
			"message":       "SDR Records API is running",
			"measurements":  deps.MeasurementService.Layer().MeasurementCount(),
			"stored":        stored,
			"schemaVersion": deps.SchemaVersion,
		})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	measurementHandler := handler.NewMeasurementHandler(deps.MeasurementService)
	aggregateHandler := handler.NewAggregateHandler(deps.MeasurementService)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(deps.Config.RateLimit.RequestsPerSecond, deps.Config.RateLimit.Burst))
	{
		measurements := api.Group("/measurements")
		{
			measurements.GET("", measurementHandler.GetMeasurements)
			measurements.GET("/extent", measurementHandler.GetExtent)
			measurements.GET("/export.parquet", measurementHandler.ExportParquet)
			measurements.GET("/:id", measurementHandler.GetMeasurementByID)
			measurements.POST("", middleware.JWTAuth(deps.Config.JWTSecret), measurementHandler.CreateMeasurements)
		}

		aggregates := api.Group("/aggregates")
		{
			aggregates.GET("", aggregateHandler.GetAggregates)
			aggregates.GET("/chart", aggregateHandler.GetAggregateChart)
		}
	}

	return r
}
