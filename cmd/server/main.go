package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jengzang/sdr-records-go/internal/api"
	"github.com/jengzang/sdr-records-go/internal/config"
	"github.com/jengzang/sdr-records-go/internal/database"
	"github.com/jengzang/sdr-records-go/internal/logger"
	"github.com/jengzang/sdr-records-go/internal/metrics"
	"github.com/jengzang/sdr-records-go/internal/repository"
	"github.com/jengzang/sdr-records-go/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{}).WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.UsesDefaultJWTSecret() {
		log.Warn("JWT_SECRET is not set; write endpoints accept tokens signed with the built-in default secret")
	}

	// 初始化数据库
	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db, log.WithComponent("migrate")); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}
	schemaVersion, dirty, err := database.MigrationVersion(db)
	if err != nil {
		log.WithError(err).Fatal("Failed to read schema version")
	}
	log.WithFields(logrus.Fields{"schema_version": schemaVersion, "dirty": dirty}).Info("Database ready")

	collector, err := metrics.New(nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to register metrics")
	}

	svc := service.NewMeasurementService(repository.NewMeasurementRepository(db), service.Options{
		DefaultEpsilon: cfg.DefaultEpsilon,
		Metrics:        collector,
		Logger:         log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Reload(ctx); err != nil {
		log.WithError(err).Fatal("Failed to load measurements")
	}

	// 初始化路由
	router := api.SetupRouter(api.Dependencies{
		Config:             cfg,
		Logger:             log,
		Metrics:            collector,
		MeasurementService: svc,
		SchemaVersion:      schemaVersion,
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// 启动服务器
		log.WithField("addr", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
