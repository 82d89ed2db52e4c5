package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rossby-project/rossby/api"
	_ "github.com/rossby-project/rossby/docs"
	"github.com/rossby-project/rossby/internal/config"
	"github.com/rossby-project/rossby/internal/dataset"
	"github.com/rossby-project/rossby/internal/loader"
	"github.com/rossby-project/rossby/internal/logging"
	"github.com/rossby-project/rossby/internal/metrics"
)

func setupApp(app *gin.Engine, endpoint *api.Endpoint, logger *logrus.Logger, metric *metrics.Metrics) {
	app.Use(logging.RequestLogger(logger))
	app.Use(gin.Recovery())
	app.Use(gzip.Gzip(gzip.BestSpeed))

	served := app.Group("/")
	if metric != nil {
		served.Use(metrics.NewGinMiddleware(metric))
	}

	app.GET("/", endpoint.Health)

	served.GET("metadata", endpoint.MetadataGet)
	served.GET("point", endpoint.PointGet)
	served.GET("data", endpoint.DataGet)
	served.GET("image", endpoint.ImageGet)
	served.GET("heartbeat", endpoint.Heartbeat)

	app.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// @title        rossby
// @version      1.0
// @description  Serves gridded NetCDF data over HTTP: point interpolation, hyperslab extraction and map-image rendering.
// @license.name MIT
// @schemes      http https
func main() {
	cfg, datasetPath, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "loading config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}
	if datasetPath == "" {
		fmt.Fprintln(os.Stderr, "no dataset path given: pass one positionally or set data.file_path in --config")
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	if cfg.Server.Workers > 0 {
		runtime.GOMAXPROCS(cfg.Server.Workers)
	}

	accountURL := os.Getenv("ROSSBY_AZURE_ACCOUNT_URL")
	sasToken := os.Getenv("ROSSBY_AZURE_SAS_TOKEN")

	result, err := loader.Load(context.Background(), datasetPath, accountURL, sasToken)
	if err != nil {
		logger.WithError(err).Fatal("loading dataset")
	}
	if len(cfg.Data.DimensionAliases) > 0 {
		result.DimensionAliases = cfg.Data.DimensionAliases
	}

	ds, err := dataset.New(result)
	if err != nil {
		logger.WithError(err).Fatal("building dataset")
	}
	logger.WithField("variables", ds.VariableNames()).Info("dataset loaded")

	endpoint := &api.Endpoint{
		Dataset:              ds,
		DefaultInterpolation: cfg.Data.InterpolationMethod,
		MaxDataPoints:        cfg.Server.MaxDataPoints,
		ServerID:             uuid.NewString(),
		StartedAt:            time.Now(),
	}

	var metric *metrics.Metrics
	if cfg.Server.Metrics {
		metric = metrics.NewMetrics()
		endpoint.Metrics = metric

		/*
		 * Host the /metrics endpoint on a different app instance so it can
		 * be served on a different port, keeping the main server's request
		 * log free of scraper noise.
		 */
		metricsApp := gin.New()
		metricsApp.Use(gin.Recovery())
		metricsApp.GET("metrics", metrics.NewGinHandler(metric))

		go func() {
			addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
			if err := metricsApp.Run(addr); err != nil {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	app := gin.New()
	setupApp(app, endpoint, logger, metric)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.WithField("addr", addr).Info("starting rossby")
	if err := app.Run(addr); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
