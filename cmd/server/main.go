package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sti-backend/internal/annotations"
	"sti-backend/internal/config"
	"sti-backend/internal/database"
	"sti-backend/internal/detector"
	"sti-backend/internal/export"
	"sti-backend/internal/handlers"
	"sti-backend/internal/inspection"
	"sti-backend/internal/media"
	"sti-backend/internal/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Run migrations before serving traffic
	migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize migrator", zap.Error(err))
	}
	if err := migrator.Run(); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	migrator.Close()
	logger.Info("migrations completed")

	dbClient, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize database client", zap.Error(err))
	}
	defer dbClient.Close()

	// Media access
	resolver := media.NewResolver(cfg.MediaRoot)
	store := media.NewStore(cfg.MediaRoot)

	// Domain services
	annotationStore := annotations.NewStore(dbClient.DB())
	inspectionService := inspection.NewService(dbClient, store, resolver, logger)
	detectorClient := detector.NewClient(cfg.DetectorBaseURL,
		time.Duration(cfg.DetectorTimeoutSeconds)*time.Second, logger)
	exportPipeline := export.NewPipeline(dbClient, annotationStore, resolver, cfg.ExportRoot, logger)

	// Handlers
	transformersHandler := handlers.NewTransformersHandler(dbClient)
	inspectionsHandler := handlers.NewInspectionsHandler(dbClient, inspectionService, store)
	baselineHandler := handlers.NewBaselineHandler(dbClient, store, resolver, logger)
	mediaHandler := handlers.NewMediaHandler(dbClient, inspectionService, resolver)
	annotationsHandler := handlers.NewAnnotationsHandler(annotationStore, detectorClient, logger)
	exportHandler := handlers.NewExportHandler(exportPipeline, detectorClient, logger)
	tableHandler := handlers.NewTableHandler(dbClient)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", handlers.HealthHandler)

	// Uploaded media served directly
	router.Static("/media", resolver.Root())

	api := router.Group("/api")

	// Transformers (path parameter accepts the transformer number or UUID)
	api.POST("/transformers", transformersHandler.Create)
	api.GET("/transformers", transformersHandler.List)
	api.GET("/transformers/:no", transformersHandler.Get)
	api.PUT("/transformers/:no", transformersHandler.Update)
	api.DELETE("/transformers/:no", transformersHandler.Delete)
	api.GET("/get-transformer-data", transformersHandler.GetData)

	// Baseline images
	api.POST("/transformers/:no/baseline-image", baselineHandler.Upload)
	api.GET("/transformers/:no/baseline-image", baselineHandler.Serve)
	api.GET("/transformers/:no/baseline", baselineHandler.Info)
	api.DELETE("/transformers/:no/baseline-image", baselineHandler.Delete)

	// Inspections
	api.POST("/transformers/:no/inspections", inspectionsHandler.Create)
	api.GET("/transformers/:no/inspections", inspectionsHandler.ListByTransformer)
	api.GET("/inspections/:id", inspectionsHandler.Get)
	api.PATCH("/inspections/:id", inspectionsHandler.Patch)
	api.DELETE("/inspections/:id", inspectionsHandler.Delete)
	api.DELETE("/inspections/:id/thermal-image", inspectionsHandler.DeleteThermalImage)
	api.POST("/inspections/:id/images", inspectionsHandler.UploadImage)
	api.GET("/inspections/:id/images", inspectionsHandler.ListImages)

	// Thermal image upload and comparison view
	api.POST("/upload-thermal-image", mediaHandler.UploadThermal)
	api.GET("/get-inspection", mediaHandler.GetInspectionView)

	// Inspection table
	api.GET("/get-inspection-table", tableHandler.Get)
	api.GET("/get-inspection-table/export", tableHandler.Export)

	// AI analysis and annotations
	api.POST("/analyze-thermal-image", annotationsHandler.Analyze)
	api.POST("/save-annotations", annotationsHandler.Save)
	api.GET("/get-annotations/:inspectionId", annotationsHandler.Get)

	// Dataset export / retraining
	api.POST("/retrain/export-dataset", exportHandler.ExportDataset)
	api.POST("/retrain/start", exportHandler.StartRetrain)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
