package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/outrigger999/rental-recon/config"
	"github.com/outrigger999/rental-recon/cron"
	"github.com/outrigger999/rental-recon/database"
	propertyRepoPkg "github.com/outrigger999/rental-recon/database/repository/property"
	settingsRepoPkg "github.com/outrigger999/rental-recon/database/repository/settings"
	"github.com/outrigger999/rental-recon/handlers"
	"github.com/outrigger999/rental-recon/middleware"
	"github.com/outrigger999/rental-recon/routes"
	"github.com/outrigger999/rental-recon/services/backup"
	propertySvc "github.com/outrigger999/rental-recon/services/property"
	"github.com/outrigger999/rental-recon/services/storage"
	"github.com/outrigger999/rental-recon/services/traveltime"
	"github.com/outrigger999/rental-recon/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Image storage is optional; without credentials the image endpoints
	// respond 503 but everything else works.
	var storageService storage.Service
	if cld, err := storage.NewCloudinaryService(); err != nil {
		logger.Sugar().Warnf("main: image storage disabled: %v", err)
	} else {
		storageService = cld
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	propRepo := propertyRepoPkg.NewMongoPropertyRepo()
	setRepo := settingsRepoPkg.NewMongoSettingsRepo()

	// services.
	travelService := traveltime.NewCachedService(traveltime.NewService(), utils.GetCacheClient())

	propertyService := &propertySvc.DefaultService{
		Repo:     propRepo,
		Settings: setRepo,
		Travel:   travelService,
	}

	var imageService propertySvc.ImageService
	if storageService != nil {
		imageService = &propertySvc.DefaultImageService{
			Repo:    propRepo,
			Storage: storageService,
		}
	}

	backupService := backup.New(
		config.AppConfig.BackupDir,
		backup.MongoDump(database.MongoClient, config.AppConfig.DatabaseName, database.CollectionNames),
	)
	cron.InitBackupWorker(backupService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Property: handlers.NewPropertyHandler(propertyService, imageService),
		Images:   handlers.NewImageHandler(imageService),
		Notes:    handlers.NewNoteHandler(propRepo),
		Settings: handlers.NewSettingsHandler(setRepo),
		Backup:   handlers.NewBackupHandler(backupService),
		Admin:    handlers.NewAdminHandler(),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
