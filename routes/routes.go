package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/outrigger999/rental-recon/handlers"
)

// RegisterPropertyRoutes registers the property CRUD endpoints along with
// their nested image and note resources.
func RegisterPropertyRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/properties")
	{
		api.POST("", hb.Property.CreatePropertyHandler)
		api.GET("", hb.Property.ListPropertiesHandler)
		api.GET("/:id", hb.Property.GetPropertyHandler)
		api.PUT("/:id", hb.Property.UpdatePropertyHandler)
		api.PATCH("/:id", hb.Property.PatchPropertyHandler)
		api.DELETE("/:id", hb.Property.DeletePropertyHandler)
		api.POST("/:id/calculate-travel-times", hb.Property.CalculateTravelTimesHandler)

		api.POST("/:id/upload", hb.Images.UploadImageHandler)
		api.POST("/:id/paste", hb.Images.PasteImageHandler)
		api.DELETE("/:id/images/:imageId", hb.Images.DeleteImageHandler)

		api.POST("/:id/notes", hb.Notes.AddNoteHandler)
		api.GET("/:id/notes", hb.Notes.ListNotesHandler)
		api.DELETE("/:id/notes/:noteId", hb.Notes.DeleteNoteHandler)
	}
}

// RegisterSettingsRoutes registers the global settings endpoints.
func RegisterSettingsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/settings")
	{
		api.GET("", hb.Settings.GetSettingsHandler)
		api.PUT("", hb.Settings.UpdateSettingsHandler)
		api.GET("/origin", hb.Settings.GetOriginHandler)
	}
}

// RegisterBackupRoutes registers backup management endpoints.
func RegisterBackupRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/backup")
	{
		api.GET("", hb.Backup.StatusHandler)
		api.POST("/trigger", hb.Backup.CreateBackupHandler)
		api.POST("/config", hb.Backup.UpdateConfigHandler)
		api.POST("/delete", hb.Backup.DeleteBackupsHandler)
		api.GET("/download/:filename", hb.Backup.DownloadBackupHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for maintenance operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.POST("/reset-database", hb.Admin.ResetDatabaseHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Rental Recon is up"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterPropertyRoutes(r, hb)
	RegisterSettingsRoutes(r, hb)
	RegisterBackupRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
