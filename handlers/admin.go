package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/outrigger999/rental-recon/database"
	"github.com/outrigger999/rental-recon/utils"
)

// AdminHandler serves maintenance endpoints.
type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// ResetDatabaseHandler handles POST /api/admin/reset-database. It wipes every
// collection; a fresh backup beforehand is the caller's responsibility.
func (h *AdminHandler) ResetDatabaseHandler(c *gin.Context) {
	logger := utils.GetLogger()

	if err := database.ResetDatabase(c.Request.Context()); err != nil {
		logger.Error("Database reset failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Warn("Database reset completed")
	c.JSON(http.StatusOK, gin.H{"detail": "Database reset complete"})
}
