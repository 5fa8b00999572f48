package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	settingsRepo "github.com/outrigger999/rental-recon/database/repository/settings"
	"github.com/outrigger999/rental-recon/utils"
)

// SettingsHandler serves the single global settings record.
type SettingsHandler struct {
	Repo settingsRepo.Repository
}

func NewSettingsHandler(repo settingsRepo.Repository) *SettingsHandler {
	return &SettingsHandler{Repo: repo}
}

// GetSettingsHandler handles GET /api/settings.
func (h *SettingsHandler) GetSettingsHandler(c *gin.Context) {
	settings, err := h.Repo.Get(c.Request.Context())
	if err != nil {
		utils.GetLogger().Error("Failed to load settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetOriginHandler handles GET /api/settings/origin.
func (h *SettingsHandler) GetOriginHandler(c *gin.Context) {
	settings, err := h.Repo.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"origin_address": settings.OriginAddress})
}

// UpdateSettingsHandler handles POST /api/settings.
func (h *SettingsHandler) UpdateSettingsHandler(c *gin.Context) {
	origin := c.PostForm("origin_address")
	if origin == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin_address is required"})
		return
	}

	settings, err := h.Repo.UpdateOrigin(c.Request.Context(), origin)
	if err != nil {
		utils.GetLogger().Error("Failed to update settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}
