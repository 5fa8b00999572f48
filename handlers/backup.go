package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/outrigger999/rental-recon/services/backup"
	"github.com/outrigger999/rental-recon/utils"
)

// BackupHandler serves backup status, creation, rotation config, deletion
// and archive download.
type BackupHandler struct {
	Service *backup.Service
}

func NewBackupHandler(svc *backup.Service) *BackupHandler {
	return &BackupHandler{Service: svc}
}

// StatusHandler handles GET /api/backup/status.
func (h *BackupHandler) StatusHandler(c *gin.Context) {
	cfg := h.Service.GetConfig()
	archives := h.Service.List()

	resp := gin.H{
		"backup_config": cfg,
		"backups":       archives,
		"backup_count":  len(archives),
	}
	if last := h.Service.LastBackupTime(); last != nil {
		resp["last_backup_time"] = last
	}
	c.JSON(http.StatusOK, resp)
}

// CreateBackupHandler handles POST /api/backup/create.
func (h *BackupHandler) CreateBackupHandler(c *gin.Context) {
	name, err := h.Service.Create(c.Request.Context())
	if err != nil {
		utils.GetLogger().Error("Backup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Backup created", "filename": name})
}

// UpdateConfigHandler handles POST /api/backup/config.
func (h *BackupHandler) UpdateConfigHandler(c *gin.Context) {
	maxBackups, err := strconv.Atoi(c.PostForm("max_backups"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_backups must be a number"})
		return
	}

	if err := h.Service.UpdateMaxBackups(maxBackups); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Service.GetConfig())
}

type deleteBackupsRequest struct {
	Filenames []string `json:"filenames" binding:"required"`
}

// DeleteBackupsHandler handles POST /api/backup/delete.
func (h *BackupHandler) DeleteBackupsHandler(c *gin.Context) {
	var req deleteBackupsRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Filenames) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filenames is required"})
		return
	}

	deleted, failed := h.Service.DeleteFiles(req.Filenames)
	c.JSON(http.StatusOK, gin.H{
		"deleted": deleted,
		"failed":  failed,
	})
}

// DownloadBackupHandler handles GET /api/backup/download/:filename.
func (h *BackupHandler) DownloadBackupHandler(c *gin.Context) {
	name := c.Param("filename")
	path, ok := h.Service.FilePath(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Backup not found"})
		return
	}
	c.FileAttachment(path, name)
}
