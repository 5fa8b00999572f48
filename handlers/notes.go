package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	propertyRepo "github.com/outrigger999/rental-recon/database/repository/property"
	"github.com/outrigger999/rental-recon/models"
	"github.com/outrigger999/rental-recon/utils"
)

// NoteHandler serves the timestamped notes attached to a property.
type NoteHandler struct {
	Repo propertyRepo.Repository
}

func NewNoteHandler(repo propertyRepo.Repository) *NoteHandler {
	return &NoteHandler{Repo: repo}
}

type addNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddNoteHandler handles POST /api/properties/:id/notes.
func (h *NoteHandler) AddNoteHandler(c *gin.Context) {
	propertyID := c.Param("id")

	var req addNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	note := models.PropertyNote{
		ID:        uuid.New().String(),
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := h.Repo.AddNote(c.Request.Context(), propertyID, note); err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		utils.GetLogger().Error("Failed to add note",
			zap.String("propertyId", propertyID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, note)
}

// ListNotesHandler handles GET /api/properties/:id/notes.
func (h *NoteHandler) ListNotesHandler(c *gin.Context) {
	notes, err := h.Repo.ListNotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notes)
}

// DeleteNoteHandler handles DELETE /api/properties/:id/notes/:noteId.
func (h *NoteHandler) DeleteNoteHandler(c *gin.Context) {
	propertyID := c.Param("id")
	noteID := c.Param("noteId")

	if err := h.Repo.DeleteNote(c.Request.Context(), propertyID, noteID); err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return
		}
		utils.GetLogger().Error("Failed to delete note",
			zap.String("propertyId", propertyID), zap.String("noteId", noteID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Note deleted"})
}
