package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	propertyRepo "github.com/outrigger999/rental-recon/database/repository/property"
	propertySvc "github.com/outrigger999/rental-recon/services/property"
	"github.com/outrigger999/rental-recon/utils"
)

// ImageHandler serves upload, paste and delete for property images. All
// endpoints return 503 when no image storage is configured.
type ImageHandler struct {
	Images propertySvc.ImageService
}

func NewImageHandler(images propertySvc.ImageService) *ImageHandler {
	return &ImageHandler{Images: images}
}

func (h *ImageHandler) unavailable(c *gin.Context) bool {
	if h.Images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return true
	}
	return false
}

// UploadImageHandler handles POST /api/properties/:id/images.
func (h *ImageHandler) UploadImageHandler(c *gin.Context) {
	if h.unavailable(c) {
		return
	}
	propertyID := c.Param("id")

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	isMain := c.PostForm("is_main") == "true"

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read uploaded file"})
		return
	}
	defer f.Close()

	img, err := h.Images.Attach(c.Request.Context(), propertyID, f, file.Filename, isMain)
	if err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		utils.GetLogger().Error("Image upload failed",
			zap.String("propertyId", propertyID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, img)
}

type pasteImageRequest struct {
	ImageData string `json:"image_data" binding:"required"`
	IsMain    *bool  `json:"is_main"`
}

// PasteImageHandler handles POST /api/properties/:id/images/paste, accepting
// a base64 data URL captured from the clipboard.
func (h *ImageHandler) PasteImageHandler(c *gin.Context) {
	if h.unavailable(c) {
		return
	}
	propertyID := c.Param("id")

	var req pasteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_data is required"})
		return
	}
	isMain := true
	if req.IsMain != nil {
		isMain = *req.IsMain
	}

	img, err := h.Images.Paste(c.Request.Context(), propertyID, req.ImageData, isMain)
	if err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		utils.GetLogger().Error("Pasted image upload failed",
			zap.String("propertyId", propertyID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, img)
}

// DeleteImageHandler handles DELETE /api/properties/:id/images/:imageId.
func (h *ImageHandler) DeleteImageHandler(c *gin.Context) {
	if h.unavailable(c) {
		return
	}
	propertyID := c.Param("id")
	imageID := c.Param("imageId")

	if err := h.Images.Remove(c.Request.Context(), propertyID, imageID); err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		utils.GetLogger().Error("Image delete failed",
			zap.String("propertyId", propertyID), zap.String("imageId", imageID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Image deleted"})
}
