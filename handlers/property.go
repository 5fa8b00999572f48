package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	propertyRepo "github.com/outrigger999/rental-recon/database/repository/property"
	"github.com/outrigger999/rental-recon/models"
	propertySvc "github.com/outrigger999/rental-recon/services/property"
	"github.com/outrigger999/rental-recon/services/traveltime"
	"github.com/outrigger999/rental-recon/utils"
)

// PropertyHandler serves the property CRUD and travel time endpoints.
type PropertyHandler struct {
	Service propertySvc.Service
	Images  propertySvc.ImageService // nil when image storage is not configured
}

func NewPropertyHandler(svc propertySvc.Service, images propertySvc.ImageService) *PropertyHandler {
	return &PropertyHandler{Service: svc, Images: images}
}

// propertyFromForm builds a property from the multipart form fields shared by
// the create and update endpoints.
func propertyFromForm(c *gin.Context) (*models.Property, error) {
	address := c.PostForm("address")
	propertyType := c.PostForm("property_type")
	if address == "" || propertyType == "" {
		return nil, fmt.Errorf("address and property_type are required")
	}

	price, err := strconv.ParseFloat(c.PostForm("price_per_month"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price_per_month")
	}
	sqft, err := strconv.ParseFloat(c.PostForm("square_footage"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid square_footage")
	}

	return &models.Property{
		Address:           address,
		PropertyType:      propertyType,
		PricePerMonth:     price,
		SquareFootage:     sqft,
		Description:       c.PostForm("description"),
		Contacts:          c.PostForm("contacts"),
		CatFriendly:       formBool(c, "cat_friendly"),
		AirConditioning:   formBool(c, "air_conditioning"),
		OnPremisesParking: formBool(c, "on_premises_parking"),
	}, nil
}

func formBool(c *gin.Context, field string) bool {
	switch c.PostForm(field) {
	case "true", "1", "on":
		return true
	}
	return false
}

// CreatePropertyHandler handles POST /api/properties.
func (h *PropertyHandler) CreatePropertyHandler(c *gin.Context) {
	logger := utils.GetLogger()

	p, err := propertyFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.Service.Create(c.Request.Context(), p)
	if err != nil {
		logger.Error("Failed to create property", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The optional main image is best-effort; a storage failure does not roll
	// back the created listing.
	if file, err := c.FormFile("main_image"); err == nil && h.Images != nil {
		f, err := file.Open()
		if err == nil {
			defer f.Close()
			if _, err := h.Images.Attach(c.Request.Context(), created.ID, f, file.Filename, true); err != nil {
				logger.Warn("Could not store main image",
					zap.String("propertyId", created.ID), zap.Error(err))
			} else if reloaded, err := h.Service.Get(c.Request.Context(), created.ID); err == nil {
				created = reloaded
			}
		}
	}

	c.JSON(http.StatusOK, created)
}

// ListPropertiesHandler handles GET /api/properties.
func (h *PropertyHandler) ListPropertiesHandler(c *gin.Context) {
	skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)

	properties, err := h.Service.List(c.Request.Context(), skip, limit)
	if err != nil {
		utils.GetLogger().Error("Failed to list properties", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, properties)
}

// GetPropertyHandler handles GET /api/properties/:id.
func (h *PropertyHandler) GetPropertyHandler(c *gin.Context) {
	p, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdatePropertyHandler handles PUT /api/properties/:id.
func (h *PropertyHandler) UpdatePropertyHandler(c *gin.Context) {
	logger := utils.GetLogger()
	id := c.Param("id")

	p, err := propertyFromForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = id

	updated, err := h.Service.Update(c.Request.Context(), p)
	if err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		logger.Error("Failed to update property", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if h.Images != nil {
		if file, err := c.FormFile("main_image"); err == nil {
			// A new main image replaces the existing one.
			if err := h.Images.RemoveMain(c.Request.Context(), id); err != nil {
				logger.Warn("Could not remove previous main image", zap.String("id", id), zap.Error(err))
			}
			if f, err := file.Open(); err == nil {
				defer f.Close()
				if _, err := h.Images.Attach(c.Request.Context(), id, f, file.Filename, true); err != nil {
					logger.Warn("Could not store main image", zap.String("id", id), zap.Error(err))
				}
			}
		} else if c.PostForm("keep_main_image") != "true" {
			// No new image and not keeping the existing one.
			if err := h.Images.RemoveMain(c.Request.Context(), id); err != nil {
				logger.Warn("Could not remove main image", zap.String("id", id), zap.Error(err))
			}
		}
	}

	if reloaded, err := h.Service.Get(c.Request.Context(), id); err == nil {
		updated = reloaded
	}
	c.JSON(http.StatusOK, updated)
}

// PatchPropertyHandler handles PATCH /api/properties/:id, used for manual
// travel time corrections and contact edits.
func (h *PropertyHandler) PatchPropertyHandler(c *gin.Context) {
	var patch models.PropertyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Service.Patch(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeletePropertyHandler handles DELETE /api/properties/:id.
func (h *PropertyHandler) DeletePropertyHandler(c *gin.Context) {
	id := c.Param("id")

	// Stored images go with the listing.
	if h.Images != nil {
		if p, err := h.Service.Get(c.Request.Context(), id); err == nil {
			if cleaner, ok := h.Images.(*propertySvc.DefaultImageService); ok {
				cleaner.CleanupImages(c.Request.Context(), p)
			}
		}
	}

	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		utils.GetLogger().Error("Failed to delete property", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Property deleted"})
}

// CalculateTravelTimesHandler handles POST /api/properties/:id/calculate-travel-times.
func (h *PropertyHandler) CalculateTravelTimesHandler(c *gin.Context) {
	logger := utils.GetLogger()
	id := c.Param("id")

	useTuesday := c.Query("use_tuesday") == "true" || c.Query("use_tuesday") == "1"
	dayOffset, _ := strconv.Atoi(c.DefaultQuery("day_offset", "0"))

	p, report, err := h.Service.CalculateTravelTimes(c.Request.Context(), id, useTuesday, dayOffset)
	if err != nil {
		var upstream *traveltime.UpstreamError
		switch {
		case errors.Is(err, propertyRepo.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		case errors.Is(err, propertySvc.ErrOriginNotSet):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Global origin address not set"})
		case errors.Is(err, traveltime.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &upstream):
			logger.Error("Routing service rejected travel time request",
				zap.String("status", upstream.Status))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Travel time calculation failed"})
		default:
			logger.Error("Travel time calculation failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	resp := reportResponse(report)
	resp["property"] = p
	c.JSON(http.StatusOK, resp)
}

// reportResponse flattens a report into the per-slot response fields the
// frontend consumes. Absent slots render as null with an "N/A" display.
func reportResponse(report *models.TravelTimeReport) gin.H {
	out := gin.H{
		"calculation_day":       report.CalculationDay,
		"calculation_timestamp": report.CalculationTimestamp,
	}
	for _, slot := range models.AllTravelSlots {
		key := string(slot)
		est := report.Estimates[slot]
		if est == nil {
			out[key] = nil
			out[key+"_display"] = "N/A"
			continue
		}
		out[key] = est.Conservative
		out[key+"_display"] = est.Display
		if est.Anomaly {
			out[key+"_anomaly"] = true
		}
		if est.Note != "" {
			out[key+"_note"] = est.Note
		}
	}
	return out
}
