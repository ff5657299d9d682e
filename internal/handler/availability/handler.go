package availability

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicflow/availability-api/internal/model"
	availabilityService "github.com/clinicflow/availability-api/internal/service/availability"
	"github.com/clinicflow/availability-api/internal/service/slotgen"
	apperrors "github.com/clinicflow/availability-api/pkg/errors"
)

// roleHeader carries the caller's role from the upstream auth layer.
// Authentication itself happens before requests reach this service.
const roleHeader = "X-User-Role"

type Handler struct {
	service   *availabilityService.Service
	generator *slotgen.Service
}

func NewHandler(service *availabilityService.Service, generator *slotgen.Service) *Handler {
	return &Handler{service: service, generator: generator}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/availability")
	group.GET("", h.GetAvailability)
	group.GET("/slots", h.GetSlots)
	group.POST("/validate", h.ValidateDataset)
	group.DELETE("/cache", h.ClearCache)
	group.GET("/cache/stats", h.CacheStats)
}

// GetAvailability returns one aggregate per day in the requested range.
func (h *Handler) GetAvailability(c *gin.Context) {
	var query model.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if query.Role == "" {
		query.Role = model.Role(c.GetHeader(roleHeader))
	}

	data, err := h.service.GetAvailabilityData(c.Request.Context(), query)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

type slotsRequest struct {
	OrganizationID     uuid.UUID  `form:"organization_id" binding:"required"`
	Date               string     `form:"date" binding:"required"`
	DoctorID           *uuid.UUID `form:"doctor_id"`
	ServiceID          *uuid.UUID `form:"service_id"`
	LocationID         *uuid.UUID `form:"location_id"`
	SlotDuration       int        `form:"slot_duration" binding:"omitempty,min=5,max=240"`
	Role               model.Role `form:"role" binding:"omitempty,role"`
	SkipRoleFilter     bool       `form:"skip_role_filter"`
	ForceStandardRules bool       `form:"force_standard_rules"`
}

// GetSlots returns the raw slot list for a single date, bypassing the
// range cache.
func (h *Handler) GetSlots(c *gin.Context) {
	var req slotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = model.Role(c.GetHeader(roleHeader))
	}

	slots, err := h.generator.GenerateSlots(c.Request.Context(), model.SlotGenerationParams{
		OrganizationID:     req.OrganizationID,
		Date:               req.Date,
		DoctorID:           req.DoctorID,
		ServiceID:          req.ServiceID,
		LocationID:         req.LocationID,
		SlotDuration:       req.SlotDuration,
		Role:               req.Role,
		SkipRoleFilter:     req.SkipRoleFilter,
		ForceStandardRules: req.ForceStandardRules,
	})
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": slots})
}

type validateRequest struct {
	Component string                      `json:"component" binding:"required"`
	Source    string                      `json:"source" binding:"required"`
	Data      []model.DayAvailabilityData `json:"data" binding:"required"`
}

// ValidateDataset runs the integrity validator standalone, for
// diagnostics and tests.
func (h *Handler) ValidateDataset(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	result := h.service.ValidateAvailabilityData(req.Data, req.Component, req.Source)
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": result})
}

func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.service.ClearCache(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": h.service.CacheStats(c.Request.Context())})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if statusErr, ok := err.(interface{ StatusCode() int }); ok {
		status = statusErr.StatusCode()
	} else if apperrors.IsInvalidDate(err) {
		status = http.StatusBadRequest
	} else if apperrors.IsProviderFetch(err) {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"status": "error", "message": err.Error()})
}
