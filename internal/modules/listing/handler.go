package listing

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stayhub/internal/pkg/response"
	"stayhub/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	{
		properties.GET("", h.ListProperties)
		properties.GET("/:id", h.GetProperty)
	}
}

// RegisterHostRoutes wires the routes that require the host role. The
// caller applies the auth and role middleware.
func (h *Handler) RegisterHostRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	{
		properties.POST("", h.CreateProperty)
		properties.PUT("/:id", h.UpdateProperty)
		properties.GET("/my", h.GetMyProperties)
	}
}

// ListProperties handles GET /api/v1/properties with filters.
func (h *Handler) ListProperties(c *gin.Context) {
	var f repository.PropertyFilters

	f.City = c.Query("city")
	f.Country = c.Query("country")

	if v := c.Query("min_price"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = val
		}
	}
	if v := c.Query("max_price"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = val
		}
	}
	if v := c.Query("guests"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			f.MinGuests = val
		}
	}

	f.Limit = 20
	if v := c.Query("limit"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 && val <= 100 {
			f.Limit = val
		}
	}
	f.Offset = 0
	if v := c.Query("page"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			f.Offset = (val - 1) * f.Limit
		}
	}

	properties, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get properties")
		return
	}

	totalPages := (int(total) + f.Limit - 1) / f.Limit
	currentPage := (f.Offset / f.Limit) + 1

	response.Success(c, http.StatusOK, gin.H{
		"properties": properties,
		"pagination": gin.H{
			"page":        currentPage,
			"limit":       f.Limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}

	property, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"property": property})
}

func (h *Handler) GetMyProperties(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	properties, err := h.service.GetByHost(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get properties")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"properties": properties})
}

func (h *Handler) CreateProperty(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	property, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"property": property})
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}

	var req UpdatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
		return
	}

	property, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"property": property})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Property not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't have permission to manage this property")
	case errors.Is(err, ErrInvalidPropertyType):
		response.Error(c, http.StatusBadRequest, "INVALID_PROPERTY_TYPE", "Property type must be one of: entire_place, private_room, shared_room")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
