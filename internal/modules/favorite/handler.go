package favorite

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stayhub/internal/pkg/response"
	"stayhub/internal/repository"
)

type Handler struct {
	repo repository.FavoriteRepository
}

func NewHandler(repo repository.FavoriteRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.POST("/:propertyId", h.AddFavorite)
		favorites.DELETE("/:propertyId", h.RemoveFavorite)
		favorites.GET("/:propertyId/check", h.CheckFavorite)
	}
}

func (h *Handler) GetFavorites(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	favorites, total, err := h.repo.GetByUserID(userID, perPage, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get favorites")
		return
	}

	response.Success(c, http.StatusOK, ToFavoriteListResponse(favorites, total, page, perPage))
}

func (h *Handler) AddFavorite(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	propertyID, err := strconv.ParseInt(c.Param("propertyId"), 10, 64)
	if err != nil || propertyID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}

	fav, err := h.repo.Add(userID, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyFavorite) {
			response.Error(c, http.StatusConflict, "ALREADY_FAVORITE", "Property is already in favorites")
			return
		}
		response.Error(c, http.StatusInternalServerError, "ADD_FAILED", "Failed to add favorite")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"favorite": ToFavoriteResponse(fav)})
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	propertyID, err := strconv.ParseInt(c.Param("propertyId"), 10, 64)
	if err != nil || propertyID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}

	if err := h.repo.Remove(userID, propertyID); err != nil {
		if errors.Is(err, repository.ErrFavoriteNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Favorite not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REMOVE_FAILED", "Failed to remove favorite")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) CheckFavorite(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	propertyID, err := strconv.ParseInt(c.Param("propertyId"), 10, 64)
	if err != nil || propertyID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid property ID")
		return
	}

	exists, err := h.repo.Exists(userID, propertyID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "CHECK_FAILED", "Failed to check favorite")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"is_favorite": exists})
}
