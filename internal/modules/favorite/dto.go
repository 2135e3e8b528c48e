package favorite

import (
	"time"

	"stayhub/internal/domain"
)

type FavoriteResponse struct {
	ID         int64            `json:"id"`
	PropertyID int64            `json:"property_id"`
	Property   *domain.Property `json:"property,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

type FavoriteListResponse struct {
	Favorites []FavoriteResponse `json:"favorites"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PerPage   int                `json:"per_page"`
}

func ToFavoriteResponse(f *domain.Favorite) FavoriteResponse {
	return FavoriteResponse{
		ID:         f.ID,
		PropertyID: f.PropertyID,
		Property:   f.Property,
		CreatedAt:  f.CreatedAt,
	}
}

func ToFavoriteListResponse(favorites []domain.Favorite, total int64, page, perPage int) FavoriteListResponse {
	out := make([]FavoriteResponse, len(favorites))
	for i := range favorites {
		out[i] = ToFavoriteResponse(&favorites[i])
	}
	return FavoriteListResponse{
		Favorites: out,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}
}
