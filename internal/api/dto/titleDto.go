package dto

import "titlehub/internal/api/models"

// CreateTitleDTO used for POST /titles. Category and genres are referred
// to by slug, as in the read model.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Genre       []string `json:"genre,omitempty"`
}

// UpdateTitleDTO used for PATCH /titles/:id (partial updates allowed)
type UpdateTitleDTO struct {
	Name        *string  `json:"name,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Genre       []string `json:"genre,omitempty"`
}

// TitleResponse carries the derived rating: nil when the title has no
// reviews yet.
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *int              `json:"rating"`
	Description *string           `json:"description,omitempty"`
	Genre       []SluggedResponse `json:"genre"`
	Category    *SluggedResponse  `json:"category"`
}

// FromModelToTitleResponse converts a Title model plus its derived
// rating to the read DTO.
func FromModelToTitleResponse(t *models.Title, rating *int) *TitleResponse {
	genres := make([]SluggedResponse, 0, len(t.Genres))
	for _, g := range t.Genres {
		genres = append(genres, FromSlugged(g))
	}

	var category *SluggedResponse
	if t.Category != nil {
		c := FromSlugged(*t.Category)
		category = &c
	}

	return &TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genre:       genres,
		Category:    category,
	}
}
