package dto

import "titlehub/internal/api/models"

// Categories and genres share the same wire shape: a name plus a slug.

type SluggedRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required"`
}

type SluggedResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromSlugged(s models.Slugged) SluggedResponse {
	return SluggedResponse{Name: s.GetName(), Slug: s.GetSlug()}
}
