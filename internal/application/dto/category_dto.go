package dto

import "time"

type CategoryRequest struct {
	Name        string `json:"name" validate:"max=100"`
	Description string `json:"description" validate:"max=1000"`
	Color       string `json:"color" validate:"omitempty,max=20"`
	Icon        string `json:"icon" validate:"omitempty,max=20"`
}

type CategoryResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Color        string    `json:"color"`
	Icon         string    `json:"icon"`
	Active       bool      `json:"active"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryListRequest Active: true, false o all (defecto todas).
type CategoryListRequest struct {
	Active string `query:"active"`
	Search string `query:"search"`
}

type CategoryStatsResponse struct {
	TotalCategories    int                `json:"total_categories"`
	ActiveCategories   int                `json:"active_categories"`
	InactiveCategories int                `json:"inactive_categories"`
	TopCategories      []CategoryResponse `json:"top_categories"`
}
