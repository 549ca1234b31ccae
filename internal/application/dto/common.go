package dto

import "github.com/jhoicas/pos-api/internal/domain/repository"

// Response envelope común de todas las respuestas JSON.
type Response struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"` // errores del validador por campo
}

// PageRequest paginación para listados (?page=&limit=).
type PageRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// ToPage aplica los límites: page >= 1 y 1 <= limit <= 100.
func (p PageRequest) ToPage() repository.Page {
	return repository.NewPage(p.Page, p.Limit)
}

// Pagination metadatos de página en respuestas.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination arma los metadatos a partir de la página aplicada y el total del COUNT.
func NewPagination(page repository.Page, total int) Pagination {
	return Pagination{Page: page.Number, Limit: page.Limit, Total: total, Pages: page.Pages(total)}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PeriodRequest ?period=today|week|month|year
type PeriodRequest struct {
	Period string `query:"period"`
}
