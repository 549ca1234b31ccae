package entity

import "time"

// Valores por defecto de presentación de una categoría.
const (
	DefaultCategoryColor = "#3B82F6"
	DefaultCategoryIcon  = "📦"
)

// Category agrupa productos. Se desactiva en lugar de borrarse.
type Category struct {
	ID          string
	Name        string
	Description string
	Color       string
	Icon        string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	ProductCount int // solo lectura en estadísticas
}
