package repository

import "math"

// Límites de paginación compartidos por todos los listados.
const (
	DefaultPageLimit = 25
	MaxPageLimit     = 100
)

// Page página solicitada, ya acotada: Number >= 1 y 1 <= Limit <= MaxPageLimit.
type Page struct {
	Number int
	Limit  int
}

// NewPage acota número y tamaño de página. Un límite 0 (ausente) toma el valor por defecto.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	switch {
	case limit == 0:
		limit = DefaultPageLimit
	case limit < 1:
		limit = 1
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	// Offset debe caber en int.
	if number > math.MaxInt/limit {
		number = math.MaxInt / limit
	}
	return Page{Number: number, Limit: limit}
}

// Offset filas a saltar.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// Pages total de páginas para total filas: ceil(total / limit).
func (p Page) Pages(total int) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
