package repository

import (
	"context"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// CategoryFilter filtros del listado de categorías.
type CategoryFilter struct {
	Active *bool // nil = todas
	Search string
}

// CategoryStats totales y categorías con más productos activos.
type CategoryStats struct {
	TotalCategories    int
	ActiveCategories   int
	InactiveCategories int
	TopCategories      []entity.Category
}

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	ExistsName(ctx context.Context, name, excludeID string) (bool, error)
	Update(ctx context.Context, category *entity.Category) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, filter CategoryFilter) ([]*entity.Category, error)
	Stats(ctx context.Context, top int) (*CategoryStats, error)
}
