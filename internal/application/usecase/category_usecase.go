package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

const topCategories = 5

// CategoryUseCase categorías de productos; se desactivan en lugar de borrarse.
type CategoryUseCase struct {
	repos repository.Repositories
	now   func() time.Time
}

func NewCategoryUseCase(repos repository.Repositories) *CategoryUseCase {
	return &CategoryUseCase{repos: repos, now: time.Now}
}

func (uc *CategoryUseCase) find(ctx context.Context, id string) (*entity.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("INVALID_CATEGORY_ID", "ID de categoría inválido")
	}
	cat, err := uc.repos.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, domain.NewNotFound("CATEGORY_NOT_FOUND", "Categoría no encontrada")
	}
	return cat, nil
}

func (uc *CategoryUseCase) List(ctx context.Context, in dto.CategoryListRequest) ([]dto.CategoryResponse, error) {
	list, err := uc.repos.Categories.List(ctx, repository.CategoryFilter{
		Active: parseActive(in.Active, nil),
		Search: strings.TrimSpace(in.Search),
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCategoryResponse(c))
	}
	return out, nil
}

func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	cat, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCategoryResponse(cat)
	return &resp, nil
}

// normalize valida nombre único (sin distinguir mayúsculas) y aplica color/ícono por defecto.
func (uc *CategoryUseCase) normalize(ctx context.Context, excludeID string, in dto.CategoryRequest) (*entity.Category, error) {
	c := &entity.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
		Icon:        strings.TrimSpace(in.Icon),
	}
	if c.Name == "" {
		return nil, domain.NewValidation("NAME_REQUIRED", "El nombre de la categoría es requerido")
	}
	if c.Color == "" {
		c.Color = entity.DefaultCategoryColor
	}
	if c.Icon == "" {
		c.Icon = entity.DefaultCategoryIcon
	}
	exists, err := uc.repos.Categories.ExistsName(ctx, c.Name, excludeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errCategoryExists(excludeID != "")
	}
	return c, nil
}

func errCategoryExists(other bool) error {
	if other {
		return domain.NewConflict("CATEGORY_EXISTS", "Ya existe otra categoría con este nombre")
	}
	return domain.NewConflict("CATEGORY_EXISTS", "Ya existe una categoría con este nombre")
}

func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	cat, err := uc.normalize(ctx, "", in)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	cat.ID = uuid.New().String()
	cat.Active = true
	cat.CreatedAt, cat.UpdatedAt = now, now
	if err := uc.repos.Categories.Create(ctx, cat); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, errCategoryExists(false)
		}
		return nil, err
	}
	resp := toCategoryResponse(cat)
	return &resp, nil
}

func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	current, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	cat, err := uc.normalize(ctx, current.ID, in)
	if err != nil {
		return nil, err
	}
	cat.ID = current.ID
	cat.UpdatedAt = uc.now()
	if err := uc.repos.Categories.Update(ctx, cat); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, errCategoryExists(true)
		}
		return nil, err
	}
	return uc.GetByID(ctx, cat.ID)
}

// Delete desactiva la categoría si ningún producto activo la usa.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	cat, err := uc.find(ctx, id)
	if err != nil {
		return err
	}
	n, err := uc.repos.Products.CountActiveByCategory(ctx, cat.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.NewConflict("CATEGORY_HAS_PRODUCTS",
			fmt.Sprintf("No se puede eliminar la categoría porque tiene %d productos asociados", n))
	}
	return uc.repos.Categories.SetActive(ctx, cat.ID, false)
}

func (uc *CategoryUseCase) Restore(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	cat, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.repos.Categories.SetActive(ctx, cat.ID, true); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, cat.ID)
}

func (uc *CategoryUseCase) Stats(ctx context.Context) (*dto.CategoryStatsResponse, error) {
	s, err := uc.repos.Categories.Stats(ctx, topCategories)
	if err != nil {
		return nil, err
	}
	top := make([]dto.CategoryResponse, 0, len(s.TopCategories))
	for i := range s.TopCategories {
		top = append(top, toCategoryResponse(&s.TopCategories[i]))
	}
	return &dto.CategoryStatsResponse{
		TotalCategories:    s.TotalCategories,
		ActiveCategories:   s.ActiveCategories,
		InactiveCategories: s.InactiveCategories,
		TopCategories:      top,
	}, nil
}

func toCategoryResponse(c *entity.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Color:        c.Color,
		Icon:         c.Icon,
		Active:       c.Active,
		ProductCount: c.ProductCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
