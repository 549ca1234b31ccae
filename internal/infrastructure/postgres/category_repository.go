package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `c.id, c.name, COALESCE(c.description, ''), c.color, c.icon, c.active, c.created_at, c.updated_at`

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL.
type CategoryRepo struct {
	q Querier
}

func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func scanCategory(row pgx.Row, extra ...any) (*entity.Category, error) {
	var c entity.Category
	dest := append([]any{&c.ID, &c.Name, &c.Description, &c.Color, &c.Icon, &c.Active, &c.CreatedAt, &c.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO categories (id, name, description, color, icon, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.Description, c.Color, c.Icon, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	var count int
	c, err := scanCategory(r.q.QueryRow(ctx, `
		SELECT `+categoryColumns+`,
			(SELECT COUNT(*) FROM products p WHERE p.category_id = c.id AND p.active)
		FROM categories c WHERE c.id = $1`, id), &count)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	c.ProductCount = count
	return c, nil
}

// ExistsName compara sin distinguir mayúsculas.
func (r *CategoryRepo) ExistsName(ctx context.Context, name, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE lower(name) = lower($1) AND ($2::text = '' OR id::text <> $2::text))`,
		name, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx, `
		UPDATE categories SET name = $2, description = $3, color = $4, icon = $5, updated_at = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Color, c.Icon, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *CategoryRepo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.q.Exec(ctx, `UPDATE categories SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set category active: %w", err)
	}
	return nil
}

// List categorías ordenadas por nombre con la cantidad de productos activos.
func (r *CategoryRepo) List(ctx context.Context, f repository.CategoryFilter) ([]*entity.Category, error) {
	lq := newListQuery().
		Bool("c.active", f.Active).
		Search(f.Search, "c.name", "c.description")

	sql, args := lq.SelectAll(`
		SELECT `+categoryColumns+`, COUNT(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.active`,
		`GROUP BY c.id ORDER BY c.name ASC`)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Category, 0)
	for rows.Next() {
		var count int
		c, err := scanCategory(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.ProductCount = count
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *CategoryRepo) Stats(ctx context.Context, top int) (*repository.CategoryStats, error) {
	var s repository.CategoryStats
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE active), COUNT(*) FILTER (WHERE NOT active)
		FROM categories`).Scan(&s.TotalCategories, &s.ActiveCategories, &s.InactiveCategories)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT `+categoryColumns+`, COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.active
		WHERE c.active
		GROUP BY c.id
		ORDER BY product_count DESC, c.name ASC
		LIMIT $1`, top)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	defer rows.Close()

	s.TopCategories = make([]entity.Category, 0, top)
	for rows.Next() {
		var count int
		c, err := scanCategory(rows, &count)
		if err != nil {
			return nil, fmt.Errorf("scan top category: %w", err)
		}
		c.ProductCount = count
		s.TopCategories = append(s.TopCategories, *c)
	}
	return &s, rows.Err()
}
