package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `
	p.id, p.name, COALESCE(p.description, ''), p.price, p.price_level_2, p.price_level_3, p.cost,
	p.stock, p.min_stock, p.unit_type, p.category_id, COALESCE(p.barcode, ''), COALESCE(p.image, ''),
	p.active, p.created_at, p.updated_at,
	COALESCE(c.name, ''), COALESCE(c.color, ''), COALESCE(c.icon, '')`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.PriceLevel2, &p.PriceLevel3, &p.Cost,
		&p.Stock, &p.MinStock, &p.UnitType, &p.CategoryID, &p.Barcode, &p.Image,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.CategoryColor, &p.CategoryIcon,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, price_level_2, price_level_3, cost, stock, min_stock,
			unit_type, category_id, barcode, image, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.PriceLevel2, p.PriceLevel3, p.Cost, p.Stock, p.MinStock,
		p.UnitType, p.CategoryID, nullString(p.Barcode), p.Image, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID con los datos de su categoría.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetForUpdate igual que GetByID pero bloquea la fila del producto hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`SELECT `+productColumns+productFrom+` WHERE p.id = $1 FOR UPDATE OF p`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return p, nil
}

// ExistsBarcode indica si otro producto usa el código de barras.
func (r *ProductRepo) ExistsBarcode(ctx context.Context, barcode, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM products WHERE barcode = $1 AND ($2::text = '' OR id::text <> $2::text))`,
		barcode, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check barcode: %w", err)
	}
	return exists, nil
}

// Update actualiza un producto existente. No modifica Stock ni Cost (se manejan vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, price = $4, price_level_2 = $5, price_level_3 = $6,
			min_stock = $7, unit_type = $8, category_id = $9, barcode = $10, image = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.PriceLevel2, p.PriceLevel3,
		p.MinStock, p.UnitType, p.CategoryID, nullString(p.Barcode), p.Image, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// UpdateStock fija el stock del producto (usado por el libro de movimientos).
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, id, stock)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	return nil
}

// UpdateCost actualiza solo el costo del producto.
func (r *ProductRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET cost = $2, updated_at = now() WHERE id = $1`, id, cost)
	if err != nil {
		return fmt.Errorf("update product cost: %w", err)
	}
	return nil
}

// Deactivate baja lógica.
func (r *ProductRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE products SET active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	return nil
}

func (r *ProductRepo) CountSaleLines(ctx context.Context, id string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sale_items WHERE product_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sale lines: %w", err)
	}
	return n, nil
}

func (r *ProductRepo) CountActiveByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1 AND active = TRUE`, categoryID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products by category: %w", err)
	}
	return n, nil
}

// List aplica los filtros permitidos y devuelve la página junto con el total.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	lq := newListQuery().
		Bool("p.active", f.Active).
		Eq("p.category_id", f.CategoryID).
		Search(f.Search, "p.name", "p.description", "p.barcode").
		Gte("p.stock", f.MinStock).
		Lte("p.stock", f.MaxStock).
		Gte("p.price", f.MinPrice).
		Lte("p.price", f.MaxPrice)

	switch f.StockLevel {
	case repository.StockLevelCritical:
		lq.Where("p.stock = 0")
	case repository.StockLevelLow:
		lq.Where("p.stock > 0 AND p.stock <= p.min_stock")
	case repository.StockLevelNormal:
		lq.Where("p.stock > p.min_stock AND p.stock <= p.min_stock * 2")
	case repository.StockLevelHigh:
		lq.Where("p.stock > p.min_stock * 2")
	}

	var total int
	countSQL, countArgs := lq.Count(`SELECT COUNT(*)` + productFrom)
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	sql, args := lq.Select(`SELECT `+productColumns+productFrom, `ORDER BY p.name ASC, p.id ASC`, f.Page)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// TopSelling productos más vendidos considerando sólo ventas completadas.
func (r *ProductRepo) TopSelling(ctx context.Context, limit int) ([]repository.TopProduct, error) {
	query := `SELECT ` + productColumns + `, SUM(si.quantity) AS total_sold, COUNT(DISTINCT s.id) AS sales_count` +
		productFrom + `
		JOIN sale_items si ON si.product_id = p.id
		JOIN sales s ON s.id = si.sale_id AND s.status = 'completed'
		WHERE p.active = TRUE
		GROUP BY p.id, c.id
		ORDER BY total_sold DESC, p.name ASC
		LIMIT $1`
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top selling products: %w", err)
	}
	defer rows.Close()

	out := make([]repository.TopProduct, 0)
	for rows.Next() {
		var t repository.TopProduct
		p := &t.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.PriceLevel2, &p.PriceLevel3, &p.Cost,
			&p.Stock, &p.MinStock, &p.UnitType, &p.CategoryID, &p.Barcode, &p.Image,
			&p.Active, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName, &p.CategoryColor, &p.CategoryIcon,
			&t.TotalSold, &t.SalesCount,
		); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// LowStock productos activos con stock <= mínimo, los críticos primero.
func (r *ProductRepo) LowStock(ctx context.Context, limit int) ([]repository.StockAlert, error) {
	query := `
		SELECT p.id, p.name, p.stock, p.min_stock, p.unit_type, COALESCE(c.name, '')` + productFrom + `
		WHERE p.active = TRUE AND p.stock <= p.min_stock
		ORDER BY CASE WHEN p.stock = 0 THEN 0 ELSE 1 END, p.stock ASC, p.name ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	defer rows.Close()

	out := make([]repository.StockAlert, 0)
	for rows.Next() {
		var a repository.StockAlert
		if err := rows.Scan(&a.ProductID, &a.Name, &a.Stock, &a.MinStock, &a.UnitType, &a.CategoryName); err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		a.Level = inventory.AlertLevel(a.Stock, a.MinStock)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Stats métricas generales del inventario.
func (r *ProductRepo) Stats(ctx context.Context) (*repository.ProductStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE active),
			COUNT(*) FILTER (WHERE active AND stock > 0 AND stock <= min_stock),
			COUNT(*) FILTER (WHERE active AND stock = 0),
			COUNT(*) FILTER (WHERE active AND unit_type = 'unidades'),
			COUNT(*) FILTER (WHERE active AND unit_type = 'kg'),
			COALESCE(SUM(stock * price) FILTER (WHERE active), 0)
		FROM products`
	var s repository.ProductStats
	err := r.q.QueryRow(ctx, query).Scan(
		&s.TotalProducts, &s.ActiveProducts, &s.LowStock, &s.OutOfStock,
		&s.UnitProducts, &s.KgProducts, &s.TotalInventoryValue,
	)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	return &s, nil
}
