package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct{ c *conn }

// withCategory completa los campos de lectura como lo hace el JOIN en SQL.
func (r *productRepo) withCategory(p entity.Product) *entity.Product {
	if p.CategoryID != nil {
		if c, ok := r.c.state().categories[*p.CategoryID]; ok {
			p.CategoryName, p.CategoryColor, p.CategoryIcon = c.Name, c.Color, c.Icon
		}
	}
	return &p
}

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.c.lock()()
	if err := r.c.fail("Products.Create"); err != nil {
		return err
	}
	st := r.c.state()
	if p.Barcode != "" {
		for _, o := range st.products {
			if o.Barcode == p.Barcode {
				return domain.ErrDuplicate
			}
		}
	}
	st.products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.c.lock()()
	p, ok := r.c.state().products[id]
	if !ok {
		return nil, nil
	}
	return r.withCategory(p), nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *productRepo) ExistsBarcode(_ context.Context, barcode, excludeID string) (bool, error) {
	defer r.c.lock()()
	for id, p := range r.c.state().products {
		if p.Barcode == barcode && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	defer r.c.lock()()
	st := r.c.state()
	cur, ok := st.products[p.ID]
	if !ok {
		return nil
	}
	// stock y cost no se tocan desde Update
	next := *p
	next.Stock, next.Cost, next.Active, next.CreatedAt = cur.Stock, cur.Cost, cur.Active, cur.CreatedAt
	st.products[p.ID] = next
	return nil
}

func (r *productRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal) error {
	defer r.c.lock()()
	if err := r.c.fail("Products.UpdateStock"); err != nil {
		return err
	}
	st := r.c.state()
	if p, ok := st.products[id]; ok {
		p.Stock = stock
		p.UpdatedAt = time.Now()
		st.products[id] = p
	}
	return nil
}

func (r *productRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	defer r.c.lock()()
	st := r.c.state()
	if p, ok := st.products[id]; ok {
		p.Cost = cost
		st.products[id] = p
	}
	return nil
}

func (r *productRepo) Deactivate(_ context.Context, id string) error {
	defer r.c.lock()()
	st := r.c.state()
	if p, ok := st.products[id]; ok {
		p.Active = false
		st.products[id] = p
	}
	return nil
}

func (r *productRepo) CountSaleLines(_ context.Context, id string) (int, error) {
	defer r.c.lock()()
	n := 0
	for _, it := range r.c.state().saleItems {
		if it.ProductID == id {
			n++
		}
	}
	return n, nil
}

func (r *productRepo) CountActiveByCategory(_ context.Context, categoryID string) (int, error) {
	defer r.c.lock()()
	n := 0
	for _, p := range r.c.state().products {
		if p.Active && p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func matchStockLevel(p entity.Product, level string) bool {
	two := p.MinStock.Mul(decimal.NewFromInt(2))
	switch level {
	case repository.StockLevelCritical:
		return p.Stock.IsZero()
	case repository.StockLevelLow:
		return p.Stock.IsPositive() && p.Stock.LessThanOrEqual(p.MinStock)
	case repository.StockLevelNormal:
		return p.Stock.GreaterThan(p.MinStock) && p.Stock.LessThanOrEqual(two)
	case repository.StockLevelHigh:
		return p.Stock.GreaterThan(two)
	}
	return true
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	defer r.c.lock()()
	var out []*entity.Product
	for _, p := range r.c.state().products {
		switch {
		case f.Active != nil && p.Active != *f.Active,
			f.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != f.CategoryID),
			f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Barcode, f.Search) && !containsFold(p.Description, f.Search),
			!matchStockLevel(p, f.StockLevel),
			f.MinStock != nil && p.Stock.LessThan(*f.MinStock),
			f.MaxStock != nil && p.Stock.GreaterThan(*f.MaxStock),
			f.MinPrice != nil && p.Price.LessThan(*f.MinPrice),
			f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice):
			continue
		}
		out = append(out, r.withCategory(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return pageOf(out, f.Page), len(out), nil
}

func (r *productRepo) TopSelling(_ context.Context, limit int) ([]repository.TopProduct, error) {
	defer r.c.lock()()
	st := r.c.state()
	agg := map[string]*repository.TopProduct{}
	for _, it := range st.saleItems {
		s, ok := st.sales[it.ParentID]
		p, okp := st.products[it.ProductID]
		if !ok || !okp || s.Status != entity.SaleStatusCompleted || !p.Active {
			continue
		}
		tp, ok := agg[p.ID]
		if !ok {
			tp = &repository.TopProduct{Product: *r.withCategory(p)}
			agg[p.ID] = tp
		}
		tp.TotalSold = tp.TotalSold.Add(it.Quantity)
		tp.SalesCount++
	}
	out := make([]repository.TopProduct, 0, len(agg))
	for _, tp := range agg {
		out = append(out, *tp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalSold.Equal(out[j].TotalSold) {
			return out[i].TotalSold.GreaterThan(out[j].TotalSold)
		}
		return out[i].Product.Name < out[j].Product.Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *productRepo) LowStock(_ context.Context, limit int) ([]repository.StockAlert, error) {
	defer r.c.lock()()
	var out []repository.StockAlert
	for _, p := range r.c.state().products {
		if !p.Active || p.Stock.GreaterThan(p.MinStock) {
			continue
		}
		wp := r.withCategory(p)
		out = append(out, repository.StockAlert{
			ProductID: p.ID, Name: p.Name, Stock: p.Stock, MinStock: p.MinStock,
			UnitType: p.UnitType, CategoryName: wp.CategoryName,
			Level: inventory.AlertLevel(p.Stock, p.MinStock),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		zi, zj := out[i].Stock.IsZero(), out[j].Stock.IsZero()
		if zi != zj {
			return zi
		}
		if !out[i].Stock.Equal(out[j].Stock) {
			return out[i].Stock.LessThan(out[j].Stock)
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *productRepo) Stats(_ context.Context) (*repository.ProductStats, error) {
	defer r.c.lock()()
	s := &repository.ProductStats{}
	for _, p := range r.c.state().products {
		s.TotalProducts++
		if !p.Active {
			continue
		}
		s.ActiveProducts++
		if p.Stock.IsPositive() && p.Stock.LessThanOrEqual(p.MinStock) {
			s.LowStock++
		}
		if p.Stock.IsZero() {
			s.OutOfStock++
		}
		if p.UnitType == entity.UnitTypeKg {
			s.KgProducts++
		} else {
			s.UnitProducts++
		}
		s.TotalInventoryValue = s.TotalInventoryValue.Add(p.Stock.Mul(p.Price))
	}
	return s, nil
}

var _ repository.StockMovementRepository = (*movementRepo)(nil)

type movementRepo struct{ c *conn }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	defer r.c.lock()()
	if err := r.c.fail("Movements.Create"); err != nil {
		return err
	}
	st := r.c.state()
	st.movements = append(st.movements, *m)
	return nil
}

func (r *movementRepo) enrich(m entity.StockMovement) *entity.StockMovement {
	st := r.c.state()
	if p, ok := st.products[m.ProductID]; ok {
		m.ProductName, m.ProductImage, m.ProductUnitType = p.Name, p.Image, p.UnitType
	}
	if m.UserID != nil {
		m.UserName = st.users[*m.UserID].Name
	}
	return &m
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	defer r.c.lock()()
	for _, m := range r.c.state().movements {
		if m.ID == id {
			return r.enrich(m), nil
		}
	}
	return nil, nil
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	defer r.c.lock()()
	var out []*entity.StockMovement
	for _, m := range r.c.state().movements {
		switch {
		case f.ProductID != "" && m.ProductID != f.ProductID,
			f.Type != "" && m.Type != f.Type,
			f.UserID != "" && (m.UserID == nil || *m.UserID != f.UserID),
			!inDateRange(m.CreatedAt, f.StartDate, f.EndDate):
			continue
		}
		out = append(out, r.enrich(m))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return pageOf(out, f.Page), len(out), nil
}

func (r *movementRepo) SummaryByType(_ context.Context, from time.Time) ([]repository.MovementSummary, error) {
	defer r.c.lock()()
	agg := map[string]*repository.MovementSummary{}
	for _, m := range r.c.state().movements {
		if m.CreatedAt.Before(from) {
			continue
		}
		s, ok := agg[m.Type]
		if !ok {
			s = &repository.MovementSummary{Type: m.Type}
			agg[m.Type] = s
		}
		s.Count++
		s.TotalQuantity = s.TotalQuantity.Add(m.Quantity.Abs())
	}
	out := make([]repository.MovementSummary, 0, len(agg))
	for _, s := range agg {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

var _ repository.CategoryRepository = (*categoryRepo)(nil)

type categoryRepo struct{ c *conn }

func (r *categoryRepo) withCount(c entity.Category) *entity.Category {
	c.ProductCount = 0
	for _, p := range r.c.state().products {
		if p.Active && p.CategoryID != nil && *p.CategoryID == c.ID {
			c.ProductCount++
		}
	}
	return &c
}

func (r *categoryRepo) Create(_ context.Context, c *entity.Category) error {
	defer r.c.lock()()
	r.c.state().categories[c.ID] = *c
	return nil
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	defer r.c.lock()()
	c, ok := r.c.state().categories[id]
	if !ok {
		return nil, nil
	}
	return r.withCount(c), nil
}

func (r *categoryRepo) ExistsName(_ context.Context, name, excludeID string) (bool, error) {
	defer r.c.lock()()
	for id, c := range r.c.state().categories {
		if strings.EqualFold(c.Name, name) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *categoryRepo) Update(_ context.Context, c *entity.Category) error {
	defer r.c.lock()()
	st := r.c.state()
	if cur, ok := st.categories[c.ID]; ok {
		next := *c
		next.Active, next.CreatedAt = cur.Active, cur.CreatedAt
		st.categories[c.ID] = next
	}
	return nil
}

func (r *categoryRepo) SetActive(_ context.Context, id string, active bool) error {
	defer r.c.lock()()
	st := r.c.state()
	if c, ok := st.categories[id]; ok {
		c.Active = active
		st.categories[id] = c
	}
	return nil
}

func (r *categoryRepo) List(_ context.Context, f repository.CategoryFilter) ([]*entity.Category, error) {
	defer r.c.lock()()
	var out []*entity.Category
	for _, c := range r.c.state().categories {
		if f.Active != nil && c.Active != *f.Active {
			continue
		}
		if f.Search != "" && !containsFold(c.Name, f.Search) && !containsFold(c.Description, f.Search) {
			continue
		}
		out = append(out, r.withCount(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) Stats(_ context.Context, top int) (*repository.CategoryStats, error) {
	defer r.c.lock()()
	s := &repository.CategoryStats{}
	var active []entity.Category
	for _, c := range r.c.state().categories {
		s.TotalCategories++
		if c.Active {
			s.ActiveCategories++
			active = append(active, *r.withCount(c))
		} else {
			s.InactiveCategories++
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].ProductCount != active[j].ProductCount {
			return active[i].ProductCount > active[j].ProductCount
		}
		return active[i].Name < active[j].Name
	})
	if top > 0 && len(active) > top {
		active = active[:top]
	}
	s.TopCategories = active
	return s, nil
}
