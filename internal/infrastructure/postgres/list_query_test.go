package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

func TestListQuery_SelectAndCountShareWhere(t *testing.T) {
	minPrice := decimal.NewFromInt(5)
	q := newListQuery().
		Eq("p.category_id", "cat-1").
		Eq("p.unit_type", "").
		Gte("p.price", &minPrice).
		Lte("p.price", nil).
		Search("yerba", "p.name", "p.barcode")

	sel, selArgs := q.Select("SELECT p.id FROM products p", "ORDER BY p.name ASC", repository.NewPage(2, 25))
	cnt, cntArgs := q.Count("SELECT COUNT(*) FROM products p")

	where := " WHERE p.category_id = $1 AND p.price >= $2 AND (p.name ILIKE $3 OR p.barcode ILIKE $3)"
	assert.Equal(t, "SELECT COUNT(*) FROM products p"+where, cnt)
	assert.Equal(t, "SELECT p.id FROM products p"+where+" ORDER BY p.name ASC LIMIT $4 OFFSET $5", sel)

	assert.Equal(t, []any{"cat-1", minPrice, "%yerba%"}, cntArgs)
	assert.Equal(t, append(cntArgs, 25, 25), selArgs)
}

func TestListQuery_PageTwoOfThirty(t *testing.T) {
	page := repository.NewPage(2, 25)
	_, args := newListQuery().Select("SELECT 1", "", page)

	assert.Equal(t, []any{25, 25}, args)
	assert.Equal(t, 2, page.Pages(30))
}

func TestListQuery_Dates(t *testing.T) {
	q := newListQuery().
		DateFrom("s.created_at", "2024-03-01").
		DateTo("s.created_at", "2024-03-31").
		DateFrom("s.created_at", "01/03/2024").
		DateTo("s.created_at", "2024-3-1")

	sql, args := q.Count("SELECT COUNT(*) FROM sales s")
	assert.Equal(t, "SELECT COUNT(*) FROM sales s WHERE s.created_at >= $1 AND s.created_at < $2", sql)
	if assert.Len(t, args, 2) {
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), args[0])
		assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local), args[1])
	}
}

func TestListQuery_WherePlaceholders(t *testing.T) {
	active := true
	q := newListQuery().Bool("p.active", &active).Where("p.stock > 0 AND p.stock <= p.min_stock").Where("p.price BETWEEN ? AND ?", 1, 2)

	sql, args := q.SelectAll("SELECT * FROM products p", "")
	assert.True(t, strings.HasSuffix(sql, "WHERE p.active = $1 AND p.stock > 0 AND p.stock <= p.min_stock AND p.price BETWEEN $2 AND $3"))
	assert.Equal(t, []any{true, 1, 2}, args)
}

func TestListQuery_Empty(t *testing.T) {
	q := newListQuery()
	assert.Equal(t, "", q.WhereClause())
	sql, args := q.Count("SELECT COUNT(*) FROM categories")
	assert.Equal(t, "SELECT COUNT(*) FROM categories", sql)
	assert.Empty(t, args)
}
