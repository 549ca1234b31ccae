package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Ventas y entregas comparten la forma de sus líneas y medios de pago; sólo cambia la tabla y la FK.
type lineTables struct {
	items    string // sale_items | delivery_items
	payments string // sale_payments | delivery_payments
	fk       string // sale_id | delivery_id
}

var (
	saleLines     = lineTables{items: "sale_items", payments: "sale_payments", fk: "sale_id"}
	deliveryLines = lineTables{items: "delivery_items", payments: "delivery_payments", fk: "delivery_id"}
)

func (t lineTables) createItem(ctx context.Context, q Querier, it *entity.LineItem) error {
	_, err := q.Exec(ctx, `
		INSERT INTO `+t.items+` (id, `+t.fk+`, product_id, quantity, unit_price, subtotal, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		it.ID, it.ParentID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal, it.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", t.items, err)
	}
	return nil
}

func (t lineTables) createPayment(ctx context.Context, q Querier, parentID string, tender *entity.Tender) error {
	_, err := q.Exec(ctx,
		`INSERT INTO `+t.payments+` (id, `+t.fk+`, method, amount) VALUES ($1, $2, $3, $4)`,
		tender.ID, parentID, tender.Method, tender.Amount,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", t.payments, err)
	}
	return nil
}

func (t lineTables) listItems(ctx context.Context, q Querier, parentID string) ([]entity.LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT i.id, i.`+t.fk+`, i.product_id, i.quantity, i.unit_price, i.subtotal, i.created_at,
			p.name, COALESCE(p.barcode, ''), COALESCE(p.image, ''), p.unit_type
		FROM `+t.items+` i
		JOIN products p ON p.id = i.product_id
		WHERE i.`+t.fk+` = $1
		ORDER BY i.created_at ASC, i.id ASC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.items, err)
	}
	defer rows.Close()

	items := make([]entity.LineItem, 0)
	for rows.Next() {
		var it entity.LineItem
		if err := rows.Scan(&it.ID, &it.ParentID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal, &it.CreatedAt,
			&it.ProductName, &it.ProductBarcode, &it.ProductImage, &it.ProductUnitType); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.items, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (t lineTables) listPayments(ctx context.Context, q Querier, parentIDs []string) (map[string][]entity.Tender, error) {
	out := make(map[string][]entity.Tender, len(parentIDs))
	if len(parentIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT `+t.fk+`::text, id, method, amount
		FROM `+t.payments+`
		WHERE `+t.fk+`::text = ANY($1)
		ORDER BY `+t.fk+`, amount DESC`, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.payments, err)
	}
	defer rows.Close()

	for rows.Next() {
		var parentID string
		var tender entity.Tender
		if err := rows.Scan(&parentID, &tender.ID, &tender.Method, &tender.Amount); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.payments, err)
		}
		out[parentID] = append(out[parentID], tender)
	}
	return out, rows.Err()
}
