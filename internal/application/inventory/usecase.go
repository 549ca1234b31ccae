package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/inventory"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// MovementInput movimiento ya validado en forma, listo para aplicar dentro de una transacción.
type MovementInput struct {
	ProductID string
	Type      string
	Quantity  decimal.Decimal // para ajuste es el stock objetivo
	Reason    string
	Reference string
	UserID    *string
	UnitCost  *decimal.Decimal // sólo entrada: recalcula el costo promedio ponderado
	// AllowInactive permite reponer stock de productos dados de baja (anulación de ventas).
	AllowInactive bool
}

// UseCase libro de movimientos de stock: aplica entrada/salida/ajuste con bloqueo de fila
// (SELECT FOR UPDATE) y Commit/Rollback, y expone las consultas de inventario.
type UseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	now      func() time.Time
}

// NewUseCase construye el caso de uso. repos son los repositorios sobre el pool para lecturas.
func NewUseCase(txRunner repository.TxRunner, repos repository.Repositories) *UseCase {
	return &UseCase{txRunner: txRunner, repos: repos, now: time.Now}
}

// RegisterMovement valida el request y aplica el movimiento en su propia transacción.
func (uc *UseCase) RegisterMovement(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	if _, err := uuid.Parse(in.ProductID); err != nil {
		return nil, domain.NewValidation("INVALID_PRODUCT_ID", "ID de producto inválido")
	}
	if !entity.IsValidMovementType(in.Type) {
		return nil, domain.NewValidation("INVALID_MOVEMENT_TYPE", "Tipo de movimiento inválido. Debe ser: entrada, salida o ajuste")
	}
	if in.Quantity == nil {
		return nil, domain.NewValidation("INVALID_QUANTITY", "La cantidad debe ser un número válido")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.NewValidation("REASON_REQUIRED", "El motivo es requerido")
	}

	input := MovementInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  *in.Quantity,
		Reason:    reason,
		Reference: strings.TrimSpace(in.Reference),
		UserID:    optional(userID),
	}
	if in.Type == entity.MovementTypeEntrada {
		input.UnitCost = in.UnitCost
	}

	var saved *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		mov, err := uc.ApplyInTx(ctx, repos, input)
		if err != nil {
			return err
		}
		// Releer dentro de la tx para devolver nombres de producto y usuario.
		saved, err = repos.Movements.GetByID(ctx, mov.ID)
		if err != nil {
			return err
		}
		if saved == nil {
			saved = mov
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(saved)
	return &resp, nil
}

// ApplyInTx aplica un movimiento usando los repositorios de la transacción del llamador.
// Bloquea el producto, calcula el nuevo stock, lo persiste y registra el movimiento.
func (uc *UseCase) ApplyInTx(ctx context.Context, repos repository.Repositories, in MovementInput) (*entity.StockMovement, error) {
	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || (!product.Active && !in.AllowInactive) {
		return nil, domain.NewNotFound("PRODUCT_NOT_FOUND", "Producto no encontrado")
	}

	delta, newStock, err := inventory.Apply(product.Stock, in.Type, in.Quantity, product.UnitType)
	if err != nil {
		return nil, err
	}

	if in.Type == entity.MovementTypeEntrada && in.UnitCost != nil {
		cost := inventory.WeightedAverageCost(product.Stock, product.Cost, delta, *in.UnitCost)
		if err := repos.Products.UpdateCost(ctx, product.ID, cost); err != nil {
			return nil, err
		}
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, newStock); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:              uuid.New().String(),
		ProductID:       product.ID,
		Type:            in.Type,
		Quantity:        delta,
		PreviousStock:   product.Stock,
		NewStock:        newStock,
		Reason:          in.Reason,
		Reference:       in.Reference,
		UserID:          in.UserID,
		CreatedAt:       uc.now(),
		ProductName:     product.Name,
		ProductImage:    product.Image,
		ProductUnitType: product.UnitType,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ListMovements historial paginado con filtros permitidos.
func (uc *UseCase) ListMovements(ctx context.Context, in dto.MovementListRequest) (*dto.MovementListResponse, error) {
	page := in.ToPage()
	list, total, err := uc.repos.Movements.List(ctx, repository.MovementFilter{
		ProductID: in.ProductID,
		Type:      in.Type,
		UserID:    in.UserID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Page:      page,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return &dto.MovementListResponse{Movements: out, Pagination: dto.NewPagination(page, total)}, nil
}

// Alerts productos activos con stock en o bajo el mínimo.
func (uc *UseCase) Alerts(ctx context.Context) ([]dto.StockAlertResponse, error) {
	alerts, err := uc.repos.Products.LowStock(ctx, 0)
	if err != nil {
		return nil, err
	}
	return toAlertResponses(alerts), nil
}

// Stats métricas generales, movimientos del mes en curso y las 10 alertas más urgentes.
func (uc *UseCase) Stats(ctx context.Context) (*dto.StockStatsResponse, error) {
	stats, err := uc.repos.Products.Stats(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	summary, err := uc.repos.Movements.SummaryByType(ctx, monthStart)
	if err != nil {
		return nil, err
	}
	alerts, err := uc.repos.Products.LowStock(ctx, 10)
	if err != nil {
		return nil, err
	}

	var resp dto.StockStatsResponse
	resp.General.TotalProducts = stats.TotalProducts
	resp.General.ActiveProducts = stats.ActiveProducts
	resp.General.LowStock = stats.LowStock
	resp.General.OutOfStock = stats.OutOfStock
	resp.General.UnitProducts = stats.UnitProducts
	resp.General.KgProducts = stats.KgProducts
	resp.General.TotalInventoryValue = stats.TotalInventoryValue
	resp.MonthlyMovements = make([]dto.MovementSummaryResponse, 0, len(summary))
	for _, s := range summary {
		resp.MonthlyMovements = append(resp.MonthlyMovements, dto.MovementSummaryResponse{
			Type: s.Type, Count: s.Count, TotalQuantity: s.TotalQuantity,
		})
	}
	resp.Alerts = toAlertResponses(alerts)
	return &resp, nil
}

// ToMovementResponse mapea entidad -> DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		ProductName:     m.ProductName,
		ProductImage:    m.ProductImage,
		ProductUnitType: m.ProductUnitType,
		Type:            m.Type,
		Quantity:        m.Quantity,
		PreviousStock:   m.PreviousStock,
		NewStock:        m.NewStock,
		Reason:          m.Reason,
		Reference:       m.Reference,
		UserID:          m.UserID,
		UserName:        m.UserName,
		CreatedAt:       m.CreatedAt,
	}
}

func toAlertResponses(alerts []repository.StockAlert) []dto.StockAlertResponse {
	out := make([]dto.StockAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.StockAlertResponse{
			ProductID:    a.ProductID,
			Name:         a.Name,
			Stock:        a.Stock,
			MinStock:     a.MinStock,
			UnitType:     a.UnitType,
			CategoryName: a.CategoryName,
			AlertLevel:   a.Level,
		})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
