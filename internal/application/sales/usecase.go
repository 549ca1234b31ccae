// Package sales ventas de mostrador: alta con descuento de stock y cobro, anulación y reportes.
package sales

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/order"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

const dailyTopProducts = 10

// TicketRenderer genera el comprobante imprimible de una venta.
type TicketRenderer interface {
	RenderSaleTicket(ctx context.Context, sale *dto.SaleResponse) ([]byte, error)
}

// UseCase ventas. El alta y la anulación corren en una única transacción que incluye
// los movimientos de stock, la cuenta corriente y la cabecera.
type UseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	ledger   *inventory.UseCase
	tickets  TicketRenderer
	log      *logger.Logger
	now      func() time.Time
}

func NewUseCase(txRunner repository.TxRunner, repos repository.Repositories, ledger *inventory.UseCase,
	tickets TicketRenderer, log *logger.Logger) *UseCase {
	return &UseCase{
		txRunner: txRunner,
		repos:    repos,
		ledger:   ledger,
		tickets:  tickets,
		log:      log.Component("sales"),
		now:      time.Now,
	}
}

// Create registra la venta como completed: cabecera, líneas, pagos, una salida de stock por línea
// y el cargo en cuenta corriente si corresponde.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	lines, err := order.ParseLines(in.Items)
	if err != nil {
		return nil, err
	}
	total, err := order.ParseTotal(in.Total)
	if err != nil {
		return nil, err
	}
	method, tenders, err := order.ParseTenders(total, in.PaymentMethod, in.PaymentMethods)
	if err != nil {
		return nil, err
	}

	var customerID *string
	if in.CustomerID != nil && strings.TrimSpace(*in.CustomerID) != "" {
		id := strings.TrimSpace(*in.CustomerID)
		if _, err := uuid.Parse(id); err != nil {
			return nil, domain.NewValidation("INVALID_CUSTOMER_ID", "ID de cliente inválido")
		}
		customerID = &id
	}
	onAccount := entity.AmountFor(tenders, entity.PaymentCuentaCorriente)
	if onAccount.IsPositive() && customerID == nil {
		return nil, domain.NewValidation("CUSTOMER_REQUIRED", "Las ventas en cuenta corriente requieren un cliente")
	}

	now := uc.now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		CustomerID:    customerID,
		UserID:        userID,
		Total:         total,
		PaymentMethod: method,
		Status:        entity.SaleStatusCompleted,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if customerID != nil {
			c, err := repos.Customers.GetByID(ctx, *customerID)
			if err != nil {
				return err
			}
			if c == nil || !c.Active {
				return domain.NewValidation("CUSTOMER_NOT_FOUND", "Cliente no encontrado o inactivo")
			}
		}
		session, err := repos.Cash.GetOpenForShare(ctx)
		if err != nil {
			return err
		}
		if session != nil {
			sale.CashSessionID = &session.ID
		}
		if err := repos.Sales.Create(ctx, sale); err != nil {
			return err
		}

		for _, item := range order.LineItems(sale.ID, lines, now) {
			if _, err := uc.ledger.ApplyInTx(ctx, repos, inventory.MovementInput{
				ProductID: item.ProductID,
				Type:      entity.MovementTypeSalida,
				Quantity:  item.Quantity,
				Reason:    "Venta " + sale.ID,
				Reference: sale.ID,
				UserID:    optional(userID),
			}); err != nil {
				return err
			}
			if err := repos.Sales.CreateItem(ctx, &item); err != nil {
				return err
			}
		}
		for i := range tenders {
			if err := repos.Sales.CreatePayment(ctx, sale.ID, &tenders[i]); err != nil {
				return err
			}
		}

		if onAccount.IsPositive() {
			if _, err := usecase.ApplyAccountTransaction(ctx, repos, usecase.AccountInput{
				CustomerID:  *customerID,
				Type:        entity.AccountTxCargo,
				Amount:      onAccount,
				Description: "Venta " + sale.ID,
				SaleID:      &sale.ID,
				UserID:      optional(userID),
			}, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("user_id", userID).
		Str("total", total.String()).
		Str("payment_method", method).
		Int("items", len(lines)).
		Msg("venta registrada")
	return uc.Get(ctx, sale.ID)
}

// Cancel anula una venta completada: repone stock, revierte el cargo en cuenta corriente y marca la cabecera.
func (uc *UseCase) Cancel(ctx context.Context, userID, id, reason string) (*dto.SaleResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("INVALID_SALE_ID", "ID de venta inválido")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidation("REASON_REQUIRED", "El motivo de anulación es requerido")
	}

	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		sale, err := repos.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.NewNotFound("SALE_NOT_FOUND", "Venta no encontrada")
		}
		if sale.Status == entity.SaleStatusCancelled {
			return domain.NewConflict("SALE_ALREADY_CANCELLED", "La venta ya fue anulada")
		}

		items, err := repos.Sales.ListItems(ctx, sale.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := uc.ledger.ApplyInTx(ctx, repos, inventory.MovementInput{
				ProductID:     item.ProductID,
				Type:          entity.MovementTypeEntrada,
				Quantity:      item.Quantity,
				Reason:        "Anulación venta " + sale.ID,
				Reference:     sale.ID,
				UserID:        optional(userID),
				AllowInactive: true,
			}); err != nil {
				return err
			}
		}

		payments, err := repos.Sales.ListPayments(ctx, sale.ID)
		if err != nil {
			return err
		}
		onAccount := entity.AmountFor(payments[sale.ID], entity.PaymentCuentaCorriente)
		if onAccount.IsPositive() && sale.CustomerID != nil {
			if _, err := usecase.ApplyAccountTransaction(ctx, repos, usecase.AccountInput{
				CustomerID:   *sale.CustomerID,
				Type:         entity.AccountTxPago,
				Amount:       onAccount,
				Description:  "Anulación venta " + sale.ID,
				SaleID:       &sale.ID,
				UserID:       optional(userID),
				Compensation: true,
			}, uc.now()); err != nil {
				return err
			}
		}
		return repos.Sales.Cancel(ctx, sale.ID, reason, uc.now())
	})
	if err != nil {
		return nil, err
	}

	uc.log.Warn().Str("sale_id", id).Str("user_id", userID).Str("reason", reason).Msg("venta anulada")
	return uc.Get(ctx, id)
}

// Get cabecera con líneas y medios de pago.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.SaleResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("INVALID_SALE_ID", "ID de venta inválido")
	}
	sale, err := uc.repos.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.NewNotFound("SALE_NOT_FOUND", "Venta no encontrada")
	}
	items, err := uc.repos.Sales.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := uc.repos.Sales.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	sale.Payments = payments[id]
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// List ventas paginadas; los medios de pago se cargan en una sola consulta para toda la página.
func (uc *UseCase) List(ctx context.Context, in dto.SaleListRequest) (*dto.SaleListResponse, error) {
	page := in.ToPage()
	list, total, err := uc.repos.Sales.List(ctx, repository.SaleFilter{
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Status:        in.Status,
		CustomerID:    in.CustomerID,
		UserID:        in.UserID,
		PaymentMethod: in.PaymentMethod,
		Search:        strings.TrimSpace(in.Search),
		Page:          page,
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	payments, err := uc.repos.Sales.ListPayments(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		s.Payments = payments[s.ID]
		out = append(out, ToSaleResponse(s))
	}
	return &dto.SaleListResponse{Sales: out, Pagination: dto.NewPagination(page, total)}, nil
}

// Stats totales del período y desglose por medio de pago.
func (uc *UseCase) Stats(ctx context.Context, period string) (*dto.SalesStatsResponse, error) {
	if period == "" {
		period = order.PeriodToday
	}
	from, to, err := order.PeriodRange(period, uc.now())
	if err != nil {
		return nil, err
	}
	sum, err := uc.repos.Sales.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	methods, err := uc.repos.Sales.PaymentTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.SalesStatsResponse{
		Period:          period,
		From:            from,
		To:              to,
		TotalSales:      sum.TotalSales,
		CompletedSales:  sum.CompletedSales,
		CancelledSales:  sum.CancelledSales,
		Revenue:         sum.Revenue,
		AverageTicket:   sum.AverageTicket,
		ItemsSold:       sum.ItemsSold,
		ByPaymentMethod: order.MethodTotalResponses(methods),
	}, nil
}

// DailyReport cierre del día: totales, medios de pago, ventas por hora y productos más vendidos.
func (uc *UseCase) DailyReport(ctx context.Context, date string) (*dto.DailyReportResponse, error) {
	now := uc.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date != "" {
		d, err := time.ParseInLocation("2006-01-02", date, now.Location())
		if err != nil {
			return nil, domain.NewValidation("INVALID_DATE", "Fecha inválida. Use el formato YYYY-MM-DD")
		}
		day = d
	}
	from, to := day, day.AddDate(0, 0, 1)

	sum, err := uc.repos.Sales.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}
	methods, err := uc.repos.Sales.PaymentTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	hourly, err := uc.repos.Sales.HourlyTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	top, err := uc.repos.Sales.TopProducts(ctx, from, to, dailyTopProducts)
	if err != nil {
		return nil, err
	}

	resp := &dto.DailyReportResponse{
		Date:            day.Format("2006-01-02"),
		TotalSales:      sum.TotalSales,
		CompletedSales:  sum.CompletedSales,
		CancelledSales:  sum.CancelledSales,
		Revenue:         sum.Revenue,
		AverageTicket:   sum.AverageTicket,
		ByPaymentMethod: order.MethodTotalResponses(methods),
		Hourly:          make([]dto.HourlyTotalResponse, 0, len(hourly)),
		TopProducts:     make([]dto.ProductSalesResponse, 0, len(top)),
	}
	for _, h := range hourly {
		resp.Hourly = append(resp.Hourly, dto.HourlyTotalResponse{Hour: h.Hour, Count: h.Count, Revenue: h.Revenue})
	}
	for _, p := range top {
		resp.TopProducts = append(resp.TopProducts, dto.ProductSalesResponse{
			ProductID: p.ProductID, Name: p.Name, UnitType: p.UnitType, Quantity: p.Quantity, Revenue: p.Revenue,
		})
	}
	return resp, nil
}

// Ticket comprobante PDF de la venta.
func (uc *UseCase) Ticket(ctx context.Context, id string) ([]byte, error) {
	sale, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.tickets.RenderSaleTicket(ctx, sale)
}

// ToSaleResponse mapea entidad -> DTO reconstruyendo la presentación de los medios de pago.
func ToSaleResponse(s *entity.Sale) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:                      s.ID,
		CustomerID:              s.CustomerID,
		CustomerName:            s.CustomerName,
		UserID:                  s.UserID,
		UserName:                s.UserName,
		CashSessionID:           s.CashSessionID,
		Total:                   s.Total,
		PaymentMethod:           s.PaymentMethod,
		PaymentMethodDisplay:    order.PaymentDisplay(s.PaymentMethod, s.Payments),
		PaymentMethodsFormatted: order.TenderResponses(s.Payments),
		Change:                  s.Change(),
		Status:                  s.Status,
		Notes:                   s.Notes,
		CancelReason:            s.CancelReason,
		ItemsCount:              s.ItemsCount,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
		CancelledAt:             s.CancelledAt,
	}
	if s.Items != nil {
		resp.Items = order.LineItemResponses(s.Items)
	}
	return resp
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
