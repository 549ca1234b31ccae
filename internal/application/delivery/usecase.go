// Package delivery repartos a domicilio: alta, transiciones de estado con seguimiento GPS y consultas.
package delivery

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/order"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// UseCase entregas. No modifican stock.
type UseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	log      *logger.Logger
	now      func() time.Time
}

func NewUseCase(txRunner repository.TxRunner, repos repository.Repositories, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, repos: repos, log: log.Component("delivery"), now: time.Now}
}

// Create registra la entrega en estado pending junto con sus líneas y medios de pago.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateDeliveryRequest) (*dto.DeliveryResponse, error) {
	lines, err := order.ParseLines(in.Items)
	if err != nil {
		return nil, err
	}
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, domain.NewValidation("CUSTOMER_REQUIRED", "El cliente es requerido")
	}
	driverID := strings.TrimSpace(in.DriverID)
	if driverID == "" {
		return nil, domain.NewValidation("DRIVER_REQUIRED", "El repartidor es requerido")
	}
	total, err := order.ParseTotal(in.Total)
	if err != nil {
		return nil, err
	}
	method, tenders, err := order.ParseTenders(total, in.PaymentMethod, in.PaymentMethods)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	d := &entity.Delivery{
		ID:            uuid.New().String(),
		CustomerID:    customerID,
		DriverID:      driverID,
		Total:         total,
		PaymentMethod: method,
		Status:        entity.DeliveryStatusPending,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if _, err := uuid.Parse(customerID); err != nil {
			return domain.NewValidation("CUSTOMER_NOT_FOUND", "Cliente no encontrado o inactivo")
		}
		c, err := repos.Customers.GetByID(ctx, customerID)
		if err != nil {
			return err
		}
		if c == nil || !c.Active {
			return domain.NewValidation("CUSTOMER_NOT_FOUND", "Cliente no encontrado o inactivo")
		}
		if _, err := uuid.Parse(driverID); err != nil {
			return domain.NewValidation("DRIVER_NOT_FOUND", "Repartidor no encontrado o inactivo")
		}
		driver, err := repos.Users.GetByID(ctx, driverID)
		if err != nil {
			return err
		}
		if driver == nil || !driver.Active {
			return domain.NewValidation("DRIVER_NOT_FOUND", "Repartidor no encontrado o inactivo")
		}

		if err := repos.Deliveries.Create(ctx, d); err != nil {
			return err
		}
		for _, item := range order.LineItems(d.ID, lines, now) {
			if err := repos.Deliveries.CreateItem(ctx, &item); err != nil {
				return err
			}
		}
		for i := range tenders {
			if err := repos.Deliveries.CreatePayment(ctx, d.ID, &tenders[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("delivery_id", d.ID).Str("driver_id", driverID).Str("total", total.String()).Msg("entrega creada")
	return uc.Get(ctx, d.ID)
}

// UpdateStatus aplica una transición válida. Estado, notas, ubicación opcional e historial
// se escriben en la misma transacción.
func (uc *UseCase) UpdateStatus(ctx context.Context, userID, id string, in dto.UpdateDeliveryStatusRequest) (*dto.DeliveryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("INVALID_DELIVERY_ID", "ID de entrega inválido")
	}
	if !entity.IsValidDeliveryStatus(in.Status) {
		return nil, domain.NewValidation("INVALID_STATUS", "Estado inválido. Debe ser: pending, in_progress, completed o cancelled")
	}
	notes := strings.TrimSpace(in.Notes)

	var previous string
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		d, err := repos.Deliveries.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NewNotFound("DELIVERY_NOT_FOUND", "Entrega no encontrada")
		}
		if !entity.CanTransitionDelivery(d.Status, in.Status) {
			return domain.NewValidation("INVALID_STATUS_TRANSITION",
				"No se puede pasar de "+d.Status+" a "+in.Status)
		}
		previous = d.Status

		now := uc.now()
		if err := repos.Deliveries.UpdateStatus(ctx, id, in.Status, notes, now); err != nil {
			return err
		}
		if lat, lon, ok := validLocation(in.Latitude, in.Longitude); ok {
			if err := repos.Deliveries.CreateLocation(ctx, &entity.DeliveryLocation{
				ID:         uuid.New().String(),
				DeliveryID: id,
				Latitude:   lat,
				Longitude:  lon,
				CreatedAt:  now,
			}); err != nil {
				return err
			}
		}
		return repos.Deliveries.CreateHistory(ctx, &entity.DeliveryStatusChange{
			ID:             uuid.New().String(),
			DeliveryID:     id,
			PreviousStatus: d.Status,
			NewStatus:      in.Status,
			UserID:         optional(userID),
			Notes:          notes,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("delivery_id", id).Str("from", previous).Str("to", in.Status).Str("user_id", userID).Msg("estado de entrega actualizado")
	return uc.Get(ctx, id)
}

// validLocation exige ambas coordenadas, finitas y dentro de rango.
func validLocation(lat, lon *float64) (float64, float64, bool) {
	if lat == nil || lon == nil {
		return 0, 0, false
	}
	for _, v := range []float64{*lat, *lon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, false
		}
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return 0, 0, false
	}
	return *lat, *lon, true
}

// Get entrega con líneas, ubicaciones (más recientes primero) e historial de estados.
func (uc *UseCase) Get(ctx context.Context, id string) (*dto.DeliveryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("INVALID_DELIVERY_ID", "ID de entrega inválido")
	}
	d, err := uc.repos.Deliveries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.NewNotFound("DELIVERY_NOT_FOUND", "Entrega no encontrada")
	}
	if d.Items, err = uc.repos.Deliveries.ListItems(ctx, id); err != nil {
		return nil, err
	}
	payments, err := uc.repos.Deliveries.ListPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Payments = payments[id]
	if d.Locations, err = uc.repos.Deliveries.ListLocations(ctx, id); err != nil {
		return nil, err
	}
	if d.History, err = uc.repos.Deliveries.ListHistory(ctx, id); err != nil {
		return nil, err
	}
	resp := ToDeliveryResponse(d)
	return &resp, nil
}

// List listado paginado con filtros permitidos.
func (uc *UseCase) List(ctx context.Context, in dto.DeliveryListRequest) (*dto.DeliveryListResponse, error) {
	page := in.ToPage()
	list, total, err := uc.repos.Deliveries.List(ctx, repository.DeliveryFilter{
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Status:     in.Status,
		CustomerID: in.CustomerID,
		DriverID:   in.DriverID,
		Search:     strings.TrimSpace(in.Search),
		Page:       page,
	})
	if err != nil {
		return nil, err
	}
	out, err := uc.withPayments(ctx, list)
	if err != nil {
		return nil, err
	}
	return &dto.DeliveryListResponse{Deliveries: out, Pagination: dto.NewPagination(page, total)}, nil
}

// ByDriver entregas asignadas a un repartidor. Sin estado se listan las pendientes;
// un estado fuera de pending/in_progress/completed no filtra.
func (uc *UseCase) ByDriver(ctx context.Context, driverID, status string) ([]dto.DeliveryResponse, error) {
	if _, err := uuid.Parse(driverID); err != nil {
		return nil, domain.NewValidation("INVALID_DRIVER_ID", "ID de repartidor inválido")
	}
	switch status {
	case "":
		status = entity.DeliveryStatusPending
	case entity.DeliveryStatusPending, entity.DeliveryStatusInProgress, entity.DeliveryStatusCompleted:
	default:
		status = ""
	}
	list, err := uc.repos.Deliveries.ListByDriver(ctx, driverID, status)
	if err != nil {
		return nil, err
	}
	return uc.withPayments(ctx, list)
}

func (uc *UseCase) withPayments(ctx context.Context, list []*entity.Delivery) ([]dto.DeliveryResponse, error) {
	ids := make([]string, 0, len(list))
	for _, d := range list {
		ids = append(ids, d.ID)
	}
	payments, err := uc.repos.Deliveries.ListPayments(ctx, ids...)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DeliveryResponse, 0, len(list))
	for _, d := range list {
		d.Payments = payments[d.ID]
		out = append(out, ToDeliveryResponse(d))
	}
	return out, nil
}

// Stats conteos por estado desde el inicio del período.
func (uc *UseCase) Stats(ctx context.Context, period string) (*dto.DeliveryStatsResponse, error) {
	if period == "" {
		period = order.PeriodToday
	}
	from, _, err := order.PeriodRange(period, uc.now())
	if err != nil {
		return nil, err
	}
	s, err := uc.repos.Deliveries.Stats(ctx, from)
	if err != nil {
		return nil, err
	}
	return &dto.DeliveryStatsResponse{
		Period:              period,
		TotalDeliveries:     s.TotalDeliveries,
		Pending:             s.Pending,
		InProgress:          s.InProgress,
		Completed:           s.Completed,
		Cancelled:           s.Cancelled,
		TotalRevenue:        s.TotalRevenue,
		AverageDelivery:     s.AverageDelivery,
		TotalItemsDelivered: s.TotalItemsDelivered,
	}, nil
}

// ToDeliveryResponse mapea entidad -> DTO.
func ToDeliveryResponse(d *entity.Delivery) dto.DeliveryResponse {
	resp := dto.DeliveryResponse{
		ID:                      d.ID,
		CustomerID:              d.CustomerID,
		CustomerName:            d.CustomerName,
		CustomerPhone:           d.CustomerPhone,
		CustomerEmail:           d.CustomerEmail,
		CustomerAddress:         d.CustomerAddress,
		DriverID:                d.DriverID,
		DriverName:              d.DriverName,
		DriverEmail:             d.DriverEmail,
		DriverPhone:             d.DriverPhone,
		Total:                   d.Total,
		PaymentMethod:           d.PaymentMethod,
		PaymentMethodDisplay:    order.PaymentDisplay(d.PaymentMethod, d.Payments),
		PaymentMethodsFormatted: order.TenderResponses(d.Payments),
		Status:                  d.Status,
		Notes:                   d.Notes,
		ItemsCount:              d.ItemsCount,
		TotalItems:              d.TotalItems,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}
	if d.Items != nil {
		resp.Items = order.LineItemResponses(d.Items)
	}
	for _, l := range d.Locations {
		resp.Locations = append(resp.Locations, dto.DeliveryLocationResponse{
			ID: l.ID, Latitude: l.Latitude, Longitude: l.Longitude, CreatedAt: l.CreatedAt,
		})
	}
	for _, h := range d.History {
		resp.History = append(resp.History, dto.DeliveryStatusChangeResponse{
			ID:             h.ID,
			PreviousStatus: h.PreviousStatus,
			NewStatus:      h.NewStatus,
			UserID:         h.UserID,
			UserName:       h.UserName,
			Notes:          h.Notes,
			CreatedAt:      h.CreatedAt,
		})
	}
	return resp
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
