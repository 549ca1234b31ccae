package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateDeliveryRequest las entregas no descuentan stock.
type CreateDeliveryRequest struct {
	Items          []LineItemRequest `json:"items"`
	CustomerID     string            `json:"customer_id"`
	DriverID       string            `json:"driver_id"`
	Total          *decimal.Decimal  `json:"total"`
	PaymentMethod  string            `json:"payment_method"`
	PaymentMethods []TenderRequest   `json:"payment_methods,omitempty"`
	Notes          string            `json:"notes" validate:"max=1000"`
}

// UpdateDeliveryStatusRequest la ubicación sólo se registra si llegan latitud y longitud válidas.
type UpdateDeliveryStatusRequest struct {
	Status    string   `json:"status"`
	Notes     string   `json:"notes" validate:"max=1000"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type DeliveryLocationResponse struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

type DeliveryStatusChangeResponse struct {
	ID             string    `json:"id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	UserID         *string   `json:"user_id,omitempty"`
	UserName       string    `json:"user_name,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type DeliveryResponse struct {
	ID                      string                         `json:"id"`
	CustomerID              string                         `json:"customer_id"`
	CustomerName            string                         `json:"customer_name"`
	CustomerPhone           string                         `json:"customer_phone,omitempty"`
	CustomerEmail           string                         `json:"customer_email,omitempty"`
	CustomerAddress         string                         `json:"customer_address,omitempty"`
	DriverID                string                         `json:"driver_id"`
	DriverName              string                         `json:"driver_name"`
	DriverEmail             string                         `json:"driver_email,omitempty"`
	DriverPhone             string                         `json:"driver_phone,omitempty"`
	Total                   decimal.Decimal                `json:"total"`
	PaymentMethod           string                         `json:"payment_method"`
	PaymentMethodDisplay    string                         `json:"payment_method_display"`
	PaymentMethodsFormatted []TenderResponse               `json:"payment_methods_formatted"`
	Status                  string                         `json:"status"`
	Notes                   string                         `json:"notes,omitempty"`
	ItemsCount              int                            `json:"items_count"`
	TotalItems              decimal.Decimal                `json:"total_items"`
	Items                   []LineItemResponse             `json:"items,omitempty"`
	Locations               []DeliveryLocationResponse     `json:"locations,omitempty"`
	History                 []DeliveryStatusChangeResponse `json:"status_history,omitempty"`
	CreatedAt               time.Time                      `json:"created_at"`
	UpdatedAt               time.Time                      `json:"updated_at"`
}

type DeliveryListRequest struct {
	PageRequest
	StartDate  string `query:"start_date"`
	EndDate    string `query:"end_date"`
	Status     string `query:"status"`
	CustomerID string `query:"customer_id"`
	DriverID   string `query:"driver_id"`
	Search     string `query:"search"`
}

type DeliveryListResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
	Pagination Pagination         `json:"pagination"`
}

type DeliveryStatsResponse struct {
	Period              string          `json:"period"`
	TotalDeliveries     int             `json:"total_deliveries"`
	Pending             int             `json:"pending"`
	InProgress          int             `json:"in_progress"`
	Completed           int             `json:"completed"`
	Cancelled           int             `json:"cancelled"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	AverageDelivery     decimal.Decimal `json:"average_delivery"`
	TotalItemsDelivered decimal.Decimal `json:"total_items_delivered"`
}
