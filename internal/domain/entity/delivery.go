package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un reparto.
const (
	DeliveryStatusPending    = "pending"
	DeliveryStatusInProgress = "in_progress"
	DeliveryStatusCompleted  = "completed"
	DeliveryStatusCancelled  = "cancelled"
)

// IsValidDeliveryStatus indica si s es un estado de reparto conocido.
func IsValidDeliveryStatus(s string) bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusInProgress, DeliveryStatusCompleted, DeliveryStatusCancelled:
		return true
	}
	return false
}

// IsTerminalDeliveryStatus completed y cancelled no admiten más transiciones.
func IsTerminalDeliveryStatus(s string) bool {
	return s == DeliveryStatusCompleted || s == DeliveryStatusCancelled
}

// CanTransitionDelivery pending -> in_progress -> completed; cancelled desde cualquier estado no terminal.
func CanTransitionDelivery(from, to string) bool {
	if IsTerminalDeliveryStatus(from) {
		return false
	}
	switch to {
	case DeliveryStatusCancelled:
		return true
	case DeliveryStatusInProgress:
		return from == DeliveryStatusPending
	case DeliveryStatusCompleted:
		return from == DeliveryStatusInProgress
	}
	return false
}

// Delivery cabecera de un reparto a domicilio.
type Delivery struct {
	ID            string
	CustomerID    string
	DriverID      string
	Total         decimal.Decimal
	PaymentMethod string
	Status        string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Campos de lectura.
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
	DriverName      string
	DriverEmail     string
	DriverPhone     string
	ItemsCount      int
	TotalItems      decimal.Decimal

	Items     []LineItem
	Payments  []Tender
	Locations []DeliveryLocation
	History   []DeliveryStatusChange
}

// DeliveryLocation posición GPS informada por el repartidor.
type DeliveryLocation struct {
	ID         string
	DeliveryID string
	Latitude   float64
	Longitude  float64
	CreatedAt  time.Time
}

// DeliveryStatusChange fila de auditoría de un cambio de estado.
type DeliveryStatusChange struct {
	ID             string
	DeliveryID     string
	PreviousStatus string
	NewStatus      string
	UserID         *string
	Notes          string
	CreatedAt      time.Time

	UserName string
}
