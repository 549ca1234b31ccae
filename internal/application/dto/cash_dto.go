package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenCashRequest sin OpeningAmount se usa el monto inicial configurado.
type OpenCashRequest struct {
	OpeningAmount *decimal.Decimal `json:"opening_amount,omitempty"`
	Notes         string           `json:"notes" validate:"max=1000"`
}

type CloseCashRequest struct {
	ClosingAmount *decimal.Decimal `json:"closing_amount"`
	Notes         string           `json:"notes" validate:"max=1000"`
}

type CashMovementRequest struct {
	Type        string           `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description" validate:"max=500"`
}

type CashSettingsRequest struct {
	DefaultOpeningAmount   *decimal.Decimal `json:"default_opening_amount" validate:"omitempty,gte=0"`
	WarningDeviationPct    *decimal.Decimal `json:"warning_deviation_pct" validate:"omitempty,gte=0,lte=100"`
	CriticalDeviationPct   *decimal.Decimal `json:"critical_deviation_pct" validate:"omitempty,gte=0,lte=100"`
	RequireNotesOnCritical *bool            `json:"require_notes_on_critical"`
}

type CashSessionResponse struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	UserName       string           `json:"user_name,omitempty"`
	OpeningAmount  decimal.Decimal  `json:"opening_amount"`
	OpenedAt       time.Time        `json:"opened_at"`
	ClosingAmount  *decimal.Decimal `json:"closing_amount"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount"`
	Difference     *decimal.Decimal `json:"difference"`
	DeviationPct   *decimal.Decimal `json:"deviation_pct"`
	DeviationLevel string           `json:"deviation_level,omitempty"`
	Status         string           `json:"status"`
	Notes          string           `json:"notes,omitempty"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	ClosedBy       *string          `json:"closed_by,omitempty"`
	ClosedByName   string           `json:"closed_by_name,omitempty"`
}

type CashMovementResponse struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	UserID      string          `json:"user_id"`
	UserName    string          `json:"user_name,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CashTotals totales corrientes de una sesión.
type CashTotals struct {
	CashSales     decimal.Decimal       `json:"cash_sales"`
	Ingresos      decimal.Decimal       `json:"ingresos"`
	Egresos       decimal.Decimal       `json:"egresos"`
	ExpectedCash  decimal.Decimal       `json:"expected_cash"`
	SalesByMethod []MethodTotalResponse `json:"sales_by_method"`
}

// CashStatusResponse GET /api/cash/status. Session nil = caja cerrada.
type CashStatusResponse struct {
	IsOpen  bool                 `json:"is_open"`
	Session *CashSessionResponse `json:"session"`
	Totals  *CashTotals          `json:"totals,omitempty"`
}

type CashSessionDetailResponse struct {
	Session   CashSessionResponse    `json:"session"`
	Totals    CashTotals             `json:"totals"`
	Movements []CashMovementResponse `json:"movements"`
}

type CashHistoryRequest struct {
	PageRequest
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	UserID    string `query:"user_id"`
	Status    string `query:"status"`
}

type CashHistoryResponse struct {
	Sessions   []CashSessionResponse `json:"sessions"`
	Pagination Pagination            `json:"pagination"`
}

type CashSettingsResponse struct {
	DefaultOpeningAmount   decimal.Decimal `json:"default_opening_amount"`
	WarningDeviationPct    decimal.Decimal `json:"warning_deviation_pct"`
	CriticalDeviationPct   decimal.Decimal `json:"critical_deviation_pct"`
	RequireNotesOnCritical bool            `json:"require_notes_on_critical"`
	UpdatedBy              *string         `json:"updated_by,omitempty"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
