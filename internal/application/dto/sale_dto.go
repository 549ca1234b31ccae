package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemRequest línea de venta o entrega.
type LineItemRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// TenderRequest un medio de pago dentro de un pago dividido.
type TenderRequest struct {
	Method string           `json:"method"`
	Amount *decimal.Decimal `json:"amount"`
}

// CreateSaleRequest con PaymentMethods no vacío la venta queda como "multiple".
type CreateSaleRequest struct {
	Items          []LineItemRequest `json:"items"`
	CustomerID     *string           `json:"customer_id,omitempty"`
	Total          *decimal.Decimal  `json:"total"`
	PaymentMethod  string            `json:"payment_method"`
	PaymentMethods []TenderRequest   `json:"payment_methods,omitempty"`
	Notes          string            `json:"notes" validate:"max=1000"`
}

type LineItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductBarcode  string          `json:"product_barcode,omitempty"`
	ProductImage    string          `json:"product_image,omitempty"`
	ProductUnitType string          `json:"product_unit_type"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type TenderResponse struct {
	Method          string          `json:"method"`
	Label           string          `json:"label"`
	Amount          decimal.Decimal `json:"amount"`
	AmountFormatted string          `json:"amount_formatted"`
}

type SaleResponse struct {
	ID                      string             `json:"id"`
	CustomerID              *string            `json:"customer_id"`
	CustomerName            string             `json:"customer_name,omitempty"`
	UserID                  string             `json:"user_id"`
	UserName                string             `json:"user_name,omitempty"`
	CashSessionID           *string            `json:"cash_session_id,omitempty"`
	Total                   decimal.Decimal    `json:"total"`
	PaymentMethod           string             `json:"payment_method"`
	PaymentMethodDisplay    string             `json:"payment_method_display"`
	PaymentMethodsFormatted []TenderResponse   `json:"payment_methods_formatted"`
	Change                  decimal.Decimal    `json:"change"`
	Status                  string             `json:"status"`
	Notes                   string             `json:"notes,omitempty"`
	CancelReason            string             `json:"cancel_reason,omitempty"`
	ItemsCount              int                `json:"items_count"`
	Items                   []LineItemResponse `json:"items,omitempty"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
	CancelledAt             *time.Time         `json:"cancelled_at,omitempty"`
}

type SaleListRequest struct {
	PageRequest
	StartDate     string `query:"start_date"`
	EndDate       string `query:"end_date"`
	Status        string `query:"status"`
	CustomerID    string `query:"customer_id"`
	UserID        string `query:"user_id"`
	PaymentMethod string `query:"payment_method"`
	Search        string `query:"search"`
}

type SaleListResponse struct {
	Sales      []SaleResponse `json:"sales"`
	Pagination Pagination     `json:"pagination"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type MethodTotalResponse struct {
	Method          string          `json:"method"`
	Label           string          `json:"label"`
	Count           int             `json:"count"`
	Amount          decimal.Decimal `json:"amount"`
	AmountFormatted string          `json:"amount_formatted"`
}

type SalesStatsResponse struct {
	Period          string                `json:"period"`
	From            time.Time             `json:"from"`
	To              time.Time             `json:"to"`
	TotalSales      int                   `json:"total_sales"`
	CompletedSales  int                   `json:"completed_sales"`
	CancelledSales  int                   `json:"cancelled_sales"`
	Revenue         decimal.Decimal       `json:"revenue"`
	AverageTicket   decimal.Decimal       `json:"average_ticket"`
	ItemsSold       decimal.Decimal       `json:"items_sold"`
	ByPaymentMethod []MethodTotalResponse `json:"by_payment_method"`
}

type HourlyTotalResponse struct {
	Hour    int             `json:"hour"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductSalesResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitType  string          `json:"unit_type"`
	Quantity  decimal.Decimal `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type DailyReportResponse struct {
	Date            string                 `json:"date"`
	TotalSales      int                    `json:"total_sales"`
	CompletedSales  int                    `json:"completed_sales"`
	CancelledSales  int                    `json:"cancelled_sales"`
	Revenue         decimal.Decimal        `json:"revenue"`
	AverageTicket   decimal.Decimal        `json:"average_ticket"`
	ByPaymentMethod []MethodTotalResponse  `json:"by_payment_method"`
	Hourly          []HourlyTotalResponse  `json:"hourly"`
	TopProducts     []ProductSalesResponse `json:"top_products"`
}
