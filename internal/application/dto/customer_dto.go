package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerRequest struct {
	Name           string           `json:"name" validate:"max=160"`
	Email          string           `json:"email" validate:"omitempty,email,max=160"`
	Phone          string           `json:"phone" validate:"max=40"`
	Address        string           `json:"address" validate:"max=500"`
	DocumentNumber string           `json:"document_number" validate:"max=40"`
	CreditLimit    *decimal.Decimal `json:"credit_limit,omitempty"`
	Active         *bool            `json:"active,omitempty"` // sólo en actualización
}

type CustomerResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email,omitempty"`
	Phone           string           `json:"phone,omitempty"`
	Address         string           `json:"address,omitempty"`
	DocumentNumber  string           `json:"document_number,omitempty"`
	CreditLimit     decimal.Decimal  `json:"credit_limit"`
	Balance         decimal.Decimal  `json:"balance"`
	AvailableCredit *decimal.Decimal `json:"available_credit"` // null = sin límite
	Active          bool             `json:"active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type CustomerListRequest struct {
	PageRequest
	Active   string `query:"active"`
	Search   string `query:"search"`
	WithDebt bool   `query:"with_debt"`
}

type CustomerListResponse struct {
	Customers  []CustomerResponse `json:"customers"`
	Pagination Pagination         `json:"pagination"`
}

type CustomerStatsResponse struct {
	TotalCustomers  int             `json:"total_customers"`
	ActiveCustomers int             `json:"active_customers"`
	WithDebt        int             `json:"with_debt"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
}

type BalanceResponse struct {
	CustomerID      string           `json:"customer_id"`
	Name            string           `json:"name"`
	Balance         decimal.Decimal  `json:"balance"`
	CreditLimit     decimal.Decimal  `json:"credit_limit"`
	AvailableCredit *decimal.Decimal `json:"available_credit"`
}

// AccountTransactionRequest POST /api/customers/transactions.
type AccountTransactionRequest struct {
	CustomerID  string           `json:"customer_id"`
	Type        string           `json:"type"`
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description" validate:"max=500"`
}

type AccountTransactionResponse struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	SaleID          *string         `json:"sale_id,omitempty"`
	UserID          *string         `json:"user_id,omitempty"`
	UserName        string          `json:"user_name,omitempty"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	CreatedAt       time.Time       `json:"created_at"`
}

type AccountTransactionListRequest struct {
	PageRequest
	Type      string `query:"type"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

type AccountTransactionListResponse struct {
	Transactions []AccountTransactionResponse `json:"transactions"`
	Pagination   Pagination                   `json:"pagination"`
}
