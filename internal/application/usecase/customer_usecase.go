package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// CustomerUseCase clientes y su cuenta corriente.
type CustomerUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	now      func() time.Time
}

func NewCustomerUseCase(txRunner repository.TxRunner, repos repository.Repositories) *CustomerUseCase {
	return &CustomerUseCase{txRunner: txRunner, repos: repos, now: time.Now}
}

func (uc *CustomerUseCase) find(ctx context.Context, id string) (*entity.Customer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("INVALID_CUSTOMER_ID", "ID de cliente inválido")
	}
	c, err := uc.repos.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NewNotFound("CUSTOMER_NOT_FOUND", "Cliente no encontrado")
	}
	return c, nil
}

func (uc *CustomerUseCase) List(ctx context.Context, in dto.CustomerListRequest) (*dto.CustomerListResponse, error) {
	page := in.ToPage()
	list, total, err := uc.repos.Customers.List(ctx, repository.CustomerFilter{
		Active:   parseActive(in.Active, nil),
		Search:   strings.TrimSpace(in.Search),
		WithDebt: in.WithDebt,
		Page:     page,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToCustomerResponse(c))
	}
	return &dto.CustomerListResponse{Customers: out, Pagination: dto.NewPagination(page, total)}, nil
}

func (uc *CustomerUseCase) Stats(ctx context.Context) (*dto.CustomerStatsResponse, error) {
	s, err := uc.repos.Customers.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerStatsResponse{
		TotalCustomers:  s.TotalCustomers,
		ActiveCustomers: s.ActiveCustomers,
		WithDebt:        s.WithDebt,
		TotalDebt:       s.TotalDebt,
	}, nil
}

func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

func (uc *CustomerUseCase) Balance(ctx context.Context, id string) (*dto.BalanceResponse, error) {
	c, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		CustomerID:      c.ID,
		Name:            c.Name,
		Balance:         c.Balance,
		CreditLimit:     c.CreditLimit,
		AvailableCredit: c.AvailableCredit(),
	}, nil
}

func (uc *CustomerUseCase) Transactions(ctx context.Context, id string, in dto.AccountTransactionListRequest) (*dto.AccountTransactionListResponse, error) {
	c, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	page := in.ToPage()
	list, total, err := uc.repos.Accounts.List(ctx, repository.AccountTransactionFilter{
		CustomerID: c.ID,
		Type:       in.Type,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Page:       page,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.AccountTransactionResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toAccountTransactionResponse(t))
	}
	return &dto.AccountTransactionListResponse{Transactions: out, Pagination: dto.NewPagination(page, total)}, nil
}

// normalize valida nombre, email único y límite de crédito.
func (uc *CustomerUseCase) normalize(ctx context.Context, excludeID string, in dto.CustomerRequest) (*entity.Customer, error) {
	c := &entity.Customer{
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          strings.TrimSpace(in.Phone),
		Address:        strings.TrimSpace(in.Address),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		CreditLimit:    decimal.Zero,
		Active:         true,
	}
	if c.Name == "" {
		return nil, domain.NewValidation("NAME_REQUIRED", "El nombre del cliente es requerido")
	}
	if in.CreditLimit != nil {
		if in.CreditLimit.IsNegative() {
			return nil, domain.NewValidation("INVALID_CREDIT_LIMIT", "El límite de crédito no puede ser negativo")
		}
		c.CreditLimit = *in.CreditLimit
	}
	if c.Email != "" {
		exists, err := uc.repos.Customers.ExistsEmail(ctx, c.Email, excludeID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.NewConflict("EMAIL_EXISTS", "Ya existe un cliente con este email")
		}
	}
	return c, nil
}

func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c, err := uc.normalize(ctx, "", in)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	c.ID = uuid.New().String()
	c.Balance = decimal.Zero
	c.CreatedAt, c.UpdatedAt = now, now
	if err := uc.repos.Customers.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewConflict("EMAIL_EXISTS", "Ya existe un cliente con este email")
		}
		return nil, err
	}
	resp := ToCustomerResponse(c)
	return &resp, nil
}

func (uc *CustomerUseCase) Update(ctx context.Context, id string, in dto.CustomerRequest) (*dto.CustomerResponse, error) {
	current, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := uc.normalize(ctx, current.ID, in)
	if err != nil {
		return nil, err
	}
	c.ID = current.ID
	c.Active = current.Active
	if in.Active != nil {
		c.Active = *in.Active
	}
	c.UpdatedAt = uc.now()
	if err := uc.repos.Customers.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewConflict("EMAIL_EXISTS", "Ya existe un cliente con este email")
		}
		return nil, err
	}
	return uc.GetByID(ctx, c.ID)
}

// Delete baja lógica; no se permite mientras el cliente tenga deuda.
func (uc *CustomerUseCase) Delete(ctx context.Context, id string) error {
	c, err := uc.find(ctx, id)
	if err != nil {
		return err
	}
	if c.Balance.IsPositive() {
		return domain.NewConflict("CUSTOMER_HAS_DEBT", "No se puede eliminar un cliente con saldo pendiente: "+c.Balance.StringFixed(2))
	}
	return uc.repos.Customers.Deactivate(ctx, c.ID)
}

// CreateTransaction registra un cargo o pago manual sobre la cuenta corriente.
func (uc *CustomerUseCase) CreateTransaction(ctx context.Context, userID string, in dto.AccountTransactionRequest) (*dto.AccountTransactionResponse, error) {
	if _, err := uuid.Parse(in.CustomerID); err != nil {
		return nil, domain.NewValidation("INVALID_CUSTOMER_ID", "ID de cliente inválido")
	}
	if in.Type != entity.AccountTxCargo && in.Type != entity.AccountTxPago {
		return nil, domain.NewValidation("INVALID_TRANSACTION_TYPE", "Tipo de transacción inválido. Debe ser: cargo o pago")
	}
	if in.Amount == nil || !in.Amount.IsPositive() {
		return nil, domain.NewValidation("INVALID_AMOUNT", "El monto debe ser mayor a 0")
	}
	if !entity.FitsPlaces(*in.Amount, entity.MoneyPlaces) {
		return nil, domain.NewValidation("INVALID_AMOUNT_PRECISION", "Los montos admiten como máximo 2 decimales")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, domain.NewValidation("DESCRIPTION_REQUIRED", "La descripción es requerida")
	}

	var saved *entity.AccountTransaction
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		tx, err := ApplyAccountTransaction(ctx, repos, AccountInput{
			CustomerID:  in.CustomerID,
			Type:        in.Type,
			Amount:      *in.Amount,
			Description: desc,
			UserID:      optional(userID),
		}, uc.now())
		saved = tx
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toAccountTransactionResponse(saved)
	return &resp, nil
}

// ToCustomerResponse mapea entidad -> DTO.
func ToCustomerResponse(c *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:              c.ID,
		Name:            c.Name,
		Email:           c.Email,
		Phone:           c.Phone,
		Address:         c.Address,
		DocumentNumber:  c.DocumentNumber,
		CreditLimit:     c.CreditLimit,
		Balance:         c.Balance,
		AvailableCredit: c.AvailableCredit(),
		Active:          c.Active,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toAccountTransactionResponse(t *entity.AccountTransaction) dto.AccountTransactionResponse {
	return dto.AccountTransactionResponse{
		ID:              t.ID,
		CustomerID:      t.CustomerID,
		Type:            t.Type,
		Amount:          t.Amount,
		Description:     t.Description,
		SaleID:          t.SaleID,
		UserID:          t.UserID,
		UserName:        t.UserName,
		PreviousBalance: t.PreviousBalance,
		NewBalance:      t.NewBalance,
		CreatedAt:       t.CreatedAt,
	}
}
