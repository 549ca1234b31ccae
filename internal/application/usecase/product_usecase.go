package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// Límites del ranking de más vendidos.
const (
	defaultTopSelling = 10
	minTopSelling     = 5
	maxTopSelling     = 50
)

// ProductUseCase casos de uso CRUD para productos. Cost y Stock se manejan vía movimientos.
type ProductUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	ledger   *inventory.UseCase
	now      func() time.Time
}

// NewProductUseCase construye el caso de uso. El stock inicial se registra con el libro de movimientos.
func NewProductUseCase(txRunner repository.TxRunner, repos repository.Repositories, ledger *inventory.UseCase) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repos: repos, ledger: ledger, now: time.Now}
}

// productFields campos comunes a alta y modificación, ya validados.
type productFields struct {
	name        string
	description string
	price       decimal.Decimal
	priceLevel2 *decimal.Decimal
	priceLevel3 *decimal.Decimal
	minStock    decimal.Decimal
	unitType    string
	categoryID  *string
	barcode     string
	image       string
}

func (uc *ProductUseCase) validateFields(ctx context.Context, excludeID, name, description string, price, p2, p3, minStock *decimal.Decimal,
	unitType string, categoryID *string, barcode, image string) (*productFields, error) {
	f := &productFields{
		name:        strings.TrimSpace(name),
		description: strings.TrimSpace(description),
		priceLevel2: p2,
		priceLevel3: p3,
		unitType:    unitType,
		barcode:     strings.TrimSpace(barcode),
		image:       strings.TrimSpace(image),
	}
	if f.name == "" {
		return nil, domain.NewValidation("NAME_REQUIRED", "El nombre del producto es requerido")
	}
	if price == nil || !price.IsPositive() {
		return nil, domain.NewValidation("INVALID_PRICE", "El precio debe ser un número válido mayor a 0")
	}
	f.price = *price
	for _, lvl := range []*decimal.Decimal{p2, p3} {
		if lvl != nil && !lvl.IsPositive() {
			return nil, domain.NewValidation("INVALID_PRICE", "Los precios por nivel deben ser mayores a 0")
		}
	}
	for _, p := range []*decimal.Decimal{price, p2, p3} {
		if p != nil && !entity.FitsPlaces(*p, entity.MoneyPlaces) {
			return nil, domain.NewValidation("INVALID_AMOUNT_PRECISION", "Los montos admiten como máximo 2 decimales")
		}
	}
	if f.unitType == "" {
		f.unitType = entity.UnitTypeUnits
	}
	if !entity.IsValidUnitType(f.unitType) {
		return nil, domain.NewValidation("INVALID_UNIT_TYPE", "Tipo de unidad inválido. Debe ser: unidades o kg")
	}

	f.minStock = entity.DefaultMinStock(f.unitType)
	if minStock != nil {
		if minStock.IsNegative() {
			return nil, domain.NewValidation("INVALID_MIN_STOCK", "El stock mínimo no puede ser negativo")
		}
		if f.unitType == entity.UnitTypeUnits && !minStock.IsInteger() {
			return nil, domain.NewValidation("INVALID_UNIT_MIN_STOCK", "Para productos por unidades, el stock mínimo debe ser un número entero")
		}
		f.minStock = *minStock
	}

	if f.barcode != "" {
		exists, err := uc.repos.Products.ExistsBarcode(ctx, f.barcode, excludeID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.NewConflict("BARCODE_EXISTS", "Ya existe un producto con este código de barras")
		}
	}

	if categoryID != nil && strings.TrimSpace(*categoryID) != "" {
		id := strings.TrimSpace(*categoryID)
		if _, err := uuid.Parse(id); err != nil {
			return nil, domain.NewValidation("CATEGORY_NOT_FOUND", "La categoría especificada no existe o no está activa")
		}
		cat, err := uc.repos.Categories.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if cat == nil || !cat.Active {
			return nil, domain.NewValidation("CATEGORY_NOT_FOUND", "La categoría especificada no existe o no está activa")
		}
		f.categoryID = &id
	}
	return f, nil
}

// Create crea el producto con stock 0 y, si se informó stock inicial, registra la entrada "Stock inicial"
// en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, userID string, in dto.CreateProductRequest) (*dto.CreateProductResponse, error) {
	f, err := uc.validateFields(ctx, "", in.Name, in.Description, in.Price, in.PriceLevel2, in.PriceLevel3, in.MinStock,
		in.UnitType, in.CategoryID, in.Barcode, in.Image)
	if err != nil {
		return nil, err
	}

	stock := decimal.Zero
	if in.Stock != nil {
		if in.Stock.IsNegative() {
			return nil, domain.NewValidation("INVALID_STOCK", "El stock no puede ser negativo")
		}
		if f.unitType == entity.UnitTypeUnits && !in.Stock.IsInteger() {
			return nil, domain.NewValidation("INVALID_UNIT_STOCK", "Para productos por unidades, el stock debe ser un número entero")
		}
		stock = *in.Stock
	}
	cost := decimal.Zero
	if in.Cost != nil {
		if in.Cost.IsNegative() {
			return nil, domain.NewValidation("INVALID_COST", "El costo no puede ser negativo")
		}
		cost = *in.Cost
	}

	now := uc.now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        f.name,
		Description: f.description,
		Price:       f.price,
		PriceLevel2: f.priceLevel2,
		PriceLevel3: f.priceLevel3,
		Cost:        cost,
		Stock:       decimal.Zero,
		MinStock:    f.minStock,
		UnitType:    f.unitType,
		CategoryID:  f.categoryID,
		Barcode:     f.barcode,
		Image:       f.image,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var initial *entity.StockMovement
	err = uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.NewConflict("BARCODE_EXISTS", "Ya existe un producto con este código de barras")
			}
			return err
		}
		if stock.IsPositive() {
			mov, err := uc.ledger.ApplyInTx(ctx, repos, inventory.MovementInput{
				ProductID: product.ID,
				Type:      entity.MovementTypeEntrada,
				Quantity:  stock,
				Reason:    "Stock inicial",
				UserID:    optional(userID),
			})
			if err != nil {
				return err
			}
			initial = mov
		}
		saved, err := repos.Products.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}
		if saved != nil {
			product = saved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.CreateProductResponse{Product: ToProductResponse(product)}
	if initial != nil {
		m := inventory.ToMovementResponse(initial)
		resp.InitialMovement = &m
	}
	return resp, nil
}

// GetByID obtiene un producto activo o inactivo por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

func (uc *ProductUseCase) find(ctx context.Context, id string) (*entity.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("INVALID_PRODUCT_ID", "ID de producto inválido")
	}
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("PRODUCT_NOT_FOUND", "Producto no encontrado")
	}
	return product, nil
}

// Update actualiza un producto. No permite modificar Cost ni Stock (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	unitType := in.UnitType
	if unitType == "" {
		unitType = product.UnitType
	}
	minStock := in.MinStock
	if minStock == nil {
		minStock = &product.MinStock
	}
	f, err := uc.validateFields(ctx, product.ID, in.Name, in.Description, in.Price, in.PriceLevel2, in.PriceLevel3, minStock,
		unitType, in.CategoryID, in.Barcode, in.Image)
	if err != nil {
		return nil, err
	}
	if f.unitType == entity.UnitTypeUnits && !product.Stock.IsInteger() {
		return nil, domain.NewValidation("INVALID_UNIT_STOCK", "El stock actual es fraccionario; ajústelo a un entero antes de cambiar a unidades")
	}

	product.Name = f.name
	product.Description = f.description
	product.Price = f.price
	product.PriceLevel2 = f.priceLevel2
	product.PriceLevel3 = f.priceLevel3
	product.MinStock = f.minStock
	product.UnitType = f.unitType
	product.CategoryID = f.categoryID
	product.Barcode = f.barcode
	product.Image = f.image
	product.UpdatedAt = uc.now()
	if err := uc.repos.Products.Update(ctx, product); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.NewConflict("BARCODE_EXISTS", "Ya existe otro producto con este código de barras")
		}
		return nil, err
	}
	return uc.GetByID(ctx, product.ID)
}

// Delete baja lógica. Devuelve el mensaje a mostrar según tenga o no ventas asociadas.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) (string, error) {
	product, err := uc.find(ctx, id)
	if err != nil {
		return "", err
	}
	sales, err := uc.repos.Products.CountSaleLines(ctx, product.ID)
	if err != nil {
		return "", err
	}
	if err := uc.repos.Products.Deactivate(ctx, product.ID); err != nil {
		return "", err
	}
	if sales > 0 {
		return "Producto desactivado correctamente (tiene ventas asociadas)", nil
	}
	return "Producto eliminado correctamente", nil
}

// List lista productos con filtros y paginación. Los filtros numéricos mal formados se ignoran.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	page := in.ToPage()
	filter := repository.ProductFilter{
		Active:   parseActive(in.Active, boolPtr(true)),
		Search:   strings.TrimSpace(in.Search),
		MinStock: parseDecimal(in.MinStock),
		MaxStock: parseDecimal(in.MaxStock),
		MinPrice: parseDecimal(in.MinPrice),
		MaxPrice: parseDecimal(in.MaxPrice),
		Page:     page,
	}
	if _, err := uuid.Parse(in.Category); err == nil {
		filter.CategoryID = in.Category
	}
	switch in.StockLevel {
	case repository.StockLevelCritical, repository.StockLevelLow, repository.StockLevelNormal, repository.StockLevelHigh:
		filter.StockLevel = in.StockLevel
	}

	list, total, err := uc.repos.Products.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, ToProductResponse(p))
	}
	return &dto.ProductListResponse{Products: items, Pagination: dto.NewPagination(page, total)}, nil
}

// TopSelling ranking por unidades vendidas en ventas completadas. limit se acota a [5, 50].
func (uc *ProductUseCase) TopSelling(ctx context.Context, limit int) ([]dto.TopSellingResponse, error) {
	switch {
	case limit == 0:
		limit = defaultTopSelling
	case limit < minTopSelling:
		limit = minTopSelling
	case limit > maxTopSelling:
		limit = maxTopSelling
	}
	top, err := uc.repos.Products.TopSelling(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top selling: %w", err)
	}
	out := make([]dto.TopSellingResponse, 0, len(top))
	for _, t := range top {
		p := t.Product
		out = append(out, dto.TopSellingResponse{
			ProductResponse: ToProductResponse(&p),
			TotalSold:       t.TotalSold,
			SalesCount:      t.SalesCount,
		})
	}
	return out, nil
}

// ToProductResponse mapea entidad -> DTO.
func ToProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		PriceLevel2:   p.PriceLevel2,
		PriceLevel3:   p.PriceLevel3,
		Cost:          p.Cost,
		Stock:         p.Stock,
		MinStock:      p.MinStock,
		UnitType:      p.UnitType,
		CategoryID:    p.CategoryID,
		CategoryName:  p.CategoryName,
		CategoryColor: p.CategoryColor,
		CategoryIcon:  p.CategoryIcon,
		Barcode:       p.Barcode,
		Image:         p.Image,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
