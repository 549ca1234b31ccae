package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de unidad: unidades (enteras) o kg (fraccionables).
const (
	UnitTypeUnits = "unidades"
	UnitTypeKg    = "kg"
)

// Product representa un producto del catálogo. Stock solo cambia vía movimientos de stock.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal  // precio nivel 1
	PriceLevel2 *decimal.Decimal // opcional
	PriceLevel3 *decimal.Decimal // opcional
	Cost        decimal.Decimal
	Stock       decimal.Decimal
	MinStock    decimal.Decimal
	UnitType    string
	CategoryID  *string
	Barcode     string // único cuando no está vacío
	Image       string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Campos de lectura (JOIN con categories).
	CategoryName  string
	CategoryColor string
	CategoryIcon  string
}

// Decimales que admiten las columnas de cantidades y de montos.
const (
	QuantityPlaces = 3
	MoneyPlaces    = 2
)

// FitsPlaces indica si d no tiene más de places decimales significativos.
func FitsPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// IsValidUnitType indica si u es un tipo de unidad soportado.
func IsValidUnitType(u string) bool {
	return u == UnitTypeUnits || u == UnitTypeKg
}

// CountsWholeUnits indica si las cantidades del producto deben ser enteras.
func (p *Product) CountsWholeUnits() bool {
	return p.UnitType != UnitTypeKg
}

// DefaultMinStock stock mínimo por defecto según el tipo de unidad.
func DefaultMinStock(unitType string) decimal.Decimal {
	if unitType == UnitTypeKg {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(10)
}
