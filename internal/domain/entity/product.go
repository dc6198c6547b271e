package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo (colaborador externo; el núcleo
// de inventario solo consume los campos que gobiernan el seguimiento).
// ProductTypeID define el ámbito de unicidad de los seriales.
type Product struct {
	ID               string
	CompanyID        string
	SKU              string
	Name             string
	ProductTypeID    string
	TrackingType     TrackingType
	SerialRequired   bool
	GSTPercent       decimal.Decimal
	MinStockQuantity decimal.Decimal
	UnitMeasure      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EffectiveTracking normaliza el tipo de seguimiento: si TrackingType es SERIAL
// o SerialRequired está activo, la línea se trata como SERIAL (SERIAL gana
// sobre banderas inconsistentes).
func (p *Product) EffectiveTracking() TrackingType {
	if p.TrackingType == TrackingSerial || p.SerialRequired {
		return TrackingSerial
	}
	return TrackingLot
}
