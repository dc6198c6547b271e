package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipo de seguimiento de inventario de un producto.
type TrackingType string

const (
	TrackingSerial TrackingType = "SERIAL" // cada unidad física tiene serial propio
	TrackingLot    TrackingType = "LOT"    // solo cantidad agregada
)

// Stock es el agregado de cantidades por (producto, bodega). Se crea de forma
// perezosa con el primer movimiento y nunca se elimina.
// Invariante: QuantityAvailable = QuantityOnHand - QuantityReserved.
type Stock struct {
	ID                string
	ProductID         string
	WarehouseID       string
	QuantityOnHand    decimal.Decimal
	QuantityReserved  decimal.Decimal
	QuantityAvailable decimal.Decimal
	TrackingType      TrackingType
	MinStockQuantity  decimal.Decimal
	LastInwardAt      *time.Time
	LastOutwardAt     *time.Time
	LastUpdatedBy     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RecomputeAvailable restablece el invariante disponible = físico - reservado.
func (s *Stock) RecomputeAvailable() {
	s.QuantityAvailable = s.QuantityOnHand.Sub(s.QuantityReserved)
}
