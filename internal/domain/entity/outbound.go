package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clase de documento de salida. Remisión interna y despacho B2B son dos
// instancias del mismo patrón; la clase selecciona la política (tipo de
// transacción, reverso y recálculo de estado de entrega).
type DocumentKind string

const (
	KindDeliveryChallan DocumentKind = "DELIVERY_CHALLAN"
	KindB2BShipment     DocumentKind = "B2B_SHIPMENT"
)

// OutboundDocument es un documento de salida ya despachado. No tiene estado
// DRAFT: crear el documento ejecuta el movimiento, y eliminarlo ejecuta el
// reverso completo (nunca hay aborto en vuelo).
type OutboundDocument struct {
	ID             string
	CompanyID      string
	Kind           DocumentKind
	OrderID        string
	WarehouseID    string // bodega planificada de la orden, fijada al crear
	DocumentNumber string
	Lines          []OutboundLine
	CreatedBy      string
	CreatedAt      time.Time
}

// OutboundLine es una línea despachada; para productos serializados lleva
// exactamente Quantity números de serial.
type OutboundLine struct {
	ID            string
	DocumentID    string
	ProductID     string
	TrackingType  TrackingType
	Quantity      decimal.Decimal
	SerialNumbers []string
}
