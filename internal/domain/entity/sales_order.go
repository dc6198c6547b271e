package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clase de orden contra la que se despachan documentos de salida.
type OrderKind string

const (
	OrderInternal OrderKind = "INTERNAL" // órdenes internas (remisión/challan)
	OrderB2B      OrderKind = "B2B"      // órdenes de venta B2B (despacho)
)

// Estado de la orden (lo gobierna el módulo de órdenes; aquí solo se lee).
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusClosed    OrderStatus = "CLOSED"
)

// Estado de entrega derivado del historial de documentos de salida.
type DeliveryStatus string

const (
	DeliveryPending  DeliveryStatus = "PENDING"
	DeliveryPartial  DeliveryStatus = "PARTIAL"
	DeliveryComplete DeliveryStatus = "COMPLETE"
)

// SalesOrder es la vista del colaborador "orden" que consume el núcleo de
// inventario: estado, bodega planificada única y cantidades planificadas (BOM)
// por producto. Todo documento de salida de la orden queda fijado a su bodega.
type SalesOrder struct {
	ID                 string
	CompanyID          string
	OrderNumber        string
	Kind               OrderKind
	Status             OrderStatus
	PlannedWarehouseID string
	DeliveryStatus     DeliveryStatus
	Lines              []SalesOrderLine
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SalesOrderLine lleva la cantidad planificada (fijada al planear) y el
// snapshot despachado/pendiente recalculado desde el historial de documentos.
type SalesOrderLine struct {
	ID              string
	OrderID         string
	ProductID       string
	PlannedQuantity decimal.Decimal
	ShippedQuantity decimal.Decimal
	PendingQuantity decimal.Decimal
}

// PlannedFor devuelve la cantidad planificada para un producto, y si existe
// línea planificada para él.
func (o *SalesOrder) PlannedFor(productID string) (decimal.Decimal, bool) {
	for i := range o.Lines {
		if o.Lines[i].ProductID == productID {
			return o.Lines[i].PlannedQuantity, true
		}
	}
	return decimal.Zero, false
}
