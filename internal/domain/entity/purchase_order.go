package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estado de una orden de compra (colaborador del flujo de recepción).
type PurchaseOrderStatus string

const (
	POStatusDraft           PurchaseOrderStatus = "DRAFT"
	POStatusApproved        PurchaseOrderStatus = "APPROVED"
	POStatusPartialReceived PurchaseOrderStatus = "PARTIAL_RECEIVED"
	POStatusClosed          PurchaseOrderStatus = "CLOSED"
)

// PurchaseOrder es la orden de compra contra la que se reciben mercancías.
// El flujo de recepción solo muta ReceivedQuantity de sus líneas y el estado.
type PurchaseOrder struct {
	ID           string
	CompanyID    string
	OrderNumber  string
	SupplierName string
	Status       PurchaseOrderStatus
	Lines        []PurchaseOrderLine
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PurchaseOrderLine lleva el contador pedido/recibido por producto.
type PurchaseOrderLine struct {
	ID               string
	PurchaseOrderID  string
	ProductID        string
	OrderedQuantity  decimal.Decimal
	ReceivedQuantity decimal.Decimal
	Rate             decimal.Decimal
}

// PendingQuantity devuelve lo que falta por recibir en la línea.
func (l *PurchaseOrderLine) PendingQuantity() decimal.Decimal {
	return l.OrderedQuantity.Sub(l.ReceivedQuantity)
}

// FullyReceived indica si todas las líneas quedaron completamente recibidas.
func (po *PurchaseOrder) FullyReceived() bool {
	for i := range po.Lines {
		if po.Lines[i].ReceivedQuantity.LessThan(po.Lines[i].OrderedQuantity) {
			return false
		}
	}
	return true
}

// LineByID busca una línea por su id. Devuelve nil si no existe.
func (po *PurchaseOrder) LineByID(lineID string) *PurchaseOrderLine {
	for i := range po.Lines {
		if po.Lines[i].ID == lineID {
			return &po.Lines[i]
		}
	}
	return nil
}
