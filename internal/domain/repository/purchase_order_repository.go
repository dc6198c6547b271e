package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// PurchaseOrderRepository es el puerto hacia las órdenes de compra. El flujo
// de recepción solo incrementa contadores recibidos y recalcula el estado.
type PurchaseOrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// GetByIDForUpdate bloquea el encabezado para serializar recepciones
	// concurrentes contra la misma orden.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	SaveLine(ctx context.Context, line *entity.PurchaseOrderLine) error
	UpdateStatus(ctx context.Context, id string, status entity.PurchaseOrderStatus) error
}
