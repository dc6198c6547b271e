package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// SalesOrderRepository es el puerto hacia las órdenes (internas y B2B).
// El núcleo de inventario lee la orden y solo escribe el snapshot de entrega
// derivado (estado y despachado/pendiente por línea).
type SalesOrderRepository interface {
	GetByID(ctx context.Context, id string) (*entity.SalesOrder, error)
	SaveLine(ctx context.Context, line *entity.SalesOrderLine) error
	UpdateDeliveryStatus(ctx context.Context, id string, status entity.DeliveryStatus) error
}
