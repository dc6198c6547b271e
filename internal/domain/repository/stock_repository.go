package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// StockRepository define el puerto del agregado Stock por (producto, bodega).
// Las mutaciones siempre ocurren dentro de una transacción con la fila
// bloqueada (GetForUpdate) para serializar escritores concurrentes.
type StockRepository interface {
	// Get devuelve el agregado o nil si aún no existe.
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) y la devuelve, o nil.
	GetForUpdate(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	// Create inserta un agregado nuevo. Devuelve domain.ErrDuplicate si otra
	// transacción ya creó la fila para la misma clave.
	Create(ctx context.Context, stock *entity.Stock) error
	// Save persiste las cantidades y marcas del agregado ya bloqueado.
	Save(ctx context.Context, stock *entity.Stock) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.Stock, error)
	// ListBelowMinimum devuelve los agregados en o por debajo de su stock mínimo.
	ListBelowMinimum(ctx context.Context, warehouseID string) ([]*entity.Stock, error)
}
