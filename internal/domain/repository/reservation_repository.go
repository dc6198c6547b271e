package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ReservationRepository persiste retenciones de stock por orden. La retención
// se consume al despachar y se elimina cuando su cantidad llega a cero.
type ReservationRepository interface {
	// GetForUpdate bloquea la retención de (orden, producto, bodega); nil si no hay.
	GetForUpdate(ctx context.Context, orderID, productID, warehouseID string) (*entity.StockReservation, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.StockReservation, error)
	Create(ctx context.Context, res *entity.StockReservation) error
	Save(ctx context.Context, res *entity.StockReservation) error
	Delete(ctx context.Context, id string) error
}
