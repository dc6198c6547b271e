package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.ReservationRepository = (*ReservationRepo)(nil)

const reservationColumns = `id, order_id, product_id, warehouse_id, quantity, created_at, updated_at`

// ReservationRepo retenciones de stock por orden sobre PostgreSQL.
type ReservationRepo struct {
	q Querier
}

// NewReservationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReservationRepository(q Querier) *ReservationRepo {
	return &ReservationRepo{q: q}
}

// GetForUpdate bloquea la retención de (orden, producto, bodega); nil si no hay.
func (r *ReservationRepo) GetForUpdate(ctx context.Context, orderID, productID, warehouseID string) (*entity.StockReservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM stock_reservations WHERE order_id = $1 AND product_id = $2 AND warehouse_id = $3
		FOR UPDATE`
	var res entity.StockReservation
	err := r.q.QueryRow(ctx, query, orderID, productID, warehouseID).Scan(
		&res.ID, &res.OrderID, &res.ProductID, &res.WarehouseID,
		&res.Quantity, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation for update: %w", err)
	}
	return &res, nil
}

// ListByOrder lista las retenciones vigentes de la orden.
func (r *ReservationRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.StockReservation, error) {
	query := `SELECT ` + reservationColumns + `
		FROM stock_reservations WHERE order_id = $1 ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockReservation
	for rows.Next() {
		var res entity.StockReservation
		if err := rows.Scan(&res.ID, &res.OrderID, &res.ProductID, &res.WarehouseID,
			&res.Quantity, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		list = append(list, &res)
	}
	return list, rows.Err()
}

// Create inserta la retención. La clave única (order_id, product_id, warehouse_id)
// convierte el doble registro en domain.ErrDuplicate.
func (r *ReservationRepo) Create(ctx context.Context, res *entity.StockReservation) error {
	query := `
		INSERT INTO stock_reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		res.ID, res.OrderID, res.ProductID, res.WarehouseID,
		res.Quantity, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: retención de %s para la orden %s",
				domain.ErrDuplicate, res.ProductID, res.OrderID)
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// Save persiste la cantidad restante de la retención ya bloqueada.
func (r *ReservationRepo) Save(ctx context.Context, res *entity.StockReservation) error {
	query := `UPDATE stock_reservations SET quantity = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, res.ID, res.Quantity, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save reservation: %w", err)
	}
	return nil
}

// Delete elimina una retención completamente consumida o liberada.
func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM stock_reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}
