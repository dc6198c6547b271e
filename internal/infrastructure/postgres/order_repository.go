package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.SalesOrderRepository = (*OrderRepo)(nil)

// OrderRepo vista de órdenes (internas y B2B) sobre PostgreSQL. El núcleo de
// inventario solo escribe el snapshot de entrega derivado.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// GetByID obtiene la orden con sus líneas planificadas, o nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.SalesOrder, error) {
	query := `
		SELECT id, company_id, order_number, kind, status, planned_warehouse_id,
			delivery_status, created_at, updated_at
		FROM orders WHERE id = $1`
	var o entity.SalesOrder
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &o.Kind, &o.Status, &o.PlannedWarehouseID,
		&o.DeliveryStatus, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, planned_quantity, shipped_quantity, pending_quantity
		FROM order_lines WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.SalesOrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID,
			&l.PlannedQuantity, &l.ShippedQuantity, &l.PendingQuantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// SaveLine persiste el snapshot despachado/pendiente de una línea.
func (r *OrderRepo) SaveLine(ctx context.Context, line *entity.SalesOrderLine) error {
	query := `UPDATE order_lines SET shipped_quantity = $2, pending_quantity = $3 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, line.ID, line.ShippedQuantity, line.PendingQuantity)
	if err != nil {
		return fmt.Errorf("save order line: %w", err)
	}
	return nil
}

// UpdateDeliveryStatus persiste el estado de entrega derivado.
func (r *OrderRepo) UpdateDeliveryStatus(ctx context.Context, id string, status entity.DeliveryStatus) error {
	query := `UPDATE orders SET delivery_status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update delivery status: %w", err)
	}
	return nil
}
