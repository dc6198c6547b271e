package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra sobre PostgreSQL. El flujo de recepción
// solo muta contadores de líneas y el estado del encabezado.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// GetByID obtiene la orden con sus líneas, o nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate bloquea el encabezado para serializar recepciones
// concurrentes contra la misma orden, y devuelve la orden con sus líneas.
func (r *PurchaseOrderRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, id, true)
}

func (r *PurchaseOrderRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	query := `
		SELECT id, company_id, order_number, supplier_name, status, created_at, updated_at
		FROM purchase_orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var po entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, id).Scan(
		&po.ID, &po.CompanyID, &po.OrderNumber, &po.SupplierName,
		&po.Status, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_order_id, product_id, ordered_quantity, received_quantity, rate
		FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("list purchase order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.PurchaseOrderID, &l.ProductID,
			&l.OrderedQuantity, &l.ReceivedQuantity, &l.Rate); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		po.Lines = append(po.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &po, nil
}

// SaveLine persiste el contador recibido de una línea.
func (r *PurchaseOrderRepo) SaveLine(ctx context.Context, line *entity.PurchaseOrderLine) error {
	query := `UPDATE purchase_order_lines SET received_quantity = $2 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, line.ID, line.ReceivedQuantity)
	if err != nil {
		return fmt.Errorf("save purchase order line: %w", err)
	}
	return nil
}

// UpdateStatus persiste el estado recalculado del encabezado.
func (r *PurchaseOrderRepo) UpdateStatus(ctx context.Context, id string, status entity.PurchaseOrderStatus) error {
	query := `UPDATE purchase_orders SET status = $2, updated_at = now() WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	return nil
}
