package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

const ledgerColumns = `id, product_id, warehouse_id, stock_id, transaction_type, transaction_id,
		movement_type, quantity, serial_id, opening_quantity, closing_quantity,
		rate, gst_percent, amount, reason, performed_by, created_at`

// LedgerRepo implementación del libro de movimientos sobre PostgreSQL.
// Solo-añadir: no hay UPDATE ni DELETE contra stock_ledger.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador del libro. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create persiste una entrada inmutable del libro.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO stock_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.WarehouseID, e.StockID, e.TransactionType, e.TransactionID,
		e.MovementType, e.Quantity, e.SerialID, e.OpeningQuantity, e.ClosingQuantity,
		e.Rate, e.GSTPercent, e.Amount, e.Reason, e.PerformedBy, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create ledger entry: %w", err)
	}
	return nil
}

// ListByStock lista el libro de (producto, bodega), el más reciente primero.
func (r *LedgerRepo) ListByStock(ctx context.Context, productID, warehouseID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM stock_ledger WHERE product_id = $1 AND warehouse_id = $2
		ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`
	return r.scanMany(ctx, query, productID, warehouseID, limit, offset)
}

// ListByTransaction lista las entradas de un documento concreto, en orden de escritura.
func (r *LedgerRepo) ListByTransaction(ctx context.Context, txnType entity.TransactionType, txnID string) ([]*entity.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + `
		FROM stock_ledger WHERE transaction_type = $1 AND transaction_id = $2
		ORDER BY created_at, id`
	return r.scanMany(ctx, query, txnType, txnID)
}

func (r *LedgerRepo) scanMany(ctx context.Context, query string, args ...any) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.ProductID, &e.WarehouseID, &e.StockID, &e.TransactionType, &e.TransactionID,
			&e.MovementType, &e.Quantity, &e.SerialID, &e.OpeningQuantity, &e.ClosingQuantity,
			&e.Rate, &e.GSTPercent, &e.Amount, &e.Reason, &e.PerformedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
