package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Ensure TxRunner implements stock.TxRunner.
var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con el Set completo de repos atados a
// la tx y hace Commit o Rollback. Los bloqueos FOR UPDATE tomados dentro de fn
// viven hasta el final de la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(repos *repository.Set) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewSet(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewSet arma el Set de repositorios sobre un Querier (pool o tx).
func NewSet(q Querier) *repository.Set {
	return &repository.Set{
		Stocks:         NewStockRepository(q),
		Serials:        NewSerialRepository(q),
		Ledger:         NewLedgerRepository(q),
		Products:       NewProductRepository(q),
		Warehouses:     NewWarehouseRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Receipts:       NewReceiptRepository(q),
		Orders:         NewOrderRepository(q),
		Outbounds:      NewOutboundRepository(q),
		Adjustments:    NewAdjustmentRepository(q),
		Transfers:      NewTransferRepository(q),
		Reservations:   NewReservationRepository(q),
	}
}
