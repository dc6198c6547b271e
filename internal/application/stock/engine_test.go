package stock_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

const (
	testUserID    = "user-1"
	testWarehouse = "wh-1"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func newHarness(t *testing.T) (*memory.Store, *memory.TxRunner, *stock.Engine) {
	t.Helper()
	store := memory.New()
	store.SeedWarehouse(entity.Warehouse{ID: testWarehouse, CompanyID: "co-1", Name: "Bodega Central"})
	return store, memory.NewTxRunner(store), stock.NewEngine()
}

func seedLotProduct(store *memory.Store, id string) entity.Product {
	p := entity.Product{
		ID:            id,
		CompanyID:     "co-1",
		SKU:           "SKU-" + id,
		Name:          "Producto " + id,
		ProductTypeID: "type-" + id,
		TrackingType:  entity.TrackingLot,
	}
	store.SeedProduct(p)
	return p
}

func seedSerialProduct(store *memory.Store, id string) entity.Product {
	p := entity.Product{
		ID:            id,
		CompanyID:     "co-1",
		SKU:           "SKU-" + id,
		Name:          "Producto " + id,
		ProductTypeID: "type-" + id,
		TrackingType:  entity.TrackingSerial,
	}
	store.SeedProduct(p)
	return p
}

// ─────────────────────────────────────────────────────────────────────────────
// GetOrCreateStock
// ─────────────────────────────────────────────────────────────────────────────

// TestGetOrCreateStock_Idempotente verifica que el agregado por (producto,
// bodega) se crea una sola vez y que las llamadas siguientes devuelven la
// misma fila.
func TestGetOrCreateStock_Idempotente(t *testing.T) {
	ctx := context.Background()
	store, runner, engine := newHarness(t)
	product := seedLotProduct(store, "prod-cable")

	var firstID, secondID string
	err := runner.Run(ctx, func(r *repository.Set) error {
		s1, err := engine.GetOrCreateStock(ctx, r, &product, testWarehouse)
		require.NoError(t, err)
		s2, err := engine.GetOrCreateStock(ctx, r, &product, testWarehouse)
		require.NoError(t, err)
		firstID, secondID = s1.ID, s2.ID
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, firstID, secondID, "la segunda llamada debe devolver el mismo agregado")

	s, err := store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, entity.TrackingLot, s.TrackingType)
	assert.True(t, s.QuantityOnHand.IsZero())
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyMovement
// ─────────────────────────────────────────────────────────────────────────────

// TestApplyMovement_SnapshotAperturaCierre verifica que cada entrada del libro
// toma el físico como apertura y que cierre = apertura ± cantidad.
func TestApplyMovement_SnapshotAperturaCierre(t *testing.T) {
	ctx := context.Background()
	store, runner, engine := newHarness(t)
	product := seedLotProduct(store, "prod-cable")

	err := runner.Run(ctx, func(r *repository.Set) error {
		s, err := engine.GetOrCreateStock(ctx, r, &product, testWarehouse)
		require.NoError(t, err)

		_, err = engine.ApplyMovement(ctx, r, s, stock.LedgerParams{
			TransactionType: entity.TxnOpeningBalance,
			TransactionID:   "txn-1",
			MovementType:    entity.MovementIn,
			Quantity:        decimal.NewFromInt(10),
			PerformedBy:     testUserID,
		})
		require.NoError(t, err)

		_, err = engine.ApplyMovement(ctx, r, s, stock.LedgerParams{
			TransactionType: entity.TxnStockAdjustment,
			TransactionID:   "txn-2",
			MovementType:    entity.MovementOut,
			Quantity:        decimal.NewFromInt(4),
			PerformedBy:     testUserID,
		})
		return err
	})
	require.NoError(t, err)

	s, err := store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(6)))
	assert.True(t, s.QuantityAvailable.Equal(decimal.NewFromInt(6)))
	require.NotNil(t, s.LastInwardAt)
	require.NotNil(t, s.LastOutwardAt)

	entries, err := store.ReadRepos().Ledger.ListByStock(ctx, product.ID, testWarehouse, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// ListByStock devuelve los más recientes primero.
	out, in := entries[0], entries[1]
	assert.Equal(t, entity.MovementIn, in.MovementType)
	assert.True(t, in.OpeningQuantity.IsZero())
	assert.True(t, in.ClosingQuantity.Equal(decimal.NewFromInt(10)))

	assert.Equal(t, entity.MovementOut, out.MovementType)
	assert.True(t, out.OpeningQuantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, out.ClosingQuantity.Equal(decimal.NewFromInt(6)))
}

// TestApplyMovement_StockInsuficienteRevierte verifica que una salida mayor al
// disponible falla con ErrInsufficientStock y que la transacción completa se
// revierte, incluyendo los movimientos previos del mismo callback.
func TestApplyMovement_StockInsuficienteRevierte(t *testing.T) {
	ctx := context.Background()
	store, runner, engine := newHarness(t)
	product := seedLotProduct(store, "prod-cable")

	// Siembra comprometida: 5 unidades.
	err := runner.Run(ctx, func(r *repository.Set) error {
		s, err := engine.GetOrCreateStock(ctx, r, &product, testWarehouse)
		require.NoError(t, err)
		_, err = engine.ApplyMovement(ctx, r, s, stock.LedgerParams{
			TransactionType: entity.TxnOpeningBalance,
			TransactionID:   "txn-1",
			MovementType:    entity.MovementIn,
			Quantity:        decimal.NewFromInt(5),
			PerformedBy:     testUserID,
		})
		return err
	})
	require.NoError(t, err)

	// Transacción que saca 3 y luego intenta sacar 9: todo-o-nada.
	err = runner.Run(ctx, func(r *repository.Set) error {
		s, err := engine.GetOrCreateStock(ctx, r, &product, testWarehouse)
		require.NoError(t, err)
		_, err = engine.ApplyMovement(ctx, r, s, stock.LedgerParams{
			TransactionType: entity.TxnStockAdjustment,
			TransactionID:   "txn-2",
			MovementType:    entity.MovementOut,
			Quantity:        decimal.NewFromInt(3),
			PerformedBy:     testUserID,
		})
		require.NoError(t, err)
		_, err = engine.ApplyMovement(ctx, r, s, stock.LedgerParams{
			TransactionType: entity.TxnStockAdjustment,
			TransactionID:   "txn-2",
			MovementType:    entity.MovementOut,
			Quantity:        decimal.NewFromInt(9),
			PerformedBy:     testUserID,
		})
		return err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	s, err := store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(5)), "el físico no debe cambiar tras el rollback")

	entries, err := store.ReadRepos().Ledger.ListByStock(ctx, product.ID, testWarehouse, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "la salida parcial de la transacción fallida no debe quedar en el libro")
}

// libroCorruptor escribe la entrada y luego altera el agregado compartido,
// simulando una escritura concurrente que burló el bloqueo de fila.
type libroCorruptor struct {
	repository.LedgerRepository
	agregado *entity.Stock
}

func (l *libroCorruptor) Create(ctx context.Context, e *entity.LedgerEntry) error {
	if err := l.LedgerRepository.Create(ctx, e); err != nil {
		return err
	}
	l.agregado.QuantityOnHand = l.agregado.QuantityOnHand.Add(decimal.NewFromInt(1))
	return nil
}

// TestApplyMovement_AgregadoCorruptoEsInvariante verifica que si el físico
// cambia entre la entrada del libro y la mutación, el desfase contra el cierre
// se reporta como ErrInvariant y la transacción completa se revierte.
func TestApplyMovement_AgregadoCorruptoEsInvariante(t *testing.T) {
	ctx := context.Background()
	store, runner, engine := newHarness(t)
	product := seedLotProduct(store, "prod-cable")

	err := runner.Run(ctx, func(r *repository.Set) error {
		s, err := engine.GetOrCreateStock(ctx, r, &product, testWarehouse)
		require.NoError(t, err)

		rw := *r
		rw.Ledger = &libroCorruptor{LedgerRepository: r.Ledger, agregado: s}
		_, err = engine.ApplyMovement(ctx, &rw, s, stock.LedgerParams{
			TransactionType: entity.TxnOpeningBalance,
			TransactionID:   "txn-1",
			MovementType:    entity.MovementIn,
			Quantity:        decimal.NewFromInt(10),
			PerformedBy:     testUserID,
		})
		return err
	})
	require.ErrorIs(t, err, domain.ErrInvariant)

	s, err := store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	if s != nil {
		assert.True(t, s.QuantityOnHand.IsZero(), "el agregado corrupto no debe persistirse")
	}
	entries, err := store.ReadRepos().Ledger.ListByStock(ctx, product.ID, testWarehouse, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries, "la entrada de la transacción revertida no debe quedar en el libro")
}

// ─────────────────────────────────────────────────────────────────────────────
// Saldo inicial
// ─────────────────────────────────────────────────────────────────────────────

// TestOpeningBalance_Serializado verifica que el saldo inicial de un producto
// serializado crea una unidad y una entrada de libro por serial.
func TestOpeningBalance_Serializado(t *testing.T) {
	ctx := context.Background()
	store, runner, engine := newHarness(t)
	product := seedSerialProduct(store, "prod-panel")
	uc := stock.NewOpeningBalanceUseCase(runner, engine, testLogger())

	rate := decimal.NewFromInt(350)
	err := uc.Register(ctx, stock.OpeningBalanceInput{
		ProductID:     product.ID,
		WarehouseID:   testWarehouse,
		Quantity:      decimal.NewFromInt(2),
		Rate:          &rate,
		SerialNumbers: []string{"SN-001", "SN-002"},
		UserID:        testUserID,
	})
	require.NoError(t, err)

	s, err := store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, entity.TrackingSerial, s.TrackingType)

	for _, sn := range []string{"SN-001", "SN-002"} {
		unit, err := store.ReadRepos().Serials.GetBySerial(ctx, sn, product.ID, testWarehouse)
		require.NoError(t, err)
		require.NotNil(t, unit, "serial %s", sn)
		assert.Equal(t, entity.SerialAvailable, unit.Status)
		assert.Equal(t, s.ID, unit.StockID)
	}

	entries, err := store.ReadRepos().Ledger.ListByStock(ctx, product.ID, testWarehouse, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2, "una entrada por serial")
	for _, e := range entries {
		assert.Equal(t, entity.TxnOpeningBalance, e.TransactionType)
		assert.True(t, e.Quantity.Equal(decimal.NewFromInt(1)))
		assert.NotNil(t, e.SerialID)
		require.NotNil(t, e.Rate)
		assert.True(t, e.Rate.Equal(rate))
	}
}

// TestOpeningBalance_SerialesIncompletosFalla verifica que una cantidad
// serializada sin sus seriales completos se rechaza sin efecto.
func TestOpeningBalance_SerialesIncompletosFalla(t *testing.T) {
	ctx := context.Background()
	store, runner, engine := newHarness(t)
	product := seedSerialProduct(store, "prod-panel")
	uc := stock.NewOpeningBalanceUseCase(runner, engine, testLogger())

	err := uc.Register(ctx, stock.OpeningBalanceInput{
		ProductID:     product.ID,
		WarehouseID:   testWarehouse,
		Quantity:      decimal.NewFromInt(3),
		SerialNumbers: []string{"SN-001"},
		UserID:        testUserID,
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	s, err := store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	if s != nil {
		assert.True(t, s.QuantityOnHand.IsZero())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reservas
// ─────────────────────────────────────────────────────────────────────────────

func seedConfirmedOrder(store *memory.Store, orderID, productID string, planned int64) {
	store.SeedOrder(entity.SalesOrder{
		ID:                 orderID,
		CompanyID:          "co-1",
		OrderNumber:        "ORD-" + orderID,
		Kind:               entity.OrderInternal,
		Status:             entity.OrderStatusConfirmed,
		PlannedWarehouseID: testWarehouse,
		DeliveryStatus:     entity.DeliveryPending,
		Lines: []entity.SalesOrderLine{{
			ID:              "line-" + orderID,
			OrderID:         orderID,
			ProductID:       productID,
			PlannedQuantity: decimal.NewFromInt(planned),
		}},
	})
}

// TestReservas_ReservarYLiberar cubre el ciclo completo: reservar al confirmar
// baja el disponible sin tocar el físico, repetir la reserva es idempotente y
// liberar al cancelar restaura el disponible.
func TestReservas_ReservarYLiberar(t *testing.T) {
	ctx := context.Background()
	store, runner, engine := newHarness(t)
	product := seedLotProduct(store, "prod-cable")
	seedConfirmedOrder(store, "order-1", product.ID, 6)

	opening := stock.NewOpeningBalanceUseCase(runner, engine, testLogger())
	require.NoError(t, opening.Register(ctx, stock.OpeningBalanceInput{
		ProductID:   product.ID,
		WarehouseID: testWarehouse,
		Quantity:    decimal.NewFromInt(10),
		UserID:      testUserID,
	}))

	uc := stock.NewReservationUseCase(runner, engine, testLogger())
	require.NoError(t, uc.Reserve(ctx, "order-1", testUserID))

	s, err := store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(10)), "reservar no toca el físico")
	assert.True(t, s.QuantityReserved.Equal(decimal.NewFromInt(6)))
	assert.True(t, s.QuantityAvailable.Equal(decimal.NewFromInt(4)))

	// Reconfirmar no duplica la retención.
	require.NoError(t, uc.Reserve(ctx, "order-1", testUserID))
	s, err = store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	assert.True(t, s.QuantityReserved.Equal(decimal.NewFromInt(6)))

	// Cancelación: liberar devuelve todo al disponible.
	require.NoError(t, uc.Release(ctx, "order-1", testUserID))
	s, err = store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	assert.True(t, s.QuantityReserved.IsZero())
	assert.True(t, s.QuantityAvailable.Equal(decimal.NewFromInt(10)))
}

// TestReservas_DisponibleInsuficienteFalla verifica que no se puede retener
// más de lo disponible.
func TestReservas_DisponibleInsuficienteFalla(t *testing.T) {
	ctx := context.Background()
	store, runner, engine := newHarness(t)
	product := seedLotProduct(store, "prod-cable")
	seedConfirmedOrder(store, "order-1", product.ID, 20)

	opening := stock.NewOpeningBalanceUseCase(runner, engine, testLogger())
	require.NoError(t, opening.Register(ctx, stock.OpeningBalanceInput{
		ProductID:   product.ID,
		WarehouseID: testWarehouse,
		Quantity:    decimal.NewFromInt(5),
		UserID:      testUserID,
	}))

	uc := stock.NewReservationUseCase(runner, engine, testLogger())
	err := uc.Reserve(ctx, "order-1", testUserID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	s, err := store.ReadRepos().Stocks.Get(ctx, product.ID, testWarehouse)
	require.NoError(t, err)
	assert.True(t, s.QuantityReserved.IsZero(), "la reserva fallida no debe dejar retención parcial")
}

// TestReservas_OrdenNoConfirmadaFalla verifica el prerequisito de estado.
func TestReservas_OrdenNoConfirmadaFalla(t *testing.T) {
	ctx := context.Background()
	store, runner, engine := newHarness(t)
	product := seedLotProduct(store, "prod-cable")
	store.SeedOrder(entity.SalesOrder{
		ID:                 "order-1",
		Kind:               entity.OrderInternal,
		Status:             entity.OrderStatusDraft,
		PlannedWarehouseID: testWarehouse,
		Lines: []entity.SalesOrderLine{{
			ID: "line-1", OrderID: "order-1", ProductID: product.ID,
			PlannedQuantity: decimal.NewFromInt(1),
		}},
	})

	uc := stock.NewReservationUseCase(runner, engine, testLogger())
	err := uc.Reserve(ctx, "order-1", testUserID)
	require.ErrorIs(t, err, domain.ErrValidation)
}
