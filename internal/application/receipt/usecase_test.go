package receipt_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/receipt"
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
	companyID   = "co-1"
	userID      = "user-1"
	warehouseID = "wh-1"
	poID        = "po-1"
	linePanelID = "po-line-panel"
	lineCableID = "po-line-cable"
)

var (
	panel = entity.Product{
		ID:            "prod-panel",
		CompanyID:     companyID,
		SKU:           "PANEL-550",
		Name:          "Panel solar 550W",
		ProductTypeID: "type-panel",
		TrackingType:  entity.TrackingSerial,
		GSTPercent:    decimal.NewFromInt(18),
	}
	cable = entity.Product{
		ID:            "prod-cable",
		CompanyID:     companyID,
		SKU:           "CABLE-6MM",
		Name:          "Cable solar 6mm",
		ProductTypeID: "type-cable",
		TrackingType:  entity.TrackingLot,
		GSTPercent:    decimal.NewFromInt(18),
	}
)

func newHarness(t *testing.T) (*memory.Store, *receipt.UseCase) {
	t.Helper()
	store := memory.New()
	store.SeedWarehouse(entity.Warehouse{ID: warehouseID, CompanyID: companyID, Name: "Bodega Central"})
	store.SeedProduct(panel)
	store.SeedProduct(cable)
	store.SeedPurchaseOrder(entity.PurchaseOrder{
		ID:           poID,
		CompanyID:    companyID,
		OrderNumber:  "PO-0001",
		SupplierName: "Proveedor Solar",
		Status:       entity.POStatusApproved,
		Lines: []entity.PurchaseOrderLine{
			{ID: linePanelID, PurchaseOrderID: poID, ProductID: panel.ID,
				OrderedQuantity: decimal.NewFromInt(5), Rate: decimal.NewFromInt(1000)},
			{ID: lineCableID, PurchaseOrderID: poID, ProductID: cable.ID,
				OrderedQuantity: decimal.NewFromInt(20), Rate: decimal.NewFromInt(50)},
		},
	})

	log := logger.New(logger.Config{Env: "development", Level: "error"})
	uc := receipt.NewUseCase(memory.NewTxRunner(store), stock.NewEngine(), log)
	return store, uc
}

func draftRequest() dto.CreateReceiptRequest {
	return dto.CreateReceiptRequest{
		PurchaseOrderID: poID,
		WarehouseID:     warehouseID,
		ReceiptNumber:   "GRN-0001",
		Lines: []dto.ReceiptLineRequest{
			{PurchaseOrderLineID: linePanelID, AcceptedQuantity: decimal.NewFromInt(2),
				SerialNumbers: []string{"PNL-001", "PNL-002"}},
			{PurchaseOrderLineID: lineCableID, AcceptedQuantity: decimal.NewFromInt(8)},
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

// TestCreate_BorradorSinEfectoEnStock verifica que crear la recepción en DRAFT
// calcula montos y normaliza el seguimiento pero no toca stock ni seriales.
func TestCreate_BorradorSinEfectoEnStock(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	rec, err := uc.Create(ctx, companyID, userID, draftRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptStatusDraft, rec.Status)
	require.Len(t, rec.Lines, 2)

	panelLine, cableLine := rec.Lines[0], rec.Lines[1]
	assert.Equal(t, entity.TrackingSerial, panelLine.TrackingType)
	assert.True(t, panelLine.TaxableAmount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, panelLine.GSTAmount.Equal(decimal.NewFromInt(360)))
	assert.True(t, panelLine.TotalAmount.Equal(decimal.NewFromInt(2360)))

	assert.Equal(t, entity.TrackingLot, cableLine.TrackingType)
	assert.True(t, cableLine.TaxableAmount.Equal(decimal.NewFromInt(400)))
	assert.True(t, cableLine.TotalAmount.Equal(decimal.NewFromInt(472)))

	s, err := store.ReadRepos().Stocks.Get(ctx, panel.ID, warehouseID)
	require.NoError(t, err)
	assert.Nil(t, s, "el borrador no debe crear el agregado de stock")

	unit, err := store.ReadRepos().Serials.GetBySerial(ctx, "PNL-001", panel.ID, warehouseID)
	require.NoError(t, err)
	assert.Nil(t, unit, "el borrador no debe registrar seriales")
}

// TestCreate_ExcedePendienteFalla verifica el techo aceptado <= pedido - recibido.
func TestCreate_ExcedePendienteFalla(t *testing.T) {
	ctx := context.Background()
	_, uc := newHarness(t)

	in := draftRequest()
	in.Lines = []dto.ReceiptLineRequest{{
		PurchaseOrderLineID: linePanelID,
		AcceptedQuantity:    decimal.NewFromInt(6),
		SerialNumbers:       []string{"A", "B", "C", "D", "E", "F"},
	}}
	_, err := uc.Create(ctx, companyID, userID, in)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestCreate_SerialesIncompletosFalla verifica seriales == cantidad en líneas
// serializadas.
func TestCreate_SerialesIncompletosFalla(t *testing.T) {
	ctx := context.Background()
	_, uc := newHarness(t)

	in := draftRequest()
	in.Lines[0].SerialNumbers = []string{"PNL-001"}
	_, err := uc.Create(ctx, companyID, userID, in)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// ─────────────────────────────────────────────────────────────────────────────
// Approve
// ─────────────────────────────────────────────────────────────────────────────

// TestApprove_IngresaStockSerialesYLibro cubre la aprobación completa: stock
// IN, una unidad y una entrada de libro por serial, una entrada agregada por
// línea de lote, contadores de la orden de compra y estados finales.
func TestApprove_IngresaStockSerialesYLibro(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	rec, err := uc.Create(ctx, companyID, userID, draftRequest())
	require.NoError(t, err)

	rec, err = uc.Approve(ctx, rec.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptStatusReceived, rec.Status)
	require.NotNil(t, rec.ReceivedAt)

	// Stock.
	sPanel, err := store.ReadRepos().Stocks.Get(ctx, panel.ID, warehouseID)
	require.NoError(t, err)
	require.NotNil(t, sPanel)
	assert.True(t, sPanel.QuantityOnHand.Equal(decimal.NewFromInt(2)))

	sCable, err := store.ReadRepos().Stocks.Get(ctx, cable.ID, warehouseID)
	require.NoError(t, err)
	require.NotNil(t, sCable)
	assert.True(t, sCable.QuantityOnHand.Equal(decimal.NewFromInt(8)))

	// Seriales.
	for _, sn := range []string{"PNL-001", "PNL-002"} {
		unit, err := store.ReadRepos().Serials.GetBySerial(ctx, sn, panel.ID, warehouseID)
		require.NoError(t, err)
		require.NotNil(t, unit, "serial %s", sn)
		assert.Equal(t, entity.SerialAvailable, unit.Status)
		assert.Equal(t, sPanel.ID, unit.StockID)
	}

	// Libro: dos entradas por serial más una agregada por la línea de lote.
	entries, err := store.ReadRepos().Ledger.ListByTransaction(ctx, entity.TxnPurchaseReceipt, rec.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first, second, agg := entries[0], entries[1], entries[2]
	assert.True(t, first.Quantity.Equal(decimal.NewFromInt(1)))
	assert.NotNil(t, first.SerialID)
	assert.True(t, first.OpeningQuantity.IsZero())
	assert.True(t, first.ClosingQuantity.Equal(decimal.NewFromInt(1)))
	require.NotNil(t, first.Amount)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(1180)), "monto por unidad con GST")

	assert.True(t, second.OpeningQuantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, second.ClosingQuantity.Equal(decimal.NewFromInt(2)))

	assert.Nil(t, agg.SerialID)
	assert.True(t, agg.Quantity.Equal(decimal.NewFromInt(8)))
	require.NotNil(t, agg.Amount)
	assert.True(t, agg.Amount.Equal(decimal.NewFromInt(472)))

	// Orden de compra: contadores y estado parcial.
	po := getPurchaseOrder(t, store, poID)
	assert.Equal(t, entity.POStatusPartialReceived, po.Status)
	assert.True(t, po.LineByID(linePanelID).ReceivedQuantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, po.LineByID(lineCableID).ReceivedQuantity.Equal(decimal.NewFromInt(8)))
}

// TestApprove_CierraOrdenAlCompletar verifica que al recibir todo lo pedido la
// orden pasa a CLOSED y deja de aceptar recepciones.
func TestApprove_CierraOrdenAlCompletar(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	rec, err := uc.Create(ctx, companyID, userID, draftRequest())
	require.NoError(t, err)
	_, err = uc.Approve(ctx, rec.ID, userID)
	require.NoError(t, err)

	rest := dto.CreateReceiptRequest{
		PurchaseOrderID: poID,
		WarehouseID:     warehouseID,
		ReceiptNumber:   "GRN-0002",
		Lines: []dto.ReceiptLineRequest{
			{PurchaseOrderLineID: linePanelID, AcceptedQuantity: decimal.NewFromInt(3),
				SerialNumbers: []string{"PNL-003", "PNL-004", "PNL-005"}},
			{PurchaseOrderLineID: lineCableID, AcceptedQuantity: decimal.NewFromInt(12)},
		},
	}
	rec2, err := uc.Create(ctx, companyID, userID, rest)
	require.NoError(t, err)
	_, err = uc.Approve(ctx, rec2.ID, userID)
	require.NoError(t, err)

	po := getPurchaseOrder(t, store, poID)
	assert.Equal(t, entity.POStatusClosed, po.Status)

	// Contra una orden cerrada ya no se crean recepciones.
	_, err = uc.Create(ctx, companyID, userID, rest)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestApprove_DobleAprobacionFalla verifica que RECEIVED es terminal.
func TestApprove_DobleAprobacionFalla(t *testing.T) {
	ctx := context.Background()
	_, uc := newHarness(t)

	rec, err := uc.Create(ctx, companyID, userID, draftRequest())
	require.NoError(t, err)
	_, err = uc.Approve(ctx, rec.ID, userID)
	require.NoError(t, err)

	_, err = uc.Approve(ctx, rec.ID, userID)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestApprove_SerialDuplicadoRevierteTodo verifica que una colisión de serial
// dentro del mismo tipo de producto revierte la aprobación completa: ni stock,
// ni contadores de la orden, ni entradas de libro parciales.
func TestApprove_SerialDuplicadoRevierteTodo(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	rec, err := uc.Create(ctx, companyID, userID, draftRequest())
	require.NoError(t, err)
	_, err = uc.Approve(ctx, rec.ID, userID)
	require.NoError(t, err)

	dup := dto.CreateReceiptRequest{
		PurchaseOrderID: poID,
		WarehouseID:     warehouseID,
		ReceiptNumber:   "GRN-0003",
		Lines: []dto.ReceiptLineRequest{{
			PurchaseOrderLineID: linePanelID,
			AcceptedQuantity:    decimal.NewFromInt(1),
			SerialNumbers:       []string{"PNL-001"}, // ya registrado por GRN-0001
		}},
	}
	rec2, err := uc.Create(ctx, companyID, userID, dup)
	require.NoError(t, err)

	_, err = uc.Approve(ctx, rec2.ID, userID)
	require.ErrorIs(t, err, domain.ErrSerialAlreadyExists)

	s, err := store.ReadRepos().Stocks.Get(ctx, panel.ID, warehouseID)
	require.NoError(t, err)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(2)), "el stock no debe cambiar tras el rollback")

	po := getPurchaseOrder(t, store, poID)
	assert.True(t, po.LineByID(linePanelID).ReceivedQuantity.Equal(decimal.NewFromInt(2)),
		"los contadores de la orden no deben cambiar tras el rollback")
}

func getPurchaseOrder(t *testing.T, store *memory.Store, id string) *entity.PurchaseOrder {
	t.Helper()
	var po *entity.PurchaseOrder
	err := memory.NewTxRunner(store).Run(context.Background(), func(r *repository.Set) error {
		var err error
		po, err = r.PurchaseOrders.GetByID(context.Background(), id)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, po)
	return po
}
