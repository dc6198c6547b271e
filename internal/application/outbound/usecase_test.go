package outbound_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/outbound"
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
	managerID   = "user-mgr"
	warehouseID = "wh-1"
	orderID     = "order-int"
	b2bOrderID  = "order-b2b"
)

var (
	panel = entity.Product{
		ID:            "prod-panel",
		CompanyID:     companyID,
		SKU:           "PANEL-550",
		Name:          "Panel solar 550W",
		ProductTypeID: "type-panel",
		TrackingType:  entity.TrackingSerial,
	}
	cable = entity.Product{
		ID:            "prod-cable",
		CompanyID:     companyID,
		SKU:           "CABLE-6MM",
		Name:          "Cable solar 6mm",
		ProductTypeID: "type-cable",
		TrackingType:  entity.TrackingLot,
	}
)

type harness struct {
	store    *memory.Store
	runner   *memory.TxRunner
	engine   *stock.Engine
	log      *logger.Logger
	challan  *outbound.UseCase
	shipment *outbound.UseCase
}

// newHarness siembra catálogo, bodega con encargado, una orden interna y una
// B2B confirmadas (3 paneles y 10 metros de cable planificados cada una) y el
// stock físico correspondiente: seriales SN-1..SN-3 y 10 de cable.
func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.New()
	store.SeedWarehouse(entity.Warehouse{ID: warehouseID, CompanyID: companyID, Name: "Bodega Central"})
	store.SeedManager(warehouseID, managerID)
	store.SeedProduct(panel)
	store.SeedProduct(cable)

	for id, kind := range map[string]entity.OrderKind{orderID: entity.OrderInternal, b2bOrderID: entity.OrderB2B} {
		store.SeedOrder(entity.SalesOrder{
			ID:                 id,
			CompanyID:          companyID,
			OrderNumber:        "ORD-" + id,
			Kind:               kind,
			Status:             entity.OrderStatusConfirmed,
			PlannedWarehouseID: warehouseID,
			DeliveryStatus:     entity.DeliveryPending,
			Lines: []entity.SalesOrderLine{
				{ID: id + "-l1", OrderID: id, ProductID: panel.ID, PlannedQuantity: decimal.NewFromInt(3)},
				{ID: id + "-l2", OrderID: id, ProductID: cable.ID, PlannedQuantity: decimal.NewFromInt(10)},
			},
		})
	}

	runner := memory.NewTxRunner(store)
	engine := stock.NewEngine()
	log := logger.New(logger.Config{Env: "development", Level: "error"})

	opening := stock.NewOpeningBalanceUseCase(runner, engine, log)
	ctx := context.Background()
	require.NoError(t, opening.Register(ctx, stock.OpeningBalanceInput{
		ProductID: panel.ID, WarehouseID: warehouseID,
		Quantity:      decimal.NewFromInt(3),
		SerialNumbers: []string{"SN-1", "SN-2", "SN-3"},
		UserID:        managerID,
	}))
	require.NoError(t, opening.Register(ctx, stock.OpeningBalanceInput{
		ProductID: cable.ID, WarehouseID: warehouseID,
		Quantity: decimal.NewFromInt(10),
		UserID:   managerID,
	}))

	return &harness{
		store:    store,
		runner:   runner,
		engine:   engine,
		log:      log,
		challan:  outbound.NewUseCase(outbound.DeliveryChallanPolicy, runner, engine, log),
		shipment: outbound.NewUseCase(outbound.B2BShipmentPolicy, runner, engine, log),
	}
}

func (h *harness) stockOf(t *testing.T, productID string) *entity.Stock {
	t.Helper()
	s, err := h.store.ReadRepos().Stocks.Get(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func (h *harness) orderOf(t *testing.T, id string) *entity.SalesOrder {
	t.Helper()
	var o *entity.SalesOrder
	err := h.runner.Run(context.Background(), func(r *repository.Set) error {
		var err error
		o, err = r.Orders.GetByID(context.Background(), id)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, o)
	return o
}

func challanRequest() dto.CreateOutboundRequest {
	return dto.CreateOutboundRequest{
		OrderID:        orderID,
		DocumentNumber: "DC-0001",
		Lines: []dto.OutboundLineRequest{
			{ProductID: panel.ID, Quantity: decimal.NewFromInt(2), SerialNumbers: []string{"SN-1", "SN-2"}},
			{ProductID: cable.ID, Quantity: decimal.NewFromInt(4)},
		},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────────────────────────────────────

// TestCreate_RemisionConsumeReservaYEmiteSeriales cubre el despacho completo:
// la retención de la orden se consume antes de mover el físico, los seriales
// pasan a ISSUED con referencia al documento, el libro registra una entrada
// por serial y una agregada, y el snapshot de entrega queda PARTIAL.
func TestCreate_RemisionConsumeReservaYEmiteSeriales(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	reservas := stock.NewReservationUseCase(h.runner, h.engine, h.log)
	require.NoError(t, reservas.Reserve(ctx, orderID, managerID))

	doc, err := h.challan.Create(ctx, companyID, managerID, challanRequest())
	require.NoError(t, err)
	assert.Equal(t, entity.KindDeliveryChallan, doc.Kind)
	assert.Equal(t, warehouseID, doc.WarehouseID, "la bodega queda fijada a la planificada de la orden")

	// Stock: el físico baja y la retención consumida no se descuenta dos veces.
	sPanel := h.stockOf(t, panel.ID)
	assert.True(t, sPanel.QuantityOnHand.Equal(decimal.NewFromInt(1)))
	assert.True(t, sPanel.QuantityReserved.Equal(decimal.NewFromInt(1)))
	assert.True(t, sPanel.QuantityAvailable.IsZero())

	sCable := h.stockOf(t, cable.ID)
	assert.True(t, sCable.QuantityOnHand.Equal(decimal.NewFromInt(6)))
	assert.True(t, sCable.QuantityReserved.Equal(decimal.NewFromInt(6)))
	assert.True(t, sCable.QuantityAvailable.IsZero())

	// Seriales emitidos por este documento.
	for _, sn := range []string{"SN-1", "SN-2"} {
		unit, err := h.store.ReadRepos().Serials.GetBySerial(ctx, sn, panel.ID, warehouseID)
		require.NoError(t, err)
		require.NotNil(t, unit)
		assert.Equal(t, entity.SerialIssued, unit.Status)
		assert.Equal(t, doc.ID, unit.OutboundRef)
		assert.NotNil(t, unit.OutwardAt)
	}
	unit, err := h.store.ReadRepos().Serials.GetBySerial(ctx, "SN-3", panel.ID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, entity.SerialAvailable, unit.Status)

	// Libro: dos entradas por serial más la agregada del cable.
	entries, err := h.store.ReadRepos().Ledger.ListByTransaction(ctx, entity.TxnDeliveryChallan, doc.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.NotNil(t, entries[0].SerialID)
	assert.NotNil(t, entries[1].SerialID)
	assert.Nil(t, entries[2].SerialID)
	assert.True(t, entries[2].Quantity.Equal(decimal.NewFromInt(4)))

	// Snapshot de entrega de la orden.
	order := h.orderOf(t, orderID)
	assert.Equal(t, entity.DeliveryPartial, order.DeliveryStatus)
	assert.True(t, order.Lines[0].ShippedQuantity.Equal(decimal.NewFromInt(2)))
	assert.True(t, order.Lines[0].PendingQuantity.Equal(decimal.NewFromInt(1)))
}

// TestCreate_SinReservaDespachaIgual verifica que la retención es opcional: un
// despacho sin reserva previa solo exige disponible suficiente.
func TestCreate_SinReservaDespachaIgual(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.challan.Create(ctx, companyID, managerID, challanRequest())
	require.NoError(t, err)

	sCable := h.stockOf(t, cable.ID)
	assert.True(t, sCable.QuantityOnHand.Equal(decimal.NewFromInt(6)))
	assert.True(t, sCable.QuantityReserved.IsZero())
}

// TestCreate_NoEncargadoFalla verifica la autorización por bodega.
func TestCreate_NoEncargadoFalla(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.challan.Create(ctx, companyID, "user-ajeno", challanRequest())
	require.ErrorIs(t, err, domain.ErrUnauthorizedWarehouse)
}

// TestCreate_BodegaDistintaFalla verifica que la bodega enviada debe coincidir
// con la planificada de la orden.
func TestCreate_BodegaDistintaFalla(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := challanRequest()
	in.WarehouseID = "wh-otra"
	_, err := h.challan.Create(ctx, companyID, managerID, in)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestCreate_ExcedePlanificadoFalla cubre el techo acumulado por producto:
// planificado menos lo ya despachado por documentos hermanos.
func TestCreate_ExcedePlanificadoFalla(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	// Primer despacho parcial de 2 paneles.
	_, err := h.challan.Create(ctx, companyID, managerID, challanRequest())
	require.NoError(t, err)

	// Segundo despacho de 2 paneles más rompería el techo de 3.
	in := dto.CreateOutboundRequest{
		OrderID:        orderID,
		DocumentNumber: "DC-0002",
		Lines: []dto.OutboundLineRequest{
			{ProductID: cable.ID, Quantity: decimal.NewFromInt(7)},
		},
	}
	_, err = h.challan.Create(ctx, companyID, managerID, in)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestCreate_TechoAcumuladoDentroDelDocumento verifica que dos líneas del
// mismo producto en un solo documento se acumulan contra el techo.
func TestCreate_TechoAcumuladoDentroDelDocumento(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := dto.CreateOutboundRequest{
		OrderID:        orderID,
		DocumentNumber: "DC-0001",
		Lines: []dto.OutboundLineRequest{
			{ProductID: cable.ID, Quantity: decimal.NewFromInt(6)},
			{ProductID: cable.ID, Quantity: decimal.NewFromInt(6)},
		},
	}
	_, err := h.challan.Create(ctx, companyID, managerID, in)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestCreate_ClaseDeOrdenIncorrectaFalla verifica que el flujo de despacho B2B
// rechaza órdenes internas y viceversa.
func TestCreate_ClaseDeOrdenIncorrectaFalla(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := challanRequest() // orden interna
	_, err := h.shipment.Create(ctx, companyID, managerID, in)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestCreate_SerialNoDisponibleRevierte verifica que emitir un serial ya
// ISSUED falla y no deja efectos parciales.
func TestCreate_SerialNoDisponibleRevierte(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	first := dto.CreateOutboundRequest{
		OrderID:        orderID,
		DocumentNumber: "DC-0001",
		Lines: []dto.OutboundLineRequest{
			{ProductID: panel.ID, Quantity: decimal.NewFromInt(1), SerialNumbers: []string{"SN-1"}},
		},
	}
	_, err := h.challan.Create(ctx, companyID, managerID, first)
	require.NoError(t, err)

	second := dto.CreateOutboundRequest{
		OrderID:        orderID,
		DocumentNumber: "DC-0002",
		Lines: []dto.OutboundLineRequest{
			{ProductID: panel.ID, Quantity: decimal.NewFromInt(2), SerialNumbers: []string{"SN-2", "SN-1"}},
		},
	}
	_, err = h.challan.Create(ctx, companyID, managerID, second)
	require.ErrorIs(t, err, domain.ErrSerialNotAvailable)

	// SN-2 no debe quedar emitido por el documento fallido.
	unit, err := h.store.ReadRepos().Serials.GetBySerial(ctx, "SN-2", panel.ID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, entity.SerialAvailable, unit.Status)

	sPanel := h.stockOf(t, panel.ID)
	assert.True(t, sPanel.QuantityOnHand.Equal(decimal.NewFromInt(2)))
}

// TestShipment_NoRecalculaEntrega verifica que la política B2B no toca el
// snapshot de entrega de la orden.
func TestShipment_NoRecalculaEntrega(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	in := dto.CreateOutboundRequest{
		OrderID:        b2bOrderID,
		DocumentNumber: "SHP-0001",
		Lines: []dto.OutboundLineRequest{
			{ProductID: cable.ID, Quantity: decimal.NewFromInt(4)},
		},
	}
	doc, err := h.shipment.Create(ctx, companyID, managerID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.KindB2BShipment, doc.Kind)

	order := h.orderOf(t, b2bOrderID)
	assert.Equal(t, entity.DeliveryPending, order.DeliveryStatus)

	entries, err := h.store.ReadRepos().Ledger.ListByTransaction(ctx, entity.TxnB2BShipment, doc.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete (reverso)
// ─────────────────────────────────────────────────────────────────────────────

// TestDelete_ReversoCompleto verifica el reverso: stock IN por cada movimiento
// original, seriales de vuelta a AVAILABLE, entradas de reverso en el libro,
// snapshot de entrega recalculado y el documento eliminado. La retención
// consumida no se recrea.
func TestDelete_ReversoCompleto(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	reservas := stock.NewReservationUseCase(h.runner, h.engine, h.log)
	require.NoError(t, reservas.Reserve(ctx, orderID, managerID))

	doc, err := h.challan.Create(ctx, companyID, managerID, challanRequest())
	require.NoError(t, err)

	require.NoError(t, h.challan.Delete(ctx, managerID, doc.ID))

	// Físico restaurado; la retención consumida se queda consumida.
	sPanel := h.stockOf(t, panel.ID)
	assert.True(t, sPanel.QuantityOnHand.Equal(decimal.NewFromInt(3)))
	assert.True(t, sPanel.QuantityReserved.Equal(decimal.NewFromInt(1)))
	assert.True(t, sPanel.QuantityAvailable.Equal(decimal.NewFromInt(2)))

	// Seriales de vuelta en bodega.
	for _, sn := range []string{"SN-1", "SN-2"} {
		unit, err := h.store.ReadRepos().Serials.GetBySerial(ctx, sn, panel.ID, warehouseID)
		require.NoError(t, err)
		require.NotNil(t, unit)
		assert.Equal(t, entity.SerialAvailable, unit.Status)
		assert.Empty(t, unit.OutboundRef)
	}

	// Entradas de reverso con su propio tipo de transacción.
	reversals, err := h.store.ReadRepos().Ledger.ListByTransaction(ctx, entity.TxnChallanReversal, doc.ID)
	require.NoError(t, err)
	require.Len(t, reversals, 3)
	for _, e := range reversals {
		assert.Equal(t, entity.MovementIn, e.MovementType)
	}

	// El documento ya no existe y la entrega vuelve a PENDING.
	_, err = h.challan.Get(ctx, doc.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	order := h.orderOf(t, orderID)
	assert.Equal(t, entity.DeliveryPending, order.DeliveryStatus)
	assert.True(t, order.Lines[0].ShippedQuantity.IsZero())
}

// TestDelete_ClaseIncorrectaFalla verifica que una remisión no puede borrarse
// por el flujo de despachos B2B.
func TestDelete_ClaseIncorrectaFalla(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	doc, err := h.challan.Create(ctx, companyID, managerID, challanRequest())
	require.NoError(t, err)

	err = h.shipment.Delete(ctx, managerID, doc.ID)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// ─────────────────────────────────────────────────────────────────────────────
// Consultas
// ─────────────────────────────────────────────────────────────────────────────

// TestListByOrder_FiltraPorClase verifica que cada flujo lista solo sus
// documentos aunque la orden tuviera de ambas clases.
func TestListByOrder_FiltraPorClase(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.challan.Create(ctx, companyID, managerID, challanRequest())
	require.NoError(t, err)

	docs, err := h.challan.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	none, err := h.shipment.ListByOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestGet_ClaseIncorrectaEsNotFound verifica que un documento de otra clase se
// comporta como inexistente para el flujo equivocado.
func TestGet_ClaseIncorrectaEsNotFound(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	doc, err := h.challan.Create(ctx, companyID, managerID, challanRequest())
	require.NoError(t, err)

	_, err = h.shipment.Get(ctx, doc.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
