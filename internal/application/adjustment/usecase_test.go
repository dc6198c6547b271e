package adjustment_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/adjustment"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
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

// newHarness siembra catálogo y bodega, y deja como base 2 paneles (SN-1,
// SN-2) y 10 de cable en stock.
func newHarness(t *testing.T) (*memory.Store, *adjustment.UseCase) {
	t.Helper()
	store := memory.New()
	store.SeedWarehouse(entity.Warehouse{ID: warehouseID, CompanyID: companyID, Name: "Bodega Central"})
	store.SeedProduct(panel)
	store.SeedProduct(cable)

	runner := memory.NewTxRunner(store)
	engine := stock.NewEngine()
	log := logger.New(logger.Config{Env: "development", Level: "error"})

	ctx := context.Background()
	opening := stock.NewOpeningBalanceUseCase(runner, engine, log)
	require.NoError(t, opening.Register(ctx, stock.OpeningBalanceInput{
		ProductID: panel.ID, WarehouseID: warehouseID,
		Quantity:      decimal.NewFromInt(2),
		SerialNumbers: []string{"SN-1", "SN-2"},
		UserID:        userID,
	}))
	require.NoError(t, opening.Register(ctx, stock.OpeningBalanceInput{
		ProductID: cable.ID, WarehouseID: warehouseID,
		Quantity: decimal.NewFromInt(10),
		UserID:   userID,
	}))

	return store, adjustment.NewUseCase(runner, engine, log)
}

func stockOf(t *testing.T, store *memory.Store, productID string) *entity.Stock {
	t.Helper()
	s, err := store.ReadRepos().Stocks.Get(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func serialOf(t *testing.T, store *memory.Store, sn string) *entity.SerialUnit {
	t.Helper()
	unit, err := store.ReadRepos().Serials.GetBySerial(context.Background(), sn, panel.ID, warehouseID)
	require.NoError(t, err)
	return unit
}

// ─────────────────────────────────────────────────────────────────────────────
// Create / Update
// ─────────────────────────────────────────────────────────────────────────────

// TestCreate_HallazgoRegistraSerialesEnBorrador verifica que un ajuste FOUND
// registra las unidades halladas al crear el borrador (la colisión de serial
// se detecta temprano) sin mover el físico todavía.
func TestCreate_HallazgoRegistraSerialesEnBorrador(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID:      warehouseID,
		AdjustmentNumber: "ADJ-0001",
		Type:             "FOUND",
		Reason:           "conteo físico",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: panel.ID, Quantity: decimal.NewFromInt(1), SerialNumbers: []string{"SN-F1"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.AdjustmentStatusDraft, adj.Status)
	assert.Equal(t, entity.MovementIn, adj.Lines[0].Direction, "FOUND implica IN")

	unit := serialOf(t, store, "SN-F1")
	require.NotNil(t, unit, "el serial hallado se registra al crear el borrador")
	assert.Equal(t, entity.SerialAvailable, unit.Status)

	s := stockOf(t, store, panel.ID)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(2)), "el borrador no mueve el físico")
}

// TestCreate_SerialHalladoDuplicadoFalla verifica la unicidad por tipo de
// producto ya en el borrador.
func TestCreate_SerialHalladoDuplicadoFalla(t *testing.T) {
	ctx := context.Background()
	_, uc := newHarness(t)

	_, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "FOUND", Reason: "conteo",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: panel.ID, Quantity: decimal.NewFromInt(1), SerialNumbers: []string{"SN-1"},
		}},
	})
	require.ErrorIs(t, err, domain.ErrSerialAlreadyExists)
}

// TestCreate_AuditSinDireccionFalla verifica que AUDIT exige dirección por línea.
func TestCreate_AuditSinDireccionFalla(t *testing.T) {
	ctx := context.Background()
	_, uc := newHarness(t)

	_, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "AUDIT", Reason: "auditoría",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: cable.ID, Quantity: decimal.NewFromInt(2),
		}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestCreate_TipoDesconocidoFalla cubre la lista blanca de tipos.
func TestCreate_TipoDesconocidoFalla(t *testing.T) {
	ctx := context.Background()
	_, uc := newHarness(t)

	_, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "ROBO", Reason: "x",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: cable.ID, Quantity: decimal.NewFromInt(1),
		}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestCreate_SalidaExcedeDisponibleFalla verifica que una línea de salida
// mayor al disponible se rechaza ya en el borrador, no recién al contabilizar.
func TestCreate_SalidaExcedeDisponibleFalla(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	_, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "LOSS", Reason: "extravío",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: cable.ID, Quantity: decimal.NewFromInt(50),
		}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	s := stockOf(t, store, cable.ID)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(10)))
}

// TestCreate_SalidaSinAgregadoFalla cubre el producto sin stock en la bodega:
// no hay agregado, así que ninguna salida es posible.
func TestCreate_SalidaSinAgregadoFalla(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)
	inversor := entity.Product{
		ID: "prod-inversor", CompanyID: companyID, SKU: "INV-5K",
		Name: "Inversor 5kW", ProductTypeID: "type-inversor",
		TrackingType: entity.TrackingLot,
	}
	store.SeedProduct(inversor)

	_, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "LOSS", Reason: "extravío",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: inversor.ID, Quantity: decimal.NewFromInt(1),
		}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// TestUpdate_TipoDesconocidoFalla verifica que la edición aplica la misma
// lista blanca de tipos que la creación.
func TestUpdate_TipoDesconocidoFalla(t *testing.T) {
	ctx := context.Background()
	_, uc := newHarness(t)

	adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "AUDIT", Reason: "auditoría",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: cable.ID, Quantity: decimal.NewFromInt(2), Direction: "OUT",
		}},
	})
	require.NoError(t, err)

	_, err = uc.Update(ctx, adj.ID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "MERMA", Reason: "x",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: cable.ID, Quantity: decimal.NewFromInt(2), Direction: "OUT",
		}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := uc.Get(ctx, adj.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AdjustmentAudit, got.Type, "el tipo inválido no debe persistirse")
}

// TestUpdate_ReescribeBorradorYDesregistraSeriales verifica que editar un
// borrador FOUND elimina las unidades registradas por la versión anterior y
// registra las nuevas.
func TestUpdate_ReescribeBorradorYDesregistraSeriales(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "FOUND", Reason: "conteo",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: panel.ID, Quantity: decimal.NewFromInt(1), SerialNumbers: []string{"SN-F1"},
		}},
	})
	require.NoError(t, err)

	_, err = uc.Update(ctx, adj.ID, userID, dto.CreateAdjustmentRequest{
		Type: "FOUND", Reason: "conteo corregido",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: panel.ID, Quantity: decimal.NewFromInt(1), SerialNumbers: []string{"SN-F2"},
		}},
	})
	require.NoError(t, err)

	assert.Nil(t, serialOf(t, store, "SN-F1"), "el serial del borrador anterior se elimina")
	assert.NotNil(t, serialOf(t, store, "SN-F2"))
}

// TestUpdate_NoDraftFalla verifica que solo DRAFT es editable.
func TestUpdate_NoDraftFalla(t *testing.T) {
	ctx := context.Background()
	_, uc := newHarness(t)

	adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "LOSS", Reason: "faltante",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: cable.ID, Quantity: decimal.NewFromInt(1),
		}},
	})
	require.NoError(t, err)
	_, err = uc.Approve(ctx, adj.ID, userID)
	require.NoError(t, err)

	_, err = uc.Update(ctx, adj.ID, userID, dto.CreateAdjustmentRequest{
		Reason: "cambio tardío",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: cable.ID, Quantity: decimal.NewFromInt(2),
		}},
	})
	require.ErrorIs(t, err, domain.ErrValidation)
}

// ─────────────────────────────────────────────────────────────────────────────
// Approve / Post
// ─────────────────────────────────────────────────────────────────────────────

// TestApprove_SoloEstampaEstado verifica que aprobar no mueve stock.
func TestApprove_SoloEstampaEstado(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "LOSS", Reason: "faltante",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: cable.ID, Quantity: decimal.NewFromInt(3),
		}},
	})
	require.NoError(t, err)

	adj, err = uc.Approve(ctx, adj.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, entity.AdjustmentStatusApproved, adj.Status)
	assert.Equal(t, userID, adj.ApprovedBy)
	require.NotNil(t, adj.ApprovedAt)

	s := stockOf(t, store, cable.ID)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(10)))
}

// TestPost_HallazgoIngresaStock verifica la contabilización de un FOUND: el
// físico sube y la línea escribe UNA entrada agregada sin serial.
func TestPost_HallazgoIngresaStock(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "FOUND", Reason: "conteo físico",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: panel.ID, Quantity: decimal.NewFromInt(1), SerialNumbers: []string{"SN-F1"},
		}},
	})
	require.NoError(t, err)
	_, err = uc.Approve(ctx, adj.ID, userID)
	require.NoError(t, err)

	adj, err = uc.Post(ctx, adj.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, entity.AdjustmentStatusPosted, adj.Status)
	require.NotNil(t, adj.PostedAt)

	s := stockOf(t, store, panel.ID)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(3)))

	entries, err := store.ReadRepos().Ledger.ListByTransaction(ctx, entity.TxnStockAdjustment, adj.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1, "una sola entrada agregada por línea, sea cual sea el seguimiento")
	assert.Equal(t, entity.MovementIn, entries[0].MovementType)
	assert.Nil(t, entries[0].SerialID)
	assert.Equal(t, "conteo físico", entries[0].Reason)
}

// TestPost_DanoBloqueaSeriales verifica la baja: el físico baja y el serial
// queda BLOCKED, estado terminal.
func TestPost_DanoBloqueaSeriales(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "DAMAGE", Reason: "vidrio roto",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: panel.ID, Quantity: decimal.NewFromInt(1), SerialNumbers: []string{"SN-1"},
		}},
	})
	require.NoError(t, err)
	_, err = uc.Approve(ctx, adj.ID, userID)
	require.NoError(t, err)
	_, err = uc.Post(ctx, adj.ID, userID)
	require.NoError(t, err)

	unit := serialOf(t, store, "SN-1")
	assert.Equal(t, entity.SerialBlocked, unit.Status)

	s := stockOf(t, store, panel.ID)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(1)))
}

// TestPost_RevalidaSerialesBajoBloqueo cubre la carrera entre dos borradores
// que dan de baja el mismo serial: el primero contabiliza, el segundo falla al
// re-validar y no deja efectos parciales.
func TestPost_RevalidaSerialesBajoBloqueo(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	mkDraft := func(num string) string {
		adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
			WarehouseID: warehouseID, AdjustmentNumber: num, Type: "DAMAGE", Reason: "golpe",
			Lines: []dto.AdjustmentLineRequest{{
				ProductID: panel.ID, Quantity: decimal.NewFromInt(1), SerialNumbers: []string{"SN-2"},
			}},
		})
		require.NoError(t, err)
		_, err = uc.Approve(ctx, adj.ID, userID)
		require.NoError(t, err)
		return adj.ID
	}
	first := mkDraft("ADJ-0001")
	second := mkDraft("ADJ-0002")

	_, err := uc.Post(ctx, first, userID)
	require.NoError(t, err)

	_, err = uc.Post(ctx, second, userID)
	require.ErrorIs(t, err, domain.ErrSerialNotAvailable)

	s := stockOf(t, store, panel.ID)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(1)), "solo la primera baja debe descontar")
}

// TestPost_SinAprobarFalla verifica la secuencia DRAFT -> APPROVED -> POSTED.
func TestPost_SinAprobarFalla(t *testing.T) {
	ctx := context.Background()
	_, uc := newHarness(t)

	adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "LOSS", Reason: "faltante",
		Lines: []dto.AdjustmentLineRequest{{
			ProductID: cable.ID, Quantity: decimal.NewFromInt(1),
		}},
	})
	require.NoError(t, err)

	_, err = uc.Post(ctx, adj.ID, userID)
	require.ErrorIs(t, err, domain.ErrValidation)
}

// TestPost_AuditPorDireccion verifica un AUDIT mixto: una línea IN y una OUT
// sobre el mismo producto de lote.
func TestPost_AuditPorDireccion(t *testing.T) {
	ctx := context.Background()
	store, uc := newHarness(t)

	adj, err := uc.Create(ctx, companyID, userID, dto.CreateAdjustmentRequest{
		WarehouseID: warehouseID, Type: "AUDIT", Reason: "cierre de mes",
		Lines: []dto.AdjustmentLineRequest{
			{ProductID: cable.ID, Direction: "IN", Quantity: decimal.NewFromInt(5)},
			{ProductID: cable.ID, Direction: "OUT", Quantity: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	_, err = uc.Approve(ctx, adj.ID, userID)
	require.NoError(t, err)
	_, err = uc.Post(ctx, adj.ID, userID)
	require.NoError(t, err)

	s := stockOf(t, store, cable.ID)
	assert.True(t, s.QuantityOnHand.Equal(decimal.NewFromInt(13)), "10 + 5 - 2")

	entries, err := store.ReadRepos().Ledger.ListByTransaction(ctx, entity.TxnStockAdjustment, adj.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.MovementIn, entries[0].MovementType)
	assert.Equal(t, entity.MovementOut, entries[1].MovementType)
}
