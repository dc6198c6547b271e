package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/adjustment"
	"github.com/jhoicas/Almacen-api/internal/application/outbound"
	"github.com/jhoicas/Almacen-api/internal/application/receipt"
	appstock "github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Queries        *appstock.QueryUseCase
	OpeningBalance *appstock.OpeningBalanceUseCase
	LowStock       *appstock.LowStockUseCase
	Reservations   *appstock.ReservationUseCase
	ReceiptUC      *receipt.UseCase
	ChallanUC      *outbound.UseCase
	ShipmentUC     *outbound.UseCase
	AdjustmentUC   *adjustment.UseCase
	TransferUC     *transfer.UseCase
	JWTSecret      string
}

// Router registra las rutas de la API. Todo el núcleo de inventario es
// protegido: requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Stock, libro y saldo inicial
	stockHandler := NewStockHandler(deps.Queries, deps.OpeningBalance, deps.LowStock)
	stockGroup := protected.Group("/stock")
	stockGroup.Get("/", stockHandler.GetStock)
	stockGroup.Post("/opening-balance", stockHandler.RegisterOpeningBalance)
	stockGroup.Get("/ledger", stockHandler.Ledger)
	stockGroup.Get("/ledger/transaction", stockHandler.LedgerByTransaction)
	stockGroup.Get("/serials/:serial", stockHandler.GetSerial)

	warehouses := protected.Group("/warehouses")
	warehouses.Get("/:id/stock", stockHandler.ListByWarehouse)
	warehouses.Get("/:id/low-stock", stockHandler.LowStock)

	// Recepciones de compra
	receipts := protected.Group("/receipts")
	receiptHandler := NewReceiptHandler(deps.ReceiptUC)
	receipts.Post("/", receiptHandler.Create)
	receipts.Get("/:id", receiptHandler.GetByID)
	receipts.Post("/:id/approve", receiptHandler.Approve)

	// Remisiones (órdenes internas)
	challans := protected.Group("/challans")
	challanHandler := NewOutboundHandler(deps.ChallanUC)
	challans.Post("/", challanHandler.Create)
	challans.Get("/", challanHandler.ListByOrder)
	challans.Get("/:id", challanHandler.GetByID)
	challans.Delete("/:id", challanHandler.Delete)

	// Despachos B2B
	shipments := protected.Group("/shipments")
	shipmentHandler := NewOutboundHandler(deps.ShipmentUC)
	shipments.Post("/", shipmentHandler.Create)
	shipments.Get("/", shipmentHandler.ListByOrder)
	shipments.Get("/:id", shipmentHandler.GetByID)
	shipments.Delete("/:id", shipmentHandler.Delete)

	// Ajustes de inventario
	adjustments := protected.Group("/adjustments")
	adjustmentHandler := NewAdjustmentHandler(deps.AdjustmentUC)
	adjustments.Post("/", adjustmentHandler.Create)
	adjustments.Get("/:id", adjustmentHandler.GetByID)
	adjustments.Put("/:id", adjustmentHandler.Update)
	adjustments.Post("/:id/approve", adjustmentHandler.Approve)
	adjustments.Post("/:id/post", adjustmentHandler.Post)

	// Traslados entre bodegas
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Put("/:id", transferHandler.Update)
	transfers.Post("/:id/approve", transferHandler.Approve)
	transfers.Post("/:id/receive", transferHandler.Receive)

	// Retenciones por orden
	orders := protected.Group("/orders")
	reservationHandler := NewReservationHandler(deps.Reservations)
	orders.Post("/:id/reserve", reservationHandler.Reserve)
	orders.Post("/:id/release", reservationHandler.Release)
}
