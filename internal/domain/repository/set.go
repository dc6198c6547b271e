package repository

// Set agrupa todos los repositorios atados a una misma transacción (o al pool,
// para lecturas sueltas). Los casos de uso reciben el Set de forma explícita:
// nunca se resuelve desde estado implícito de la petición.
type Set struct {
	Stocks         StockRepository
	Serials        SerialUnitRepository
	Ledger         LedgerRepository
	Products       ProductRepository
	Warehouses     WarehouseRepository
	PurchaseOrders PurchaseOrderRepository
	Receipts       PurchaseReceiptRepository
	Orders         SalesOrderRepository
	Outbounds      OutboundRepository
	Adjustments    AdjustmentRepository
	Transfers      TransferRepository
	Reservations   ReservationRepository
}
