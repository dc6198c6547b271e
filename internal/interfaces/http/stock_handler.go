package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	appstock "github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// StockHandler maneja las consultas de stock y libro, el saldo inicial y el
// reporte de bajo mínimo (protegido).
type StockHandler struct {
	queries *appstock.QueryUseCase
	opening *appstock.OpeningBalanceUseCase
	lowUC   *appstock.LowStockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *appstock.QueryUseCase, opening *appstock.OpeningBalanceUseCase, lowUC *appstock.LowStockUseCase) *StockHandler {
	return &StockHandler{queries: queries, opening: opening, lowUC: lowUC}
}

// RegisterOpeningBalance godoc
// @Summary      Registrar saldo inicial de un producto en una bodega
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpeningBalanceRequest  true  "product_id, warehouse_id, quantity, rate, serial_numbers (si aplica)"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/opening-balance [post]
func (h *StockHandler) RegisterOpeningBalance(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.OpeningBalanceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	err := h.opening.Register(c.Context(), appstock.OpeningBalanceInput{
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		Quantity:      in.Quantity,
		Rate:          in.Rate,
		SerialNumbers: in.SerialNumbers,
		UserID:        userID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "saldo inicial registrado"})
}

// GetStock godoc
// @Summary      Stock de un producto en una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true  "Producto (UUID)"
// @Param        warehouse_id  query  string  true  "Bodega (UUID)"
// @Success      200  {object}  dto.StockDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	s, err := h.queries.GetStock(c.Context(), c.Query("product_id"), c.Query("warehouse_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(s)
}

// ListByWarehouse godoc
// @Summary      Stock de una bodega, paginado
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "Bodega (UUID)"
// @Param        limit   query  int     false  "Tamaño de página"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.StockDTO
// @Router       /api/warehouses/{id}/stock [get]
func (h *StockHandler) ListByWarehouse(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	list, err := h.queries.ListByWarehouse(c.Context(), c.Params("id"), page)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "stocks": list})
}

// LowStock godoc
// @Summary      Productos en o por debajo de su stock mínimo en la bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Bodega (UUID)"
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/warehouses/{id}/low-stock [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	items, err := h.lowUC.List(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// Ledger godoc
// @Summary      Libro de movimientos de un producto en una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true   "Producto (UUID)"
// @Param        warehouse_id  query  string  true   "Bodega (UUID)"
// @Param        limit         query  int     false  "Tamaño de página"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.LedgerEntryDTO
// @Router       /api/stock/ledger [get]
func (h *StockHandler) Ledger(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	entries, err := h.queries.Ledger(c.Context(), c.Query("product_id"), c.Query("warehouse_id"), page)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(entries), "entries": entries})
}

// LedgerByTransaction godoc
// @Summary      Entradas del libro de un documento
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        type  query  string  true  "Tipo de transacción (PURCHASE_RECEIPT, DELIVERY_CHALLAN, ...)"
// @Param        id    query  string  true  "Id del documento"
// @Success      200  {array}  dto.LedgerEntryDTO
// @Router       /api/stock/ledger/transaction [get]
func (h *StockHandler) LedgerByTransaction(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	entries, err := h.queries.LedgerByTransaction(c.Context(),
		entity.TransactionType(c.Query("type")), c.Query("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(entries), "entries": entries})
}

// GetSerial godoc
// @Summary      Estado de una unidad serializada
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        serial        path   string  true  "Número de serial"
// @Param        product_id    query  string  true  "Producto (UUID)"
// @Param        warehouse_id  query  string  true  "Bodega (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/serials/{serial} [get]
func (h *StockHandler) GetSerial(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	unit, err := h.queries.GetSerial(c.Context(), c.Params("serial"),
		c.Query("product_id"), c.Query("warehouse_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(unit)
}
