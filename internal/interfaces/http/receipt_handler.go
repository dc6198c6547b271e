package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/receipt"
)

// ReceiptHandler maneja las recepciones de compra (protegido).
type ReceiptHandler struct {
	uc *receipt.UseCase
}

// NewReceiptHandler construye el handler.
func NewReceiptHandler(uc *receipt.UseCase) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

// Create godoc
// @Summary      Crear recepción de compra en borrador
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "purchase_order_id, warehouse_id, lines"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *ReceiptHandler) Create(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	r, err := h.uc.Create(c.Context(), companyID, userID, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

// Approve godoc
// @Summary      Aprobar recepción (mueve stock, terminal)
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Recepción (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/approve [post]
func (h *ReceiptHandler) Approve(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	r, err := h.uc.Approve(c.Context(), c.Params("id"), userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(r)
}

// GetByID godoc
// @Summary      Recepción por id
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Recepción (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	r, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(r)
}
