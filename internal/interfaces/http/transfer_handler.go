package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/transfer"
)

// TransferHandler maneja los traslados entre bodegas (protegido).
type TransferHandler struct {
	uc *transfer.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear traslado entre bodegas en borrador
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "source_warehouse_id, destination_warehouse_id, lines"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	tr, err := h.uc.Create(c.Context(), companyID, userID, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tr)
}

// Update godoc
// @Summary      Reescribir un traslado en borrador
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "Traslado (UUID)"
// @Param        body  body  dto.CreateTransferRequest  true  "líneas nuevas completas"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [put]
func (h *TransferHandler) Update(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	tr, err := h.uc.Update(c.Context(), c.Params("id"), userID, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(tr)
}

// Approve godoc
// @Summary      Aprobar traslado (mueve stock origen -> destino, queda IN_TRANSIT)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	tr, err := h.uc.Approve(c.Context(), c.Params("id"), userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(tr)
}

// Receive godoc
// @Summary      Acusar recibo del traslado en destino
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	tr, err := h.uc.Receive(c.Context(), c.Params("id"), userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(tr)
}

// GetByID godoc
// @Summary      Traslado por id
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Traslado (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	tr, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(tr)
}
