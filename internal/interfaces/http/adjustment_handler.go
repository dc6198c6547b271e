package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/adjustment"
	"github.com/jhoicas/Almacen-api/internal/application/dto"
)

// AdjustmentHandler maneja los ajustes de inventario (protegido).
type AdjustmentHandler struct {
	uc *adjustment.UseCase
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(uc *adjustment.UseCase) *AdjustmentHandler {
	return &AdjustmentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ajuste de inventario en borrador
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "warehouse_id, type, reason, lines"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	adj, err := h.uc.Create(c.Context(), companyID, userID, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(adj)
}

// Update godoc
// @Summary      Reescribir un ajuste en borrador
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "Ajuste (UUID)"
// @Param        body  body  dto.CreateAdjustmentRequest  true  "líneas nuevas completas"
// @Success      200   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id} [put]
func (h *AdjustmentHandler) Update(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	adj, err := h.uc.Update(c.Context(), c.Params("id"), userID, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(adj)
}

// Approve godoc
// @Summary      Aprobar ajuste (solo estado)
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Ajuste (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id}/approve [post]
func (h *AdjustmentHandler) Approve(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	adj, err := h.uc.Approve(c.Context(), c.Params("id"), userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(adj)
}

// Post godoc
// @Summary      Contabilizar ajuste (mueve stock, terminal)
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Ajuste (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id}/post [post]
func (h *AdjustmentHandler) Post(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	adj, err := h.uc.Post(c.Context(), c.Params("id"), userID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(adj)
}

// GetByID godoc
// @Summary      Ajuste por id
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Ajuste (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/adjustments/{id} [get]
func (h *AdjustmentHandler) GetByID(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	adj, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(adj)
}
