package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/outbound"
)

// OutboundHandler maneja una clase de documento de salida (remisión o despacho
// B2B). Se instancia dos veces, una por política, sobre las mismas rutas base.
type OutboundHandler struct {
	uc *outbound.UseCase
}

// NewOutboundHandler construye el handler para una política.
func NewOutboundHandler(uc *outbound.UseCase) *OutboundHandler {
	return &OutboundHandler{uc: uc}
}

// Create godoc
// @Summary      Despachar un documento de salida contra una orden confirmada
// @Tags         outbound
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOutboundRequest  true  "order_id, document_number, lines"
// @Success      201   {object}  map[string]any
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/challans [post]
func (h *OutboundHandler) Create(c *fiber.Ctx) error {
	companyID, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateOutboundRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	doc, err := h.uc.Create(c.Context(), companyID, userID, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// Delete godoc
// @Summary      Eliminar un documento de salida (reverso completo de stock)
// @Tags         outbound
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Documento (UUID)"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/challans/{id} [delete]
func (h *OutboundHandler) Delete(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.Delete(c.Context(), userID, c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "documento revertido y eliminado"})
}

// GetByID godoc
// @Summary      Documento de salida por id
// @Tags         outbound
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Documento (UUID)"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/challans/{id} [get]
func (h *OutboundHandler) GetByID(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	doc, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(doc)
}

// ListByOrder godoc
// @Summary      Documentos de salida de una orden
// @Tags         outbound
// @Security     Bearer
// @Produce      json
// @Param        order_id  query  string  true  "Orden (UUID)"
// @Success      200  {array}  map[string]any
// @Router       /api/challans [get]
func (h *OutboundHandler) ListByOrder(c *fiber.Ctx) error {
	if _, _, ok := requireAuth(c); !ok {
		return unauthorized(c)
	}
	docs, err := h.uc.ListByOrder(c.Context(), c.Query("order_id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"total": len(docs), "documents": docs})
}
