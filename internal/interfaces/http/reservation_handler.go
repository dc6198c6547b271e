package http

import (
	"github.com/gofiber/fiber/v2"

	appstock "github.com/jhoicas/Almacen-api/internal/application/stock"
)

// ReservationHandler maneja las retenciones de stock por orden (protegido).
// Reservar corre al confirmar la orden; liberar, al cancelarla.
type ReservationHandler struct {
	uc *appstock.ReservationUseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(uc *appstock.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{uc: uc}
}

// Reserve godoc
// @Summary      Retener stock planificado de una orden confirmada
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Orden (UUID)"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/reserve [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.Reserve(c.Context(), c.Params("id"), userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "stock retenido para la orden"})
}

// Release godoc
// @Summary      Liberar las retenciones vigentes de una orden
// @Tags         reservations
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Orden (UUID)"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	_, userID, ok := requireAuth(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.Release(c.Context(), c.Params("id"), userID); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "retenciones liberadas"})
}
