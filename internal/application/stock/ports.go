package stock

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el Set
// de repositorios atado a esa tx. Garantiza que cada flujo sea todo-o-nada:
// cualquier error revierte encabezados, contadores, stock, seriales y libro
// juntos, sin lógica compensatoria.
type TxRunner interface {
	Run(ctx context.Context, fn func(r *repository.Set) error) error
}
