package repository

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ProductRepository es el puerto estrecho hacia el catálogo de productos
// (colaborador externo): el núcleo de inventario solo necesita leer.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
