package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Taxonomía: NotFound, Validation, Conflict e Invariant; los casos específicos
// (stock insuficiente, serial duplicado, bodega no autorizada) tienen sentinela
// propio para que los handlers HTTP puedan mapearlos con precisión.
var (
	ErrNotFound              = errors.New("recurso no encontrado")
	ErrValidation            = errors.New("entrada inválida")
	ErrConflict              = errors.New("conflicto con el estado actual")
	ErrDuplicate             = errors.New("recurso duplicado")
	ErrInsufficientStock     = errors.New("stock insuficiente")
	ErrSerialNotAvailable    = errors.New("serial no disponible")
	ErrSerialAlreadyExists   = errors.New("serial ya registrado")
	ErrUnauthorizedWarehouse = errors.New("usuario no es encargado de la bodega")

	// ErrInvariant señala una inconsistencia interna del libro de movimientos
	// (snapshot apertura/cierre que no cuadra con el agregado). Nunca debe
	// observarse en una implementación correcta; los tests lo afirman.
	ErrInvariant = errors.New("invariante del libro de movimientos violada")
)
