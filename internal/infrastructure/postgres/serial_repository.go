package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.SerialUnitRepository = (*SerialRepo)(nil)

const serialColumns = `id, serial_number, product_id, product_type_id, warehouse_id, stock_id,
		status, inward_at, outward_at, outbound_ref, created_at, updated_at`

// SerialRepo implementación de SerialUnitRepository sobre PostgreSQL (usable con pool o tx).
type SerialRepo struct {
	q Querier
}

// NewSerialRepository construye el adaptador de seriales. Pasar pool o tx (Querier).
func NewSerialRepository(q Querier) *SerialRepo {
	return &SerialRepo{q: q}
}

// GetBySerial resuelve por número de serial en (producto, bodega); nil si no existe.
func (r *SerialRepo) GetBySerial(ctx context.Context, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error) {
	query := `SELECT ` + serialColumns + `
		FROM serial_units WHERE serial_number = $1 AND product_id = $2 AND warehouse_id = $3`
	return r.scanOne(ctx, query, serialNumber, productID, warehouseID)
}

// GetBySerialForUpdate resuelve y bloquea la fila de la unidad, o nil.
func (r *SerialRepo) GetBySerialForUpdate(ctx context.Context, serialNumber, productID, warehouseID string) (*entity.SerialUnit, error) {
	query := `SELECT ` + serialColumns + `
		FROM serial_units WHERE serial_number = $1 AND product_id = $2 AND warehouse_id = $3
		FOR UPDATE`
	return r.scanOne(ctx, query, serialNumber, productID, warehouseID)
}

// GetByID obtiene una unidad por id interno, o nil.
func (r *SerialRepo) GetByID(ctx context.Context, id string) (*entity.SerialUnit, error) {
	query := `SELECT ` + serialColumns + ` FROM serial_units WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByIDForUpdate obtiene y bloquea la unidad por id interno, o nil.
func (r *SerialRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.SerialUnit, error) {
	query := `SELECT ` + serialColumns + ` FROM serial_units WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *SerialRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.SerialUnit, error) {
	var u entity.SerialUnit
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.SerialNumber, &u.ProductID, &u.ProductTypeID, &u.WarehouseID, &u.StockID,
		&u.Status, &u.InwardAt, &u.OutwardAt, &u.OutboundRef, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get serial unit: %w", err)
	}
	return &u, nil
}

// ExistsInProductType verifica la unicidad compuesta (serial, tipo de producto).
func (r *SerialRepo) ExistsInProductType(ctx context.Context, serialNumber, productTypeID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM serial_units WHERE serial_number = $1 AND product_type_id = $2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, serialNumber, productTypeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists serial in product type: %w", err)
	}
	return exists, nil
}

// Create inserta la unidad. La constraint única (serial_number, product_type_id)
// convierte la colisión en domain.ErrSerialAlreadyExists.
func (r *SerialRepo) Create(ctx context.Context, u *entity.SerialUnit) error {
	query := `
		INSERT INTO serial_units (` + serialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.SerialNumber, u.ProductID, u.ProductTypeID, u.WarehouseID, u.StockID,
		u.Status, u.InwardAt, u.OutwardAt, u.OutboundRef, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: serial %s", domain.ErrSerialAlreadyExists, u.SerialNumber)
		}
		return fmt.Errorf("create serial unit: %w", err)
	}
	return nil
}

// Save persiste estado, domicilio y marcas de la unidad ya bloqueada.
func (r *SerialRepo) Save(ctx context.Context, u *entity.SerialUnit) error {
	query := `
		UPDATE serial_units SET warehouse_id = $2, stock_id = $3, status = $4,
			outward_at = $5, outbound_ref = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.WarehouseID, u.StockID, u.Status, u.OutwardAt, u.OutboundRef, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save serial unit: %w", err)
	}
	return nil
}

// Delete elimina una unidad aún AVAILABLE (solo ajustes IN en DRAFT).
func (r *SerialRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM serial_units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete serial unit: %w", err)
	}
	return nil
}
