package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipo de ajuste de inventario. El tipo implica la dirección del movimiento;
// AUDIT exige dirección explícita por línea.
type AdjustmentType string

const (
	AdjustmentFound  AdjustmentType = "FOUND"  // hallazgo físico => IN
	AdjustmentDamage AdjustmentType = "DAMAGE" // daño => OUT
	AdjustmentLoss   AdjustmentType = "LOSS"   // pérdida => OUT
	AdjustmentAudit  AdjustmentType = "AUDIT"  // auditoría, dirección por línea
)

// Estado de un ajuste. Solo DRAFT es mutable; POSTED es terminal.
type AdjustmentStatus string

const (
	AdjustmentStatusDraft    AdjustmentStatus = "DRAFT"
	AdjustmentStatusApproved AdjustmentStatus = "APPROVED"
	AdjustmentStatusPosted   AdjustmentStatus = "POSTED"
)

// StockAdjustment es un ajuste de inventario con encabezado, líneas y
// vínculos a seriales. DRAFT -> APPROVED (solo estado) -> POSTED (mueve stock).
type StockAdjustment struct {
	ID               string
	CompanyID        string
	WarehouseID      string
	AdjustmentNumber string
	Type             AdjustmentType
	Status           AdjustmentStatus
	Reason           string
	Lines            []AdjustmentLine
	ApprovedBy       string
	ApprovedAt       *time.Time
	PostedBy         string
	PostedAt         *time.Time
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AdjustmentLine es una línea de ajuste; las serializadas declaran exactamente
// Quantity seriales. Las líneas IN (hallazgo) registran sus seriales al crear
// el ajuste, no al contabilizarlo.
type AdjustmentLine struct {
	ID            string
	AdjustmentID  string
	ProductID     string
	Direction     MovementType
	TrackingType  TrackingType
	Quantity      decimal.Decimal
	SerialNumbers []string
}

// DirectionFor devuelve la dirección implicada por el tipo de ajuste.
// Para AUDIT no hay dirección implícita y el segundo valor es false.
func DirectionFor(t AdjustmentType) (MovementType, bool) {
	switch t {
	case AdjustmentFound:
		return MovementIn, true
	case AdjustmentDamage, AdjustmentLoss:
		return MovementOut, true
	default:
		return "", false
	}
}
