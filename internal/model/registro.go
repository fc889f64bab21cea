package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RegistroEnviado = "registrada"
	RegistroFallido = "fallida"
	// RegistroIncierto: the backend answered 2xx with an unusable body, so the
	// submission may have been recorded. A retry reuses the same key.
	RegistroIncierto = "incierta"
)

// VentaRegistro is the terminal-side journal entry for one sale submission.
// It keeps the locally computed total next to the total the backend echoed,
// so a till can be reconciled without trusting either side blindly.
// Estado: "registrada" | "fallida" | "incierta"
type VentaRegistro struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	TerminalID     string           `gorm:"type:varchar(64);index;not null"`
	IdempotencyKey string           `gorm:"type:varchar(64);index;not null"`
	CajaID         int64            `gorm:"not null"`
	VentaID        *int64           `gorm:"index"`
	ClienteID      *int64
	Items          int              `gorm:"not null"`
	TotalLocal     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	TotalServidor  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MontoRecibido  decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Cambio         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	// Discrepancia is true when the backend's total differs from TotalLocal.
	Discrepancia   bool    `gorm:"not null;default:false"`
	Estado         string  `gorm:"type:varchar(20);not null"`
	ComprobanteRef *string `gorm:"column:comprobante_ref"`
	Error          *string
	CreatedAt      time.Time
}

func (VentaRegistro) TableName() string { return "ventas_registro" }

func (r *VentaRegistro) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReembolsoRegistro journals one refund submission.
type ReembolsoRegistro struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TerminalID  string          `gorm:"type:varchar(64);index;not null"`
	VentaID     int64           `gorm:"index;not null"`
	ReembolsoID *int64
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Motivo      string          `gorm:"not null"`
	Items       int             `gorm:"not null"`
	Estado      string          `gorm:"type:varchar(20);not null"`
	Error       *string
	CreatedAt   time.Time
}

func (ReembolsoRegistro) TableName() string { return "reembolsos_registro" }

func (r *ReembolsoRegistro) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
