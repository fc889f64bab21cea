package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SesionCaja is a till's open-to-close operating period as reported by the
// backend. FechaCierre == nil means the register is currently open.
type SesionCaja struct {
	ID            int64            `json:"id_caja"`
	FechaApertura time.Time        `json:"fecha_apertura"`
	MontoInicial  decimal.Decimal  `json:"monto_inicial"`
	FechaCierre   *time.Time       `json:"fecha_cierre"`
	MontoFinal    *decimal.Decimal `json:"monto_final"`
	// TotalVentas is accumulated server-side as sales are recorded.
	TotalVentas decimal.Decimal `json:"total_ventas"`
}

func (s *SesionCaja) Abierta() bool {
	return s != nil && s.FechaCierre == nil
}
