package dto

import (
	"time"

	"tallerpos/internal/model"
	"tallerpos/internal/money"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// Amounts are checked by the service (> 0) so the terminal gets a domain
// message instead of a validator tag.
type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial"`
}

type CerrarCajaRequest struct {
	MontoFinal decimal.Decimal `json:"monto_final"`
}

// HistorialFilter is bound from the query string; dates are YYYY-MM-DD.
type HistorialFilter struct {
	FechaInicio string `form:"fecha_inicio" validate:"omitempty,datetime=2006-01-02"`
	FechaFin    string `form:"fecha_fin"    validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CajaResponse struct {
	IDCaja           int64            `json:"id_caja"`
	Abierta          bool             `json:"abierta"`
	FechaApertura    time.Time        `json:"fecha_apertura"`
	FechaCierre      *time.Time       `json:"fecha_cierre"`
	MontoInicial     decimal.Decimal  `json:"monto_inicial"`
	MontoFinal       *decimal.Decimal `json:"monto_final"`
	TotalVentas      decimal.Decimal  `json:"total_ventas"`
	MontoInicialText string           `json:"monto_inicial_texto"`
	TotalVentasText  string           `json:"total_ventas_texto"`
}

func NewCajaResponse(s *model.SesionCaja, symbol string) CajaResponse {
	return CajaResponse{
		IDCaja:           s.ID,
		Abierta:          s.Abierta(),
		FechaApertura:    s.FechaApertura,
		FechaCierre:      s.FechaCierre,
		MontoInicial:     s.MontoInicial,
		MontoFinal:       s.MontoFinal,
		TotalVentas:      s.TotalVentas,
		MontoInicialText: money.Format(symbol, s.MontoInicial),
		TotalVentasText:  money.Format(symbol, s.TotalVentas),
	}
}

type HistorialResponse struct {
	Desde string         `json:"fecha_inicio"`
	Hasta string         `json:"fecha_fin"`
	Cajas []CajaResponse `json:"cajas"`
	Total int            `json:"total"`
}
