package service

import (
	"context"
	"fmt"
	"time"

	"tallerpos/internal/credential"
	"tallerpos/internal/dto"
	"tallerpos/internal/model"

	"github.com/rs/zerolog/log"
)

type CajaService interface {
	// Actual returns ErrSinCajaAbierta when the register is closed.
	Actual(ctx context.Context, cred credential.Credential) (*dto.CajaResponse, error)
	Abrir(ctx context.Context, cred credential.Credential, req dto.AbrirCajaRequest) (*dto.CajaResponse, error)
	Cerrar(ctx context.Context, cred credential.Credential, req dto.CerrarCajaRequest) (*dto.CajaResponse, error)
	Historial(ctx context.Context, cred credential.Credential, f dto.HistorialFilter) (*dto.HistorialResponse, error)
	// RequerirAbierta re-fetches the session from the backend; every sale and
	// refund goes through it right before gating.
	RequerirAbierta(ctx context.Context, cred credential.Credential) (*model.SesionCaja, error)
}

type cajaService struct {
	api           CajaAPI
	symbol        string
	historialDias int
	now           func() time.Time
}

func NewCajaService(api CajaAPI, symbol string, historialDias int) CajaService {
	if historialDias <= 0 {
		historialDias = 30
	}
	return &cajaService{api: api, symbol: symbol, historialDias: historialDias, now: time.Now}
}

func (s *cajaService) RequerirAbierta(ctx context.Context, cred credential.Credential) (*model.SesionCaja, error) {
	sesion, err := s.api.CajaActual(ctx, cred)
	if err != nil {
		return nil, err
	}
	if !sesion.Abierta() {
		return nil, ErrSinCajaAbierta
	}
	return sesion, nil
}

func (s *cajaService) Actual(ctx context.Context, cred credential.Credential) (*dto.CajaResponse, error) {
	sesion, err := s.RequerirAbierta(ctx, cred)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCajaResponse(sesion, s.symbol)
	return &resp, nil
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, cred credential.Credential, req dto.AbrirCajaRequest) (*dto.CajaResponse, error) {
	if !req.MontoInicial.IsPositive() {
		return nil, ErrMontoInvalido
	}
	existing, err := s.api.CajaActual(ctx, cred)
	if err != nil {
		return nil, err
	}
	if existing.Abierta() {
		return nil, ErrCajaYaAbierta
	}

	sesion, err := s.api.AbrirCaja(ctx, cred, req.MontoInicial)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		return nil, fmt.Errorf("abrir caja: el servidor no devolvio la sesion")
	}
	log.Info().
		Int64("id_caja", sesion.ID).
		Str("monto_inicial", req.MontoInicial.StringFixed(2)).
		Msg("caja abierta")

	resp := dto.NewCajaResponse(sesion, s.symbol)
	return &resp, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────

func (s *cajaService) Cerrar(ctx context.Context, cred credential.Credential, req dto.CerrarCajaRequest) (*dto.CajaResponse, error) {
	if !req.MontoFinal.IsPositive() {
		return nil, ErrMontoInvalido
	}
	sesion, err := s.RequerirAbierta(ctx, cred)
	if err != nil {
		return nil, err
	}

	cerrada, err := s.api.CerrarCaja(ctx, cred, sesion.ID, req.MontoFinal)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int64("id_caja", sesion.ID).
		Str("monto_final", req.MontoFinal.StringFixed(2)).
		Str("total_ventas", sesion.TotalVentas.StringFixed(2)).
		Msg("caja cerrada")

	if cerrada.FechaApertura.IsZero() {
		cerrada.FechaApertura = sesion.FechaApertura
		cerrada.MontoInicial = sesion.MontoInicial
		cerrada.TotalVentas = sesion.TotalVentas
	}
	resp := dto.NewCajaResponse(cerrada, s.symbol)
	return &resp, nil
}

// ── Historial ─────────────────────────────────────────────────────────────────
// Defaults to the last historialDias days ending today.

func (s *cajaService) Historial(ctx context.Context, cred credential.Credential, f dto.HistorialFilter) (*dto.HistorialResponse, error) {
	hasta := s.now()
	desde := hasta.AddDate(0, 0, -s.historialDias)

	if f.FechaInicio != "" {
		d, err := time.ParseInLocation("2006-01-02", f.FechaInicio, hasta.Location())
		if err != nil {
			return nil, fmt.Errorf("fecha_inicio: %w", err)
		}
		desde = d
	}
	if f.FechaFin != "" {
		d, err := time.ParseInLocation("2006-01-02", f.FechaFin, hasta.Location())
		if err != nil {
			return nil, fmt.Errorf("fecha_fin: %w", err)
		}
		hasta = d
	}
	if desde.After(hasta) {
		return nil, ErrRangoInvalido
	}

	cajas, err := s.api.HistorialCajas(ctx, cred, desde, hasta)
	if err != nil {
		return nil, err
	}
	resp := &dto.HistorialResponse{
		Desde: desde.Format("2006-01-02"),
		Hasta: hasta.Format("2006-01-02"),
		Cajas: make([]dto.CajaResponse, 0, len(cajas)),
		Total: len(cajas),
	}
	for i := range cajas {
		resp.Cajas = append(resp.Cajas, dto.NewCajaResponse(&cajas[i], s.symbol))
	}
	return resp, nil
}
