package service

import (
	"context"
	"errors"
	"strings"

	"tallerpos/internal/backend"
	"tallerpos/internal/credential"
	"tallerpos/internal/dto"
	"tallerpos/internal/model"
	"tallerpos/internal/pos"
	"tallerpos/internal/repository"

	"github.com/rs/zerolog/log"
)

// ReembolsoService walks a terminal through a refund: pick a sale of the open
// session, stage quantities per line, then submit with a motive.
type ReembolsoService interface {
	VentasReembolsables(ctx context.Context, cred credential.Credential) ([]dto.VentaReembolsableResponse, error)
	Seleccionar(ctx context.Context, cred credential.Credential, terminalID string, ventaID int64) (*dto.ReembolsoBorradorResponse, error)
	Obtener(ctx context.Context, terminalID string) (*dto.ReembolsoBorradorResponse, error)
	Preparar(ctx context.Context, terminalID string, detalleID int64, cantidad int) (*dto.ReembolsoBorradorResponse, error)
	Descartar(ctx context.Context, terminalID string) (*dto.ReembolsoBorradorResponse, error)
	Registrar(ctx context.Context, cred credential.Credential, terminalID string, req dto.RegistrarReembolsoRequest) (*dto.ReembolsoResponse, error)
	Recientes(ctx context.Context, terminalID string, limit int) ([]dto.ReembolsoRegistroResponse, error)
}

type reembolsoService struct {
	ventas  VentasAPI
	api     ReembolsosAPI
	cajas   CajaService
	store   repository.TerminalStore
	journal repository.JournalRepository
	locks   *TerminalLocks
	symbol  string
}

func NewReembolsoService(
	ventas VentasAPI,
	api ReembolsosAPI,
	cajas CajaService,
	store repository.TerminalStore,
	journal repository.JournalRepository,
	locks *TerminalLocks,
	symbol string,
) ReembolsoService {
	return &reembolsoService{
		ventas:  ventas,
		api:     api,
		cajas:   cajas,
		store:   store,
		journal: journal,
		locks:   locks,
		symbol:  symbol,
	}
}

func (s *reembolsoService) respond(b *pos.BorradorReembolso) *dto.ReembolsoBorradorResponse {
	resp := dto.NewReembolsoBorradorResponse(b, s.symbol)
	return &resp
}

// ── Selección ─────────────────────────────────────────────────────────────────

// VentasReembolsables lists the open session's sales that still have something
// to refund. Voided sales and sales made only of services are left out; a sale
// listed without its lines is kept and decided on selection.
func (s *reembolsoService) VentasReembolsables(ctx context.Context, cred credential.Credential) ([]dto.VentaReembolsableResponse, error) {
	sesion, err := s.cajas.RequerirAbierta(ctx, cred)
	if err != nil {
		return nil, err
	}
	ventas, err := s.ventas.VentasPorCaja(ctx, cred, sesion.ID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.VentaReembolsableResponse, 0, len(ventas))
	for _, v := range ventas {
		if !v.Activa {
			continue
		}
		if len(v.Detalles) > 0 && pos.NuevoBorrador(v).Estado() == pos.NadaQueReembolsar {
			continue
		}
		out = append(out, dto.NewVentaReembolsableResponse(v, s.symbol))
	}
	return out, nil
}

func (s *reembolsoService) Seleccionar(ctx context.Context, cred credential.Credential, terminalID string, ventaID int64) (*dto.ReembolsoBorradorResponse, error) {
	unlock := s.locks.Lock(terminalID)
	defer unlock()

	sesion, err := s.cajas.RequerirAbierta(ctx, cred)
	if err != nil {
		return nil, err
	}
	venta, err := s.ventas.ObtenerVenta(ctx, cred, ventaID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrVentaNoEncontrada
	}
	if err != nil {
		return nil, err
	}
	if venta.CajaID != 0 && venta.CajaID != sesion.ID {
		return nil, ErrVentaFueraDeCaja
	}

	b := pos.NuevoBorrador(venta)
	if err := s.store.SaveBorrador(ctx, terminalID, b); err != nil {
		return nil, err
	}
	log.Debug().
		Str("terminal", terminalID).
		Int64("id_venta", venta.ID).
		Str("estado", string(b.Estado())).
		Msg("venta seleccionada para reembolso")
	return s.respond(b), nil
}

func (s *reembolsoService) Obtener(ctx context.Context, terminalID string) (*dto.ReembolsoBorradorResponse, error) {
	b, err := s.store.LoadBorrador(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	return s.respond(b), nil
}

// ── Preparación ───────────────────────────────────────────────────────────────

func (s *reembolsoService) Preparar(ctx context.Context, terminalID string, detalleID int64, cantidad int) (*dto.ReembolsoBorradorResponse, error) {
	unlock := s.locks.Lock(terminalID)
	defer unlock()

	b, err := s.store.LoadBorrador(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrSinSeleccion
	}
	if _, err := b.Preparar(detalleID, cantidad); err != nil {
		return nil, err
	}
	if err := s.store.SaveBorrador(ctx, terminalID, b); err != nil {
		return nil, err
	}
	return s.respond(b), nil
}

func (s *reembolsoService) Descartar(ctx context.Context, terminalID string) (*dto.ReembolsoBorradorResponse, error) {
	unlock := s.locks.Lock(terminalID)
	defer unlock()

	if err := s.store.DeleteBorrador(ctx, terminalID); err != nil {
		return nil, err
	}
	return s.respond(nil), nil
}

// ── Registrar ─────────────────────────────────────────────────────────────────

// Registrar checks the motive, then the staged total, then the open session,
// and only then calls the backend. On failure the staging is kept.
func (s *reembolsoService) Registrar(ctx context.Context, cred credential.Credential, terminalID string, req dto.RegistrarReembolsoRequest) (*dto.ReembolsoResponse, error) {
	unlock := s.locks.Lock(terminalID)
	defer unlock()

	b, err := s.store.LoadBorrador(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	if err := b.Validar(req.Motivo); err != nil {
		log.Debug().Err(err).Str("terminal", terminalID).Msg("reembolso rechazado")
		return nil, err
	}
	if _, err := s.cajas.RequerirAbierta(ctx, cred); err != nil {
		return nil, err
	}

	nr := b.Solicitud(req.Motivo)
	r, err := s.api.CrearReembolso(ctx, cred, nr)
	if err != nil {
		log.Warn().Err(err).
			Str("terminal", terminalID).
			Int64("id_venta", nr.VentaID).
			Msg("reembolso no registrado; seleccion conservada")
		s.journalReembolso(ctx, &model.ReembolsoRegistro{
			TerminalID: terminalID,
			VentaID:    nr.VentaID,
			Monto:      nr.Monto,
			Motivo:     nr.Motivo,
			Items:      len(nr.Items),
			Estado:     model.RegistroFallido,
			Error:      errText(err),
		})
		return nil, err
	}

	if r.VentaID == 0 {
		r.VentaID = nr.VentaID
	}
	if r.Monto.IsZero() {
		r.Monto = nr.Monto
	}
	if strings.TrimSpace(r.Motivo) == "" {
		r.Motivo = nr.Motivo
	}
	if len(r.Items) == 0 {
		r.Items = nr.Items
	}

	reg := &model.ReembolsoRegistro{
		TerminalID: terminalID,
		VentaID:    nr.VentaID,
		Monto:      nr.Monto,
		Motivo:     nr.Motivo,
		Items:      len(nr.Items),
		Estado:     model.RegistroEnviado,
	}
	if r.ID > 0 {
		id := r.ID
		reg.ReembolsoID = &id
	}
	s.journalReembolso(ctx, reg)

	if err := s.store.DeleteBorrador(ctx, terminalID); err != nil {
		log.Error().Err(err).Str("terminal", terminalID).Int64("id_reembolso", r.ID).Msg("no se pudo limpiar la seleccion")
	}
	log.Info().
		Str("terminal", terminalID).
		Int64("id_venta", nr.VentaID).
		Int64("id_reembolso", r.ID).
		Str("monto", nr.Monto.StringFixed(2)).
		Msg("reembolso registrado")

	resp := dto.NewReembolsoResponse(r, s.symbol)
	return &resp, nil
}

func (s *reembolsoService) Recientes(ctx context.Context, terminalID string, limit int) ([]dto.ReembolsoRegistroResponse, error) {
	regs, err := s.journal.ListReembolsos(ctx, terminalID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReembolsoRegistroResponse, 0, len(regs))
	for _, r := range regs {
		out = append(out, dto.NewReembolsoRegistroResponse(r, s.symbol))
	}
	return out, nil
}

func (s *reembolsoService) journalReembolso(ctx context.Context, r *model.ReembolsoRegistro) {
	if err := s.journal.CreateReembolso(ctx, r); err != nil {
		log.Error().Err(err).Str("terminal", r.TerminalID).Msg("journal: no se pudo registrar el reembolso")
	}
}
