package service

import (
	"context"
	"errors"
	"fmt"

	"tallerpos/internal/backend"
	"tallerpos/internal/credential"
	"tallerpos/internal/dto"
	"tallerpos/internal/model"
	"tallerpos/internal/money"
	"tallerpos/internal/pos"
	"tallerpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type VentaService interface {
	// Validar runs the sale gating against a freshly fetched session and
	// previews the change. Nothing is submitted.
	Validar(ctx context.Context, cred credential.Credential, terminalID string, req dto.CobrarRequest) (*dto.ValidacionVentaResponse, error)
	// Registrar submits the terminal's cart as a sale and clears it on success.
	// On failure the cart and its idempotency key are kept for a retry.
	Registrar(ctx context.Context, cred credential.Credential, terminalID string, req dto.CobrarRequest) (*dto.VentaResponse, error)
	Recientes(ctx context.Context, terminalID string, limit int) ([]dto.VentaRegistroResponse, error)
	Comprobante(ctx context.Context, cred credential.Credential, ventaID int64) (*backend.Document, error)
}

type ventaService struct {
	api     VentasAPI
	cajas   CajaService
	store   repository.TerminalStore
	journal repository.JournalRepository
	locks   *TerminalLocks
	symbol  string
	newKey  func() string
}

func NewVentaService(
	api VentasAPI,
	cajas CajaService,
	store repository.TerminalStore,
	journal repository.JournalRepository,
	locks *TerminalLocks,
	symbol string,
) VentaService {
	return &ventaService{
		api:     api,
		cajas:   cajas,
		store:   store,
		journal: journal,
		locks:   locks,
		symbol:  symbol,
		newKey:  uuid.NewString,
	}
}

// ValidarVenta checks, in order, that a session is open, the cart has lines
// and the tendered amount covers the total. A nil recibido is insufficient.
func ValidarVenta(c *pos.Carrito, sesion *model.SesionCaja, recibido *decimal.Decimal) error {
	if !sesion.Abierta() {
		return ErrSinCajaAbierta
	}
	if c == nil || c.Vacio() {
		return ErrCarritoVacio
	}
	if recibido == nil || recibido.LessThan(c.Total()) {
		return ErrPagoInsuficiente
	}
	return nil
}

// Cambio is recibido - total. ok is false when there is nothing to show:
// no amount tendered yet, or less than the total.
func Cambio(total decimal.Decimal, recibido *decimal.Decimal) (decimal.Decimal, bool) {
	if recibido == nil {
		return decimal.Zero, false
	}
	cambio := recibido.Sub(total)
	if cambio.IsNegative() {
		return decimal.Zero, false
	}
	return cambio, true
}

func ComprobanteURL(ventaID int64) string {
	return fmt.Sprintf("/v1/ventas/%d/comprobante", ventaID)
}

// ── Validar ───────────────────────────────────────────────────────────────────

func (s *ventaService) Validar(ctx context.Context, cred credential.Credential, terminalID string, req dto.CobrarRequest) (*dto.ValidacionVentaResponse, error) {
	c, err := s.store.LoadCarrito(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	sesion, err := s.cajas.RequerirAbierta(ctx, cred)
	if err != nil && !errors.Is(err, ErrSinCajaAbierta) {
		return nil, err
	}
	if err := ValidarVenta(c, sesion, req.MontoRecibido); err != nil {
		return nil, err
	}

	total := c.Total()
	resp := &dto.ValidacionVentaResponse{
		Total:         total,
		MontoRecibido: *req.MontoRecibido,
		TotalText:     money.Format(s.symbol, total),
	}
	if cambio, ok := Cambio(total, req.MontoRecibido); ok {
		resp.Cambio = &cambio
		resp.CambioText = money.Format(s.symbol, cambio)
	}
	return resp, nil
}

// ── Registrar ─────────────────────────────────────────────────────────────────

func (s *ventaService) Registrar(ctx context.Context, cred credential.Credential, terminalID string, req dto.CobrarRequest) (*dto.VentaResponse, error) {
	unlock := s.locks.Lock(terminalID)
	defer unlock()

	c, err := s.store.LoadCarrito(ctx, terminalID)
	if err != nil {
		return nil, err
	}
	sesion, err := s.cajas.RequerirAbierta(ctx, cred)
	if err != nil && !errors.Is(err, ErrSinCajaAbierta) {
		return nil, err
	}
	if err := ValidarVenta(c, sesion, req.MontoRecibido); err != nil {
		log.Debug().Err(err).Str("terminal", terminalID).Msg("venta rechazada")
		return nil, err
	}
	recibido := *req.MontoRecibido

	// The key is persisted before the POST so a retry after a crash or a
	// timeout reuses it.
	key := c.ClavePendiente()
	if key == "" {
		key = s.newKey()
		c.FijarClavePendiente(key)
		if err := s.store.SaveCarrito(ctx, terminalID, c); err != nil {
			return nil, err
		}
	}

	nv := nuevaVenta(c, sesion.ID, recibido)
	venta, err := s.api.CrearVenta(ctx, cred, key, nv)
	if err != nil {
		estado := model.RegistroFallido
		if errors.Is(err, backend.ErrInvalidResponse) {
			estado = model.RegistroIncierto
			log.Error().Err(err).
				Str("terminal", terminalID).
				Str("idempotency_key", key).
				Msg("respuesta de venta ilegible; la venta pudo quedar registrada")
		} else {
			log.Warn().Err(err).
				Str("terminal", terminalID).
				Str("idempotency_key", key).
				Msg("venta no registrada; carrito conservado")
		}
		s.journalVenta(ctx, &model.VentaRegistro{
			TerminalID:     terminalID,
			IdempotencyKey: key,
			CajaID:         sesion.ID,
			ClienteID:      nv.ClienteID,
			Items:          len(nv.Items),
			TotalLocal:     nv.Total,
			MontoRecibido:  recibido,
			Cambio:         recibido.Sub(nv.Total),
			Estado:         estado,
			Error:          errText(err),
		})
		return nil, err
	}

	if venta.CajaID == 0 {
		venta.CajaID = sesion.ID
	}
	if venta.ClienteID == nil {
		venta.ClienteID = nv.ClienteID
	}
	discrepancia := !venta.Total.Equal(nv.Total)
	if discrepancia {
		log.Warn().
			Int64("id_venta", venta.ID).
			Str("total_local", nv.Total.StringFixed(2)).
			Str("total_servidor", venta.Total.StringFixed(2)).
			Msg("el total registrado no coincide con el del carrito")
	}
	cambio := recibido.Sub(nv.Total)

	totalServidor := venta.Total
	ventaID := venta.ID
	reg := &model.VentaRegistro{
		TerminalID:     terminalID,
		IdempotencyKey: key,
		CajaID:         sesion.ID,
		VentaID:        &ventaID,
		ClienteID:      nv.ClienteID,
		Items:          len(nv.Items),
		TotalLocal:     nv.Total,
		TotalServidor:  &totalServidor,
		MontoRecibido:  recibido,
		Cambio:         cambio,
		Discrepancia:   discrepancia,
		Estado:         model.RegistroEnviado,
	}
	if venta.ComprobanteRef != "" {
		ref := venta.ComprobanteRef
		reg.ComprobanteRef = &ref
	}
	s.journalVenta(ctx, reg)

	c.Vaciar()
	if err := s.store.SaveCarrito(ctx, terminalID, c); err != nil {
		// The sale exists; a retry with the retained key is answered by the
		// backend without a duplicate.
		log.Error().Err(err).Str("terminal", terminalID).Int64("id_venta", venta.ID).Msg("no se pudo limpiar el carrito")
	}

	log.Info().
		Str("terminal", terminalID).
		Int64("id_venta", venta.ID).
		Int64("id_caja", sesion.ID).
		Str("total", nv.Total.StringFixed(2)).
		Msg("venta registrada")

	resp := dto.NewVentaResponse(venta, recibido, cambio, s.symbol)
	if venta.ComprobanteRef != "" {
		resp.ComprobanteURL = ComprobanteURL(venta.ID)
	}
	resp.Discrepancia = discrepancia
	return &resp, nil
}

func nuevaVenta(c *pos.Carrito, cajaID int64, recibido decimal.Decimal) model.NuevaVenta {
	nv := model.NuevaVenta{
		CajaID:        cajaID,
		Total:         c.Total(),
		MontoRecibido: recibido,
	}
	if cl := c.Cliente(); cl != nil && cl.ID > 0 {
		id := cl.ID
		nv.ClienteID = &id
	}
	for _, l := range c.Lineas() {
		nv.Items = append(nv.Items, model.ItemVenta{
			Tipo:           l.Key.Tipo,
			IDItem:         l.Key.ID,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			Subtotal:       l.Subtotal(),
		})
	}
	return nv
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) Recientes(ctx context.Context, terminalID string, limit int) ([]dto.VentaRegistroResponse, error) {
	regs, err := s.journal.ListVentas(ctx, terminalID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VentaRegistroResponse, 0, len(regs))
	for _, r := range regs {
		out = append(out, dto.NewVentaRegistroResponse(r, s.symbol))
	}
	return out, nil
}

func (s *ventaService) Comprobante(ctx context.Context, cred credential.Credential, ventaID int64) (*backend.Document, error) {
	venta, err := s.api.ObtenerVenta(ctx, cred, ventaID)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, ErrVentaNoEncontrada
	}
	if err != nil {
		return nil, err
	}
	if venta.ComprobanteRef == "" {
		return nil, ErrSinComprobante
	}
	return s.api.Comprobante(ctx, cred, venta.ComprobanteRef)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// journalVenta never fails the sale: the backend is the record, the journal
// is a local convenience.
func (s *ventaService) journalVenta(ctx context.Context, r *model.VentaRegistro) {
	if err := s.journal.CreateVenta(ctx, r); err != nil {
		log.Error().Err(err).Str("terminal", r.TerminalID).Msg("journal: no se pudo registrar la venta")
	}
}

func errText(err error) *string {
	msg := backend.Message(err)
	if msg == "" {
		msg = err.Error()
	}
	return &msg
}
