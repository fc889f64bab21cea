package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"tallerpos/internal/credential"
	"tallerpos/internal/model"
	"tallerpos/internal/money"

	"github.com/shopspring/decimal"
)

// CajaActual returns the open session, or nil when the register is closed.
// The backend answers "no open session" with a 404 or with caja=null; both
// mean closed, not a fault.
func (c *Client) CajaActual(ctx context.Context, cred credential.Credential) (*model.SesionCaja, error) {
	var resp cajaResponse
	err := c.do(ctx, cred, call{method: http.MethodGet, path: "/cajas/actual"}, &resp)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if resp.Caja == nil || resp.Caja.IDCaja == 0 {
		return nil, nil
	}
	s := resp.Caja.toModel()
	if !s.Abierta() {
		return nil, nil
	}
	return s, nil
}

func (c *Client) AbrirCaja(ctx context.Context, cred credential.Credential, montoInicial decimal.Decimal) (*model.SesionCaja, error) {
	var resp cajaResponse
	err := c.do(ctx, cred, call{
		method: http.MethodPost,
		path:   "/cajas/abrir",
		body:   abrirCajaRequest{MontoInicial: money.Number(montoInicial)},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Caja == nil {
		// Some deployments only acknowledge; read the session back.
		return c.CajaActual(ctx, cred)
	}
	return resp.Caja.toModel(), nil
}

func (c *Client) CerrarCaja(ctx context.Context, cred credential.Credential, cajaID int64, montoFinal decimal.Decimal) (*model.SesionCaja, error) {
	var resp cajaResponse
	err := c.do(ctx, cred, call{
		method: http.MethodPost,
		path:   "/cajas/cerrar",
		body:   cerrarCajaRequest{IDCaja: cajaID, MontoFinal: money.Number(montoFinal)},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Caja == nil {
		now := time.Now()
		mf := montoFinal
		return &model.SesionCaja{ID: cajaID, FechaCierre: &now, MontoFinal: &mf}, nil
	}
	return resp.Caja.toModel(), nil
}

// HistorialCajas lists sessions opened between desde and hasta (dates, inclusive).
func (c *Client) HistorialCajas(ctx context.Context, cred credential.Credential, desde, hasta time.Time) ([]model.SesionCaja, error) {
	q := url.Values{}
	q.Set("fecha_inicio", desde.Format("2006-01-02"))
	q.Set("fecha_fin", hasta.Format("2006-01-02"))

	var resp historialResponse
	if err := c.do(ctx, cred, call{method: http.MethodGet, path: "/cajas/historial", query: q}, &resp); err != nil {
		return nil, err
	}
	out := make([]model.SesionCaja, 0, len(resp.Historial))
	for _, w := range resp.Historial {
		out = append(out, *w.toModel())
	}
	return out, nil
}
