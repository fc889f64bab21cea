package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tallerpos/internal/credential"
	"tallerpos/internal/model"
)

// BuscarItem resolves a scanned code or a name fragment. Matching is the
// backend's; a miss is ErrNotFound.
func (c *Client) BuscarItem(ctx context.Context, cred credential.Credential, termino string, tipo model.ItemKind) (model.ItemCatalogo, error) {
	q := url.Values{}
	q.Set("termino", termino)
	if tipo != "" {
		q.Set("tipo_item", string(tipo))
	}

	var resp buscarResponse
	if err := c.do(ctx, cred, call{method: http.MethodGet, path: "/ventas/buscar", query: q}, &resp); err != nil {
		return model.ItemCatalogo{}, err
	}

	w := resp.Producto
	if w == nil && len(resp.Productos) > 0 {
		w = &resp.Productos[0]
	}
	if w == nil {
		return model.ItemCatalogo{}, ErrNotFound
	}
	return w.toModel(tipo)
}

// CrearVenta submits a sale. idemKey is sent as Idempotency-Key so a retry
// after a lost response cannot record the sale twice.
func (c *Client) CrearVenta(ctx context.Context, cred credential.Credential, idemKey string, nv model.NuevaVenta) (model.Venta, error) {
	var resp ventaResponse
	err := c.do(ctx, cred, call{
		method:  http.MethodPost,
		path:    "/ventas",
		body:    newCrearVentaRequest(nv),
		headers: map[string]string{"Idempotency-Key": idemKey},
	}, &resp)
	if err != nil {
		return model.Venta{}, err
	}
	if resp.Venta == nil {
		return model.Venta{}, fmt.Errorf("%w: respuesta sin venta", ErrInvalidResponse)
	}
	return resp.Venta.toModel()
}

func (c *Client) ObtenerVenta(ctx context.Context, cred credential.Credential, id int64) (model.Venta, error) {
	var resp ventaResponse
	path := "/ventas/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, cred, call{method: http.MethodGet, path: path}, &resp); err != nil {
		return model.Venta{}, err
	}
	if resp.Venta == nil {
		return model.Venta{}, ErrNotFound
	}
	return resp.Venta.toModel()
}

// VentasPorCaja lists the sales recorded in one cash session.
func (c *Client) VentasPorCaja(ctx context.Context, cred credential.Credential, cajaID int64) ([]model.Venta, error) {
	var resp ventasResponse
	path := "/ventas/caja/" + strconv.FormatInt(cajaID, 10)
	if err := c.do(ctx, cred, call{method: http.MethodGet, path: path}, &resp); err != nil {
		return nil, err
	}
	out := make([]model.Venta, 0, len(resp.Ventas))
	for _, w := range resp.Ventas {
		v, err := w.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Client) CrearReembolso(ctx context.Context, cred credential.Credential, nr model.NuevoReembolso) (model.Reembolso, error) {
	var resp reembolsoResponse
	err := c.do(ctx, cred, call{
		method: http.MethodPost,
		path:   "/reembolsos",
		body:   newCrearReembolsoRequest(nr),
	}, &resp)
	if err != nil {
		return model.Reembolso{}, err
	}
	r := model.Reembolso{
		VentaID: nr.VentaID,
		Monto:   nr.Monto,
		Motivo:  nr.Motivo,
		Items:   nr.Items,
	}
	if w := resp.Reembolso; w != nil {
		r.ID = int64(w.IDReembolso)
		r.Monto = w.MontoReembolso.Or(nr.Monto)
		r.Fecha = w.Fecha.Time
	}
	return r, nil
}
