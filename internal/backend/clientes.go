package backend

import (
	"context"
	"errors"
	"net/url"

	"tallerpos/internal/credential"
	"tallerpos/internal/model"
)

type clienteRequest struct {
	NIT       string `json:"nit"`
	Nombre    string `json:"nombre"`
	Email     string `json:"email,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	Telefono  string `json:"telefono,omitempty"`
}

func newClienteRequest(cl model.Cliente) clienteRequest {
	return clienteRequest{
		NIT:       cl.NIT,
		Nombre:    cl.Nombre,
		Email:     cl.Email,
		Direccion: cl.Direccion,
		Telefono:  cl.Telefono,
	}
}

func (c *Client) clientes() *Resource[clienteWire] {
	return NewResource[clienteWire](c, "/clientes", "cliente", "clientes")
}

// ClientePorNIT returns ErrNotFound when no client has that tax id.
func (c *Client) ClientePorNIT(ctx context.Context, cred credential.Credential, nit string) (model.Cliente, error) {
	w, err := c.clientes().GetPath(ctx, cred, "nit/"+url.PathEscape(nit))
	if err != nil {
		return model.Cliente{}, err
	}
	return w.toModel(), nil
}

func (c *Client) CrearCliente(ctx context.Context, cred credential.Credential, cl model.Cliente) (model.Cliente, error) {
	w, err := c.clientes().Create(ctx, cred, newClienteRequest(cl))
	if err != nil {
		return model.Cliente{}, err
	}
	return w.toModel(), nil
}

func (c *Client) ListarClientes(ctx context.Context, cred credential.Credential) ([]model.Cliente, error) {
	ws, err := c.clientes().List(ctx, cred, nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.Cliente, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toModel())
	}
	return out, nil
}

func (c *Client) ObtenerCliente(ctx context.Context, cred credential.Credential, id int64) (model.Cliente, error) {
	w, err := c.clientes().Get(ctx, cred, id)
	if err != nil {
		return model.Cliente{}, err
	}
	return w.toModel(), nil
}

// ActualizarCliente returns the stored row; when the backend does not echo
// it, the submitted values are returned with id.
func (c *Client) ActualizarCliente(ctx context.Context, cred credential.Credential, id int64, cl model.Cliente) (model.Cliente, error) {
	w, err := c.clientes().Update(ctx, cred, id, newClienteRequest(cl))
	if errors.Is(err, ErrNotFound) {
		var he *HTTPError
		if !errors.As(err, &he) {
			cl.ID = id
			return cl, nil
		}
	}
	if err != nil {
		return model.Cliente{}, err
	}
	return w.toModel(), nil
}

func (c *Client) EliminarCliente(ctx context.Context, cred credential.Credential, id int64) error {
	return c.clientes().Delete(ctx, cred, id)
}
