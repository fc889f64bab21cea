package service

import (
	"context"
	"errors"
	"strings"

	"tallerpos/internal/backend"
	"tallerpos/internal/credential"
	"tallerpos/internal/dto"
	"tallerpos/internal/model"

	"github.com/rs/zerolog/log"
)

type ClienteService interface {
	// BuscarPorNIT returns ErrClienteNoEncontrado on a miss so the terminal can
	// offer inline creation.
	BuscarPorNIT(ctx context.Context, cred credential.Credential, nit string) (model.Cliente, error)
	Crear(ctx context.Context, cred credential.Credential, req dto.CrearClienteRequest) (model.Cliente, error)
	// Listar returns every client whose name or NIT contains buscar, ignoring case.
	Listar(ctx context.Context, cred credential.Credential, buscar string) ([]model.Cliente, error)
	Obtener(ctx context.Context, cred credential.Credential, id int64) (model.Cliente, error)
	Actualizar(ctx context.Context, cred credential.Credential, id int64, req dto.ActualizarClienteRequest) (model.Cliente, error)
	Eliminar(ctx context.Context, cred credential.Credential, id int64) error
}

type clienteService struct {
	api ClientesAPI
}

func NewClienteService(api ClientesAPI) ClienteService {
	return &clienteService{api: api}
}

func (s *clienteService) BuscarPorNIT(ctx context.Context, cred credential.Credential, nit string) (model.Cliente, error) {
	nit = strings.TrimSpace(nit)
	if nit == "" {
		return model.Cliente{}, ErrClienteNoEncontrado
	}
	cl, err := s.api.ClientePorNIT(ctx, cred, nit)
	if errors.Is(err, backend.ErrNotFound) {
		return model.Cliente{}, ErrClienteNoEncontrado
	}
	return cl, err
}

func (s *clienteService) Crear(ctx context.Context, cred credential.Credential, req dto.CrearClienteRequest) (model.Cliente, error) {
	nuevo := req.Model()
	nuevo.NIT = strings.TrimSpace(nuevo.NIT)
	nuevo.Nombre = strings.TrimSpace(nuevo.Nombre)

	cl, err := s.api.CrearCliente(ctx, cred, nuevo)
	if err != nil {
		return model.Cliente{}, err
	}
	// Some backend versions answer the create without echoing the row.
	if cl.ID == 0 {
		if found, ferr := s.BuscarPorNIT(ctx, cred, nuevo.NIT); ferr == nil {
			cl = found
		}
	}
	log.Info().Int64("id_cliente", cl.ID).Str("nit", cl.NIT).Msg("cliente creado")
	return cl, nil
}

func (s *clienteService) Listar(ctx context.Context, cred credential.Credential, buscar string) ([]model.Cliente, error) {
	todos, err := s.api.ListarClientes(ctx, cred)
	if err != nil {
		return nil, err
	}
	buscar = strings.ToLower(strings.TrimSpace(buscar))
	out := make([]model.Cliente, 0, len(todos))
	for _, cl := range todos {
		if buscar == "" ||
			strings.Contains(strings.ToLower(cl.Nombre), buscar) ||
			strings.Contains(strings.ToLower(cl.NIT), buscar) {
			out = append(out, cl)
		}
	}
	return out, nil
}

func (s *clienteService) Obtener(ctx context.Context, cred credential.Credential, id int64) (model.Cliente, error) {
	cl, err := s.api.ObtenerCliente(ctx, cred, id)
	if errors.Is(err, backend.ErrNotFound) {
		return model.Cliente{}, ErrClienteNoEncontrado
	}
	return cl, err
}

func (s *clienteService) Actualizar(ctx context.Context, cred credential.Credential, id int64, req dto.ActualizarClienteRequest) (model.Cliente, error) {
	cambios := req.Model()
	cambios.NIT = strings.TrimSpace(cambios.NIT)
	cambios.Nombre = strings.TrimSpace(cambios.Nombre)

	cl, err := s.api.ActualizarCliente(ctx, cred, id, cambios)
	if errors.Is(err, backend.ErrNotFound) {
		return model.Cliente{}, ErrClienteNoEncontrado
	}
	if err != nil {
		return model.Cliente{}, err
	}
	log.Info().Int64("id_cliente", id).Msg("cliente actualizado")
	return cl, nil
}

func (s *clienteService) Eliminar(ctx context.Context, cred credential.Credential, id int64) error {
	err := s.api.EliminarCliente(ctx, cred, id)
	if errors.Is(err, backend.ErrNotFound) {
		return ErrClienteNoEncontrado
	}
	if err != nil {
		return err
	}
	log.Info().Int64("id_cliente", id).Msg("cliente eliminado")
	return nil
}
