package dto

import "tallerpos/internal/model"

type CrearClienteRequest struct {
	NIT       string `json:"nit"       validate:"required,max=30"`
	Nombre    string `json:"nombre"    validate:"required,max=120"`
	Email     string `json:"email"     validate:"omitempty,email"`
	Direccion string `json:"direccion" validate:"max=200"`
	Telefono  string `json:"telefono"  validate:"max=30"`
	// AsignarAlCarrito attaches the new client to the terminal's cart.
	AsignarAlCarrito bool `json:"asignar_al_carrito"`
}

func (r CrearClienteRequest) Model() model.Cliente {
	return model.Cliente{
		NIT:       r.NIT,
		Nombre:    r.Nombre,
		Email:     r.Email,
		Direccion: r.Direccion,
		Telefono:  r.Telefono,
	}
}

type ActualizarClienteRequest struct {
	NIT       string `json:"nit"       validate:"required,max=30"`
	Nombre    string `json:"nombre"    validate:"required,max=120"`
	Email     string `json:"email"     validate:"omitempty,email"`
	Direccion string `json:"direccion" validate:"max=200"`
	Telefono  string `json:"telefono"  validate:"max=30"`
}

func (r ActualizarClienteRequest) Model() model.Cliente {
	return model.Cliente{
		NIT:       r.NIT,
		Nombre:    r.Nombre,
		Email:     r.Email,
		Direccion: r.Direccion,
		Telefono:  r.Telefono,
	}
}

// ClientesFilter narrows the client list by a fragment of the name or NIT.
type ClientesFilter struct {
	Buscar string `form:"buscar" validate:"max=120"`
}
