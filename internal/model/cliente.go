package model

// Cliente is a shop client. NIT (tax id) is the external lookup key.
type Cliente struct {
	ID        int64  `json:"id_cliente"`
	NIT       string `json:"nit"`
	Nombre    string `json:"nombre"`
	Email     string `json:"email,omitempty"`
	Direccion string `json:"direccion,omitempty"`
	Telefono  string `json:"telefono,omitempty"`
}
