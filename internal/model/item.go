package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ItemKind distinguishes catalog rows that may share a numeric id.
type ItemKind string

const (
	KindAccesorio ItemKind = "accesorio"
	KindBicicleta ItemKind = "bicicleta"
	KindProducto  ItemKind = "producto"
	KindServicio  ItemKind = "servicio"
)

var itemKinds = []ItemKind{KindAccesorio, KindBicicleta, KindProducto, KindServicio}

func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range itemKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("tipo de item desconocido: %q", s)
}

// ControlaStock is false for services: they have no stock and are never refundable.
func (k ItemKind) ControlaStock() bool { return k != KindServicio }

// ItemKey is the cart identity of a catalog item.
type ItemKey struct {
	Tipo ItemKind `json:"tipo_item"`
	ID   int64    `json:"id_item"`
}

func (k ItemKey) String() string {
	return string(k.Tipo) + "#" + strconv.FormatInt(k.ID, 10)
}

// ItemCatalogo is a priced, stocked catalog row resolved by the lookup.
type ItemCatalogo struct {
	Tipo        ItemKind        `json:"tipo_item"`
	ID          int64           `json:"id"`
	Nombre      string          `json:"nombre"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	PrecioCosto decimal.Decimal `json:"precio_costo"`
	Stock       int             `json:"stock"`
	ImagenURL   string          `json:"imagen_url,omitempty"`
}

func (i ItemCatalogo) Key() ItemKey { return ItemKey{Tipo: i.Tipo, ID: i.ID} }
