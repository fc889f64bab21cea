// Package money is the parse boundary for amounts coming from the shop backend.
//
// The backend sends monetary fields and quantities either as JSON numbers or as
// numeric strings, sometimes empty or null. Every incoming value is converted to
// decimal.Decimal here, before any arithmetic touches it.
package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a nullable decimal that decodes numbers, numeric strings, "" and null.
type Amount struct {
	decimal.Decimal
	Valid bool
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d, Valid: true}
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s, empty := rawScalar(b)
	if empty {
		*a = Amount{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: %q no es un monto valido", s)
	}
	*a = Amount{Decimal: d, Valid: true}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(a.Decimal.String()), nil
}

// Or returns the amount, or def when the backend sent nothing.
func (a Amount) Or(def decimal.Decimal) decimal.Decimal {
	if !a.Valid {
		return def
	}
	return a.Decimal
}

// Ptr returns nil for a missing amount.
func (a Amount) Ptr() *decimal.Decimal {
	if !a.Valid {
		return nil
	}
	d := a.Decimal
	return &d
}

// Int is an integer quantity (stock, cantidad) that may arrive as a string.
// Missing values decode to zero.
type Int int

func (n *Int) UnmarshalJSON(b []byte) error {
	s, empty := rawScalar(b)
	if empty {
		*n = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("money: %q no es una cantidad valida", s)
	}
	if !d.Equal(d.Truncate(0)) {
		return fmt.Errorf("money: %q no es una cantidad entera", s)
	}
	v := d.IntPart()
	if !decimal.NewFromInt(v).Equal(d) || int64(int(v)) != v {
		return fmt.Errorf("money: %q fuera de rango", s)
	}
	*n = Int(v)
	return nil
}

// Number renders d as a bare JSON number with two decimals, the shape the
// backend's endpoints expect on writes.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// Format renders an amount for display, e.g. "Q12.50". Display only: never
// parse a formatted string back into arithmetic.
func Format(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}

func rawScalar(b []byte) (string, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", true
	}
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(s)
	return s, s == ""
}
