package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/pkg/money"
)

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// StockErrorDetails producto que impidió la venta.
type StockErrorDetails struct {
	Code      string `json:"code"`
	Name      string `json:"name,omitempty"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// MessageResponse respuesta simple de confirmación.
type MessageResponse struct {
	Message string `json:"message"`
}

// Money importe de entrada. Acepta número JSON (1234.5) o texto en cualquier
// convención regional ("1.234,50", "$ 1,234.50"), que pasa por money.Parse.
type Money struct {
	decimal.Decimal
}

// NewMoney envuelve un decimal.
func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d} }

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		d, err := money.Parse(raw)
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("%w: %s", money.ErrInvalidFormat, err)
	}
	m.Decimal = d
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.String())
}
