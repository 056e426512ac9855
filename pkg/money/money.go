// Package money normaliza importes escritos en distintas convenciones regionales
// ("1.234,56", "1,234.56", "$ 1234,5") a un decimal exacto, y los formatea para mostrar.
//
// Parse es la única implementación del heurístico: la usan tanto los campos de
// precio de los formularios como las celdas ya formateadas que se vuelven a leer
// (importación CSV), de modo que Format -> Parse siempre devuelve el mismo valor.
package money

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ErrInvalidFormat el texto no representa un importe válido.
var ErrInvalidFormat = errors.New("formato de moneda inválido")

// FormatError conserva la entrada original para el mensaje al usuario.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidFormat.Error(), e.Input)
}

func (e *FormatError) Unwrap() error { return ErrInvalidFormat }

var canonical = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Parse convierte raw en un decimal. Falla con ErrInvalidFormat si, tras normalizar,
// el texto no coincide con ^\d+(\.\d+)?$.
func Parse(raw string) (decimal.Decimal, error) {
	cleaned := Normalize(raw)
	if !canonical.MatchString(cleaned) {
		return decimal.Zero, &FormatError{Input: raw}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &FormatError{Input: raw}
	}
	return d, nil
}

// Normalize limpia símbolos y espacios y resuelve separadores de miles/decimales.
//   - Con "." y ",": el separador que aparece primero es el de miles y se elimina;
//     el otro pasa a ser el punto decimal.
//   - Solo ",": si tras la última coma hay ≤ 2 dígitos es decimal, si no es de miles.
//   - Solo "." o ninguno: se deja igual.
//
// No valida el resultado; eso lo hace Parse.
func Normalize(raw string) string {
	s := stripNoise(strings.TrimSpace(raw))

	dot := strings.Index(s, ".")
	comma := strings.Index(s, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if dot < comma {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		last := strings.LastIndex(s, ",")
		if len(s)-last-1 <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}

// stripNoise elimina símbolos de moneda ($ € £ ¥ ...), espacios (incluido el no separable)
// y letras (códigos ISO como "COP"). Signos y otra puntuación se conservan para que fallen
// en la validación.
func stripNoise(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) || unicode.IsSpace(r) || unicode.IsLetter(r) {
			return -1
		}
		return r
	}, s)
}
