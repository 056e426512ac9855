package money

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale configuración regional de la tienda (peso colombiano).
var DefaultLocale = language.MustParse("es-CO")

// Formatter muestra importes con la agrupación del idioma indicado y dos decimales.
type Formatter struct {
	symbol  string
	group   string
	decimal string
}

// NewFormatter construye un formateador para tag con el símbolo "$".
// Los separadores se toman de la muestra que imprime x/text para el idioma.
func NewFormatter(tag language.Tag) *Formatter {
	sample := message.NewPrinter(tag).Sprintf("%v", number.Decimal(1234567.5, number.Scale(2)))
	group, dec := separators(sample)
	return &Formatter{symbol: "$", group: group, decimal: dec}
}

// Format devuelve p.ej. "$ 1.234,50" (es-CO) o "$ 1,234.50" (en-US).
// Trabaja sobre la representación decimal exacta; el resultado es apto para Parse.
func (f *Formatter) Format(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(f.symbol)
	b.WriteString(" ")
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(r)
	}
	b.WriteString(f.decimal)
	b.WriteString(frac)
	return b.String()
}

// separators extrae de la muestra los separadores de miles y decimales.
func separators(sample string) (group, dec string) {
	var seps []string
	var cur strings.Builder
	seenDigit := false
	for _, r := range sample {
		if unicode.IsDigit(r) {
			if seenDigit && cur.Len() > 0 {
				seps = append(seps, cur.String())
			}
			cur.Reset()
			seenDigit = true
			continue
		}
		if seenDigit {
			cur.WriteRune(r)
		}
	}
	switch len(seps) {
	case 0:
		return ",", "."
	case 1:
		return "", seps[0]
	default:
		return seps[0], seps[len(seps)-1]
	}
}
