// Package nit dígito de verificación del NIT colombiano (módulo 11, DIAN).
package nit

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// pesos DIAN, aplicados de derecha a izquierda sobre la base del NIT.
var weights = [15]int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

// ErrInvalid NIT mal formado o con dígito de verificación incorrecto.
var ErrInvalid = errors.New("nit inválido")

// VerificationDigit calcula el dígito de verificación de base (se ignoran puntos y espacios).
func VerificationDigit(base string) (int, error) {
	digits := onlyDigits(base)
	if len(digits) == 0 || len(digits) > len(weights) {
		return 0, fmt.Errorf("%w: la base debe tener entre 1 y %d dígitos", ErrInvalid, len(weights))
	}
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[len(digits)-1-i] - '0')
		sum += d * weights[i]
	}
	r := sum % 11
	if r > 1 {
		return 11 - r, nil
	}
	return r, nil
}

// Validate acepta "900123456-8", "900.123.456-8". El dígito va después del último guion.
func Validate(taxID string) error {
	i := strings.LastIndex(taxID, "-")
	if i < 0 {
		return fmt.Errorf("%w: falta el dígito de verificación", ErrInvalid)
	}
	dv := onlyDigits(taxID[i+1:])
	if len(dv) != 1 || strings.TrimSpace(taxID[i+1:]) != dv {
		return fmt.Errorf("%w: dígito de verificación %q", ErrInvalid, taxID[i+1:])
	}
	expected, err := VerificationDigit(taxID[:i])
	if err != nil {
		return err
	}
	if int(dv[0]-'0') != expected {
		return fmt.Errorf("%w: dígito de verificación esperado %d, recibido %s", ErrInvalid, expected, dv)
	}
	return nil
}

// Format NIT con puntos de miles y dígito: 900.123.456-8.
func Format(base string) (string, error) {
	digits := onlyDigits(base)
	dv, err := VerificationDigit(digits)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s-%d", b.String(), dv), nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.' || r == ' ':
		default:
			return ""
		}
	}
	return b.String()
}
