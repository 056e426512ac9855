package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher esquema de almacenamiento de contraseñas.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(stored, password string) bool
	Scheme() string
}

// NewPasswordHasher devuelve el esquema configurado: "plain" o "bcrypt".
func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch scheme {
	case "plain", "":
		return PlainHasher{}, nil
	case "bcrypt":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("esquema de contraseña desconocido %q", scheme)
	}
}

// PlainHasher guarda y compara texto plano. Compatible con credenciales ya existentes;
// inseguro: se advierte en el arranque.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Compare(stored, password string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

func (PlainHasher) Scheme() string { return "plain" }

// BcryptHasher hash bcrypt.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptHasher) Compare(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

func (BcryptHasher) Scheme() string { return "bcrypt" }
