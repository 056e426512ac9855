package domain

import (
	"errors"
	"fmt"

	"github.com/jhoicas/ventas-pos/pkg/money"
)

// Errores de dominio.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	ErrInvalidCredentials = errors.New("credenciales inválidas")

	// Taxonomía de la venta.
	ErrInvalidMoneyFormat = money.ErrInvalidFormat
	ErrDuplicateCode      = errors.New("ya existe un producto activo con ese código")
	ErrProductUnavailable = errors.New("producto no disponible")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrEmptyCart          = errors.New("el carrito está vacío")
	ErrInvalidSeller      = errors.New("vendedor inválido")
	ErrPersistenceFailure = errors.New("error de persistencia")

	ErrSaleCancelled    = errors.New("venta cancelada por el usuario")
	ErrSaleNotPersisted = errors.New("la venta no ha sido registrada")
)

// StockError rechazo de validación de inventario para un producto concreto.
// Unwrap devuelve ErrInsufficientStock o ErrProductUnavailable.
type StockError struct {
	Code        string
	ProductName string
	Available   int
	Requested   int
	unavailable bool
}

// NewInsufficientStock construye el error con las cantidades exactas.
func NewInsufficientStock(code, name string, available, requested int) *StockError {
	return &StockError{Code: code, ProductName: name, Available: available, Requested: requested}
}

// NewProductUnavailable producto inexistente o inactivo.
func NewProductUnavailable(code string) *StockError {
	return &StockError{Code: code, unavailable: true}
}

func (e *StockError) Error() string {
	if e.unavailable {
		return fmt.Sprintf("producto no disponible: %s", e.Code)
	}
	name := e.ProductName
	if name == "" {
		name = e.Code
	}
	return fmt.Sprintf("stock insuficiente para %s: disponible %d, solicitado %d", name, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error {
	if e.unavailable {
		return ErrProductUnavailable
	}
	return ErrInsufficientStock
}
