package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/ventas-pos/internal/application/usecase"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// Validator envuelve validator/v10 con las reglas propias ("username").
type Validator struct {
	v *validator.Validate
}

// NewValidator registra las validaciones personalizadas.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usecase.UsernamePattern.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct valida y resume los errores en un único mensaje legible.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), describe(fe)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "email":
		return "email inválido"
	case "oneof":
		return "debe ser uno de " + fe.Param()
	case "username":
		return "3 a 20 caracteres alfanuméricos o _"
	default:
		return "no cumple " + fe.Tag()
	}
}

// bind parsea el cuerpo JSON y lo valida. Responde 400 y devuelve false si falla.
func (val *Validator) bind(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		if errors.Is(err, money.ErrInvalidFormat) {
			return false, badRequest(c, "INVALID_MONEY_FORMAT", err.Error())
		}
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := val.Struct(dst); err != nil {
		return false, badRequest(c, "VALIDATION", err.Error())
	}
	return true, nil
}
