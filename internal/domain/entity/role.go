package entity

import (
	"fmt"
	"strings"

	"github.com/jhoicas/ventas-pos/internal/domain"
)

// Role rol de usuario. Conjunto cerrado con orden total de privilegio.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleVendedor   Role = "VENDEDOR"
	RoleConsulta   Role = "CONSULTA"
)

var roleInfo = map[Role]struct {
	level       int
	description string
}{
	RoleSuperAdmin: {100, "Super Administrador"},
	RoleAdmin:      {50, "Administrador"},
	RoleVendedor:   {10, "Vendedor"},
	RoleConsulta:   {1, "Solo Consulta"},
}

// Roles devuelve los roles de mayor a menor privilegio.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleVendedor, RoleConsulta}
}

// ParseRole acepta el código del rol sin distinguir mayúsculas.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleInfo[r]
	return ok
}

// Level nivel de permiso (0 si el rol no existe).
func (r Role) Level() int { return roleInfo[r].level }

func (r Role) Description() string { return roleInfo[r].description }

func (r Role) String() string { return string(r) }
