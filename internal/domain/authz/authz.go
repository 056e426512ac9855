// Package authz tabla de permisos por rol. Las denegaciones son decisiones (bool), no errores.
package authz

import "github.com/jhoicas/ventas-pos/internal/domain/entity"

// Action acción controlada por permisos.
type Action string

const (
	CreateUsers     Action = "CREAR_USUARIOS"
	CreateAdmins    Action = "CREAR_ADMIN"
	ManageProducts  Action = "GESTIONAR_PRODUCTOS"
	ProcessSales    Action = "PROCESAR_VENTAS"
	GenerateReports Action = "GENERAR_REPORTES"
	ConsultData     Action = "CONSULTAR_DATOS"
)

var permissions = map[entity.Role]map[Action]bool{
	entity.RoleSuperAdmin: {
		CreateUsers: true, CreateAdmins: true, ManageProducts: true,
		ProcessSales: true, GenerateReports: true, ConsultData: true,
	},
	entity.RoleAdmin: {
		ManageProducts: true, ProcessSales: true, GenerateReports: true, ConsultData: true,
	},
	entity.RoleVendedor: {
		ProcessSales: true, ConsultData: true,
	},
	entity.RoleConsulta: {
		ConsultData: true,
	},
}

// Actions todas las acciones conocidas.
func Actions() []Action {
	return []Action{CreateUsers, CreateAdmins, ManageProducts, ProcessSales, GenerateReports, ConsultData}
}

// CanPerform indica si role puede ejecutar action. Roles o acciones desconocidos: false.
func CanPerform(role entity.Role, action Action) bool {
	return permissions[role][action]
}

// CanCreate solo SUPER_ADMIN crea usuarios, de cualquier rol.
func CanCreate(actor, target entity.Role) bool {
	return actor == entity.RoleSuperAdmin && target.Valid()
}

// CanAssignRole el rol de un usuario solo se fija al crearlo, con la misma regla que CanCreate.
func CanAssignRole(actor, target entity.Role) bool {
	return CanCreate(actor, target)
}

// Allowed acciones permitidas para role, en el orden de Actions.
func Allowed(role entity.Role) []Action {
	var out []Action
	for _, a := range Actions() {
		if CanPerform(role, a) {
			out = append(out, a)
		}
	}
	return out
}
