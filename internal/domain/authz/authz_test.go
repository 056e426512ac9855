package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/ventas-pos/internal/domain/authz"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

func TestCanCreate(t *testing.T) {
	assert.False(t, authz.CanCreate(entity.RoleAdmin, entity.RoleVendedor))
	assert.True(t, authz.CanCreate(entity.RoleSuperAdmin, entity.RoleAdmin))
	assert.True(t, authz.CanCreate(entity.RoleSuperAdmin, entity.RoleSuperAdmin))
	assert.True(t, authz.CanCreate(entity.RoleSuperAdmin, entity.RoleConsulta))
	assert.False(t, authz.CanCreate(entity.RoleVendedor, entity.RoleConsulta))
	assert.False(t, authz.CanCreate(entity.RoleConsulta, entity.RoleConsulta))
	assert.False(t, authz.CanCreate(entity.RoleSuperAdmin, entity.Role("ROOT")))
}

func TestCanPerform_Matriz(t *testing.T) {
	expected := map[entity.Role][]authz.Action{
		entity.RoleSuperAdmin: authz.Actions(),
		entity.RoleAdmin:      {authz.ManageProducts, authz.ProcessSales, authz.GenerateReports, authz.ConsultData},
		entity.RoleVendedor:   {authz.ProcessSales, authz.ConsultData},
		entity.RoleConsulta:   {authz.ConsultData},
	}
	for role, actions := range expected {
		assert.Equal(t, actions, authz.Allowed(role), "rol %s", role)
	}
}

func TestCanPerform_Desconocidos(t *testing.T) {
	assert.False(t, authz.CanPerform(entity.Role("ROOT"), authz.ConsultData))
	assert.False(t, authz.CanPerform(entity.RoleSuperAdmin, authz.Action("BORRAR_TODO")))
}

func TestTodosPuedenConsultar(t *testing.T) {
	for _, r := range entity.Roles() {
		assert.True(t, authz.CanPerform(r, authz.ConsultData), "rol %s", r)
	}
}
