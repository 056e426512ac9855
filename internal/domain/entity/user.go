package entity

import "time"

// User usuario del sistema. Username es único; Active=false es el borrado lógico.
type User struct {
	ID        int64
	Username  string
	Password  string // según el esquema configurado: texto plano (legado) o hash bcrypt
	Name      string
	Email     string
	Role      Role
	Active    bool
	CreatedAt time.Time
}

func (u *User) IsSuperAdmin() bool { return u.Role == RoleSuperAdmin }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) IsSeller() bool { return u.Role == RoleVendedor }
