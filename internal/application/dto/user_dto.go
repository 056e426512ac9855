package dto

import "time"

// CreateUserRequest entrada para crear un usuario.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN VENDEDOR CONSULTA"`
}

// ChangePasswordRequest cambio de contraseña del propio usuario.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	RoleDescription string    `json:"role_description"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
}

// LoginRequest credenciales.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT, usuario y acciones permitidas.
type LoginResponse struct {
	Token       string       `json:"token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
	Permissions []string     `json:"permissions"`
}
