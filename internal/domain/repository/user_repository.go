package repository

import (
	"context"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	// Create asigna ID y CreatedAt. ErrDuplicate si el username ya existe.
	Create(ctx context.Context, user *entity.User) error
	// GetByID incluye inactivos; (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	// GetByUsername solo activos; (nil, nil) si no existe.
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	ListActive(ctx context.Context) ([]*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
	UpdatePassword(ctx context.Context, id int64, password string) error
	Deactivate(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
