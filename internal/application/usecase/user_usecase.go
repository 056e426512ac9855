package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-pos/internal/application/auth"
	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/authz"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// UsernamePattern 3 a 20 caracteres alfanuméricos o guion bajo.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// UserUseCase aplica reglas de negocio para usuarios.
type UserUseCase struct {
	repo     repository.UserRepository
	hasher   auth.PasswordHasher
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, hasher auth.PasswordHasher, logger zerolog.Logger) *UserUseCase {
	return &UserUseCase{
		repo:     repo,
		hasher:   hasher,
		validate: validator.New(),
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

// Create crea un usuario. Solo SUPER_ADMIN puede crear usuarios, de cualquier rol.
func (uc *UserUseCase) Create(ctx context.Context, actorRole entity.Role, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, err := entity.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if !authz.CanCreate(actorRole, role) {
		return nil, domain.ErrForbidden
	}
	user, err := uc.newUser(in.Username, in.Password, in.Name, in.Email, role)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Str("role", role.String()).Msg("usuario creado")
	return dto.ToUserResponse(user), nil
}

func (uc *UserUseCase) newUser(username, password, name, email string, role entity.Role) (*entity.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if !UsernamePattern.MatchString(username) {
		return nil, fmt.Errorf("%w: username debe tener entre 3 y 20 caracteres alfanuméricos o _", domain.ErrInvalidInput)
	}
	if len(password) < auth.MinPasswordLength {
		return nil, fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, auth.MinPasswordLength)
	}
	if err := uc.validate.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	stored, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = username
	}
	return &entity.User{
		Username: username,
		Password: stored,
		Name:     name,
		Email:    email,
		Role:     role,
		Active:   true,
	}, nil
}

// List usuarios activos.
func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	list, err := uc.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toUserList(list), nil
}

// ListByRole usuarios activos de un rol.
func (uc *UserUseCase) ListByRole(ctx context.Context, role string) ([]dto.UserResponse, error) {
	r, err := entity.ParseRole(role)
	if err != nil {
		return nil, err
	}
	list, err := uc.repo.ListByRole(ctx, r)
	if err != nil {
		return nil, err
	}
	return toUserList(list), nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return dto.ToUserResponse(user), nil
}

// GetByUsername obtiene un usuario activo por username.
func (uc *UserUseCase) GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return dto.ToUserResponse(user), nil
}

// Deactivate borrado lógico. Un usuario no puede desactivarse a sí mismo.
func (uc *UserUseCase) Deactivate(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return fmt.Errorf("%w: no puede desactivar su propio usuario", domain.ErrConflict)
	}
	if err := uc.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	uc.logger.Info().Int64("user_id", id).Int64("actor_id", actorID).Msg("usuario desactivado")
	return nil
}

// Bootstrap crea el SUPER_ADMIN inicial si no hay usuarios. Devuelve true si lo creó.
func (uc *UserUseCase) Bootstrap(ctx context.Context, username, password, email string) (bool, error) {
	n, err := uc.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	user, err := uc.newUser(username, password, "Super Administrador", email, entity.RoleSuperAdmin)
	if err != nil {
		return false, err
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return false, err
	}
	uc.logger.Warn().Str("username", user.Username).Msg("usuario SUPER_ADMIN inicial creado")
	return true, nil
}

func toUserList(list []*entity.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *dto.ToUserResponse(u))
	}
	return out
}
