package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/authz"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/pkg/jwt"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 6

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login y cambio de contraseña.
type AuthUseCase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	jwtCfg   JWTConfig
	logger   zerolog.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, hasher PasswordHasher, jwtCfg JWTConfig, logger zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		jwtCfg:   jwtCfg,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Login verifica username/password de un usuario activo y emite el JWT.
// Usuario inexistente y contraseña incorrecta devuelven el mismo ErrInvalidCredentials.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !uc.hasher.Compare(user.Password, in.Password) {
		uc.logger.Info().Str("username", in.Username).Msg("login fallido")
		return nil, domain.ErrInvalidCredentials
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Role.String(), uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	perms := make([]string, 0)
	for _, a := range authz.Allowed(user.Role) {
		perms = append(perms, string(a))
	}
	uc.logger.Info().Int64("user_id", user.ID).Str("role", user.Role.String()).Msg("login")
	return &dto.LoginResponse{
		Token:       token,
		ExpiresAt:   time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		User:        *dto.ToUserResponse(user),
		Permissions: perms,
	}, nil
}

// ChangePassword exige la contraseña actual; la nueva debe tener al menos 6 caracteres y ser distinta.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID int64, in dto.ChangePasswordRequest) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || !user.Active {
		return domain.ErrUserNotFound
	}
	if !uc.hasher.Compare(user.Password, in.CurrentPassword) {
		return domain.ErrInvalidCredentials
	}
	if len(in.NewPassword) < MinPasswordLength {
		return fmt.Errorf("%w: la nueva contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, MinPasswordLength)
	}
	if in.NewPassword == in.CurrentPassword {
		return fmt.Errorf("%w: la nueva contraseña debe ser diferente a la actual", domain.ErrInvalidInput)
	}
	hash, err := uc.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	if err := uc.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	uc.logger.Info().Int64("user_id", userID).Msg("contraseña actualizada")
	return nil
}
