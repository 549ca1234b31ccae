package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/jwt"
)

// MinPasswordLength largo mínimo de contraseña.
const MinPasswordLength = 6

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login, registro, perfil y cambio de contraseña.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	now      func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, now: time.Now}
}

// HashPassword bcrypt con costo por defecto. Rechaza contraseñas cortas.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", domain.NewValidation("PASSWORD_TOO_SHORT", "La contraseña debe tener al menos 6 caracteres")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// NewUser valida y construye un usuario con la contraseña hasheada.
func NewUser(name, email, phone, password, role string, now time.Time) (*entity.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, domain.NewValidation("MISSING_FIELDS", "Nombre, email y contraseña son requeridos")
	}
	if role == "" {
		role = entity.RoleEmpleado
	}
	if !entity.IsValidRole(role) {
		return nil, domain.NewValidation("INVALID_ROLE", "Rol inválido. Debe ser: admin o empleado")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(phone),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CreateUser persiste un usuario nuevo; email repetido devuelve Conflict EMAIL_EXISTS.
func CreateUser(ctx context.Context, repo repository.UserRepository, user *entity.User) error {
	existing, err := repo.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return errEmailExists()
	}
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return errEmailExists()
		}
		return err
	}
	return nil
}

func errEmailExists() error {
	return &domain.Error{Kind: domain.ErrConflict, Code: "EMAIL_EXISTS", Message: domain.ErrEmailAlreadyExists.Error()}
}

// Register registro público: siempre crea un empleado.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.LoginResponse, error) {
	user, err := NewUser(in.Name, in.Email, in.Phone, in.Password, entity.RoleEmpleado, uc.now())
	if err != nil {
		return nil, err
	}
	if err := CreateUser(ctx, uc.userRepo, user); err != nil {
		return nil, err
	}
	return uc.issue(user)
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewUnauthorized("INVALID_CREDENTIALS", "Credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.NewUnauthorized("INVALID_CREDENTIALS", "Credenciales inválidas")
	}
	if !user.Active {
		return nil, domain.NewUnauthorized("USER_INACTIVE", "Usuario inactivo")
	}
	return uc.issue(user)
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: ToUserResponse(user)}, nil
}

// Profile usuario autenticado.
func (uc *AuthUseCase) Profile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound("USER_NOT_FOUND", domain.ErrUserNotFound.Error())
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword verifica la contraseña actual antes de reemplazarla.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NewNotFound("USER_NOT_FOUND", domain.ErrUserNotFound.Error())
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return domain.NewValidation("INVALID_CURRENT_PASSWORD", "La contraseña actual es incorrecta")
	}
	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return uc.userRepo.UpdatePassword(ctx, user.ID, hash)
}

// IsActive lo usa el middleware para rechazar tokens de usuarios dados de baja.
func (uc *AuthUseCase) IsActive(ctx context.Context, userID string) (bool, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil && user.Active, nil
}

// ToUserResponse mapea entidad -> DTO (sin password).
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
