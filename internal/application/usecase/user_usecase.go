package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// UserUseCase administración de usuarios (sólo admin).
type UserUseCase struct {
	repo repository.UserRepository
	now  func() time.Time
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo, now: time.Now}
}

// Create alta con cualquier rol.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	user, err := auth.NewUser(in.Name, in.Email, in.Phone, in.Password, in.Role, uc.now())
	if err != nil {
		return nil, err
	}
	if err := auth.CreateUser(ctx, uc.repo, user); err != nil {
		return nil, err
	}
	resp := auth.ToUserResponse(user)
	return &resp, nil
}

func (uc *UserUseCase) List(ctx context.Context) ([]dto.UserResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, auth.ToUserResponse(u))
	}
	return out, nil
}

// Update aplica sólo los campos presentes. Un admin no puede desactivarse ni quitarse el rol a sí mismo.
func (uc *UserUseCase) Update(ctx context.Context, actorID, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("INVALID_USER_ID", "ID de usuario inválido")
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.NewNotFound("USER_NOT_FOUND", domain.ErrUserNotFound.Error())
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidation("NAME_REQUIRED", "El nombre es requerido")
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		if !entity.IsValidRole(*in.Role) {
			return nil, domain.NewValidation("INVALID_ROLE", "Rol inválido. Debe ser: admin o empleado")
		}
		if actorID == user.ID && *in.Role != entity.RoleAdmin {
			return nil, domain.NewConflict("SELF_DEMOTION", "No puede quitarse el rol de administrador")
		}
		user.Role = *in.Role
	}
	if in.Active != nil {
		if actorID == user.ID && !*in.Active {
			return nil, domain.NewConflict("SELF_DEACTIVATION", "No puede desactivar su propio usuario")
		}
		user.Active = *in.Active
	}
	user.UpdatedAt = uc.now()

	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		if err := uc.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
			return nil, err
		}
	}
	resp := auth.ToUserResponse(user)
	return &resp, nil
}
