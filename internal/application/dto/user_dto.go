package dto

import "time"

// CreateUserRequest alta de usuario por un admin (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"max=40"`
	Role     string `json:"role" validate:"omitempty,oneof=admin empleado"`
}

// RegisterRequest registro público: siempre crea un empleado.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=120"`
	Email    string `json:"email" validate:"required,email,max=160"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"max=40"`
}

// UpdateUserRequest campos opcionales; nil = sin cambio.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Phone    *string `json:"phone" validate:"omitempty,max=40"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin empleado"`
	Active   *bool   `json:"active"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token JWT y usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// ChangePasswordRequest el largo mínimo de la nueva se valida en el use case (PASSWORD_TOO_SHORT).
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}
