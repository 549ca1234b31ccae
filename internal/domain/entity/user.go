package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleEmpleado = "empleado"
)

// IsValidRole indica si r es un rol soportado.
func IsValidRole(r string) bool {
	return r == RoleAdmin || r == RoleEmpleado
}

// User usuario del sistema (cajero, repartidor o administrador).
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string // bcrypt
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
