package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleEncargado = "encargado"
	RoleOperario  = "operario"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un usuario de la finca.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, encargado, operario
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario es administrador.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// ValidRole indica si el rol pertenece al catálogo.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEncargado, RoleOperario:
		return true
	}
	return false
}
