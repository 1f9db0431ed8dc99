package user

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleAgent   Role = "AGENT"
	RoleCourier Role = "COURIER"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(raw))); r {
	case RoleAdmin, RoleAgent, RoleCourier:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}

type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	Role      Role       `json:"role"`
	Avatar    string     `json:"avatar,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
	Phone    string
}
