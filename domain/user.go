package domain

import (
	"fmt"
	"strings"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleManager    Role = "Manager"
	RolePharmacist Role = "Pharmacist"
	RoleCustomer   Role = "Customer"
	RoleUser       Role = "User"
)

// Roles lists every known role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RolePharmacist, RoleCustomer, RoleUser}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RolePharmacist, RoleCustomer, RoleUser:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole matches s case-insensitively against the known roles.
func ParseRole(s string) (Role, error) {
	trimmed := strings.TrimSpace(s)
	for _, role := range Roles() {
		if strings.EqualFold(trimmed, string(role)) {
			return role, nil
		}
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

type User struct {
	ID           int64  `db:"id" json:"id"`
	FullName     string `db:"full_name" json:"fullName"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	Email        string `db:"email" json:"email,omitempty"`
	Phone        string `db:"phone" json:"phone,omitempty"`
	Role         Role   `db:"role" json:"role"`
	IsActive     bool   `db:"is_active" json:"isActive"`
	CreatedAt    string `db:"created_at" json:"createdAt,omitempty"`
}

// DisplayName is the full name when present, the username otherwise.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Username
}

// CustomerSummary is the projection used by the sale screen's customer picker.
type CustomerSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
