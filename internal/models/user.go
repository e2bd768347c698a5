package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role is the authorization level of a principal.
type Role string

const (
	RoleCustomer    Role = "customer"
	RoleShopManager Role = "shopmanager"
	RoleAdmin       Role = "admin"
	RoleSuperAdmin  Role = "superadmin"
)

// Roles lists every known role, lowest privilege first.
var Roles = []Role{RoleCustomer, RoleShopManager, RoleAdmin, RoleSuperAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleShopManager, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents a storefront account. It is the principal of every
// authenticated request.
type User struct {
	Base
	Name        string                      `gorm:"not null" json:"name"`
	Email       string                      `gorm:"uniqueIndex;not null" json:"email"`
	Password    string                      `gorm:"not null" json:"-"`
	Role        Role                        `gorm:"not null;default:customer;index" json:"role"`
	IsSuspended bool                        `gorm:"not null;default:false" json:"is_suspended"`
	Addresses   datatypes.JSONSlice[string] `json:"addresses"`
	LastLoginAt *time.Time                  `json:"last_login_at,omitempty"`
}
