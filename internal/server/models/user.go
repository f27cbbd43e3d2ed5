// Package models holds the persisted entities of the auth service.
package models

import "time"

// Role is the access level assigned to a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleManager:
		return true
	}
	return false
}

// User is an account record. TenantID is a weak reference: deleting a tenant
// does not delete its users, it only clears the reference.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	TenantID     *int64    `json:"tenantId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
