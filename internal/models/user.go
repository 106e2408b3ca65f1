package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// RoleSuperAdmin sees every organization's data.
	RoleSuperAdmin = "superadmin"
	// RoleAdmin manages templates and users within one organization.
	RoleAdmin = "admin"
	// RoleMember can generate and view documents within one organization.
	RoleMember = "member"
)

// User represents authenticated users with role-based access control.
type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Email          string     `json:"email" gorm:"uniqueIndex"`
	PasswordHash   string     `json:"-"` // Never serialize password hash
	Name           string     `json:"name"`
	Role           string     `json:"role" gorm:"default:'member'"`
	OrganizationID *uint      `json:"organization_id,omitempty" gorm:"index"`
	LastLogin      *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the provided password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsSuperAdmin reports whether the user bypasses tenant scoping.
func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}
