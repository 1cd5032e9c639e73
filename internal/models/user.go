package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// NoRoleLabel is displayed for users without a role row.
const NoRoleLabel = "No role assigned"

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User is the local profile of a Casdoor identity. Verified is flipped by an
// administrator; unverified users can sign in but cannot use the API.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Verified bool     `json:"verified" gorm:"not null;default:false;index"`
	Role     UserRole `json:"role" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// RoleLabel returns the role name or NoRoleLabel.
func (u User) RoleLabel() string {
	if u.Role == "" {
		return NoRoleLabel
	}
	return string(u.Role)
}

// UserRoleBinding stores the single role granted to a user.
type UserRoleBinding struct {
	UserID    string    `json:"user_id" gorm:"primaryKey;size:255"`
	Role      UserRole  `json:"role" gorm:"not null;size:20;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserRoleBinding) TableName() string {
	return "user_roles"
}
