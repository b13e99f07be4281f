package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleMember    UserRole = "MEMBER"
	UserRoleLibrarian UserRole = "LIBRARIAN"
	UserRoleAdmin     UserRole = "ADMIN"
)

// IsStaff reports whether the role may perform librarian-level mutations.
func (r UserRole) IsStaff() bool {
	return r == UserRoleLibrarian || r == UserRoleAdmin
}

// ValidUserRole reports whether the role is one of the known roles.
func ValidUserRole(r UserRole) bool {
	switch r {
	case UserRoleMember, UserRoleLibrarian, UserRoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:256" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:128" json:"-"`
	Role         UserRole       `gorm:"size:20;default:'MEMBER'" json:"role"`
	FailedLogins int            `gorm:"default:0" json:"-"`
	LockedUntil  *time.Time     `json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusApproved ApplicationStatus = "APPROVED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// MembershipApplication is a prospective member's request to join the library.
// Approving one creates a MEMBER user account.
type MembershipApplication struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Name       string            `gorm:"size:256" json:"name"`
	Email      string            `gorm:"index;size:255" json:"email"`
	Phone      string            `gorm:"size:32" json:"phone,omitempty"`
	Status     ApplicationStatus `gorm:"size:20;default:'PENDING'" json:"status"`
	Notes      string            `gorm:"type:text" json:"notes,omitempty"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (MembershipApplication) TableName() string {
	return "membership_applications"
}
