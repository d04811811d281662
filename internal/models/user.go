package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles a user account can hold. A role is fixed at registration time.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents an authenticated account on the platform.
type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	FullName     string    `gorm:"size:255;not null" json:"full_name"`
	Role         string    `gorm:"size:16;not null" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key when none is provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ValidRole reports whether the given role is one the platform recognises.
func ValidRole(role string) bool {
	switch role {
	case RoleTeacher, RoleStudent, RoleAdmin:
		return true
	default:
		return false
	}
}
