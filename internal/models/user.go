package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that may own projects. Authentication is optional; a
// project without an owner is visible to everyone.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username" validate:"required,min=3,max=64"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}
