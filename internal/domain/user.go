package domain

import (
	"context"
	"time"
)

// User represents a platform user (a teacher, or the admin account)
type User struct {
	Username     string    `json:"username" bson:"_id"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Privileged   bool      `json:"privileged" bson:"privileged"`
	MustChange   bool      `json:"must_change_password" bson:"must_change_password"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// UserLogin represents login credentials
type UserLogin struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// PasswordChange represents a password change request
type PasswordChange struct {
	Username    string `json:"username" validate:"required,max=100"`
	NewPassword string `json:"new_password" validate:"required,min=4,max=72"`
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
}
