// Package user holds the account entity and the registration/login service.
package user

import (
	"context"
	"fmt"
	"time"
)

// Sentinel errors for account operations.
var (
	ErrNotFound      = fmt.Errorf("user not found")
	ErrEmailTaken    = fmt.Errorf("email already registered")
	ErrWrongPassword = fmt.Errorf("invalid password")
)

// User is a registered account. PasswordHash is a bcrypt hash and never
// leaves the domain layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
