package user

import (
	"errors"
	"time"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type User struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email"`
	DisplayName  *string   `json:"display_name"`
	PasswordHash *string   `json:"-"` // never expose the hash in JSON
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) IsActive() bool {
	return u.Status == StatusActive
}

type CreateParams struct {
	Username     string
	PasswordHash string
	Email        *string
	DisplayName  *string
	Role         string
	Status       string
}
