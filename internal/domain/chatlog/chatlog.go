package chatlog

import (
	"errors"
	"time"
)

var ErrInvalidCategory = errors.New("invalid category")

// Fixed category set; anything else is rejected at the edge.
var allowedCategories = map[string]struct{}{
	"infra":    {},
	"weather":  {},
	"energy":   {},
	"fx":       {},
	"security": {},
	"general":  {},
}

const (
	DefaultListLimit = 200
	MaxListLimit     = 2000
)

type Entry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Category  string    `json:"category"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

type AddLogRequest struct {
	Category string `json:"category" binding:"required,max=20"`
	Question string `json:"question" binding:"required"`
	Answer   string `json:"answer" binding:"required"`
}

func ValidCategory(category string) bool {
	_, ok := allowedCategories[category]
	return ok
}

// ClampLimit normalizes a requested page size into [1, MaxListLimit],
// falling back to the default when unset or nonsense.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
