package user

import (
	"time"

	"github.com/geocoder89/listinghub/internal/apperr"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"created_at"`
}

// Summary is the public part of a user returned next to a token.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}

var (
	ErrNotFound   = apperr.New(apperr.KindNotFound, "User not found")
	ErrEmailTaken = apperr.New(apperr.KindConflict, "A user with this email already exists")
	// same error for unknown email and wrong password
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "Invalid email or password")
)
