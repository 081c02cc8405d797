package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("this email is already registered")
)

// User is a storefront account.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
}

// DisplayName prefers the full name and falls back to the username.
func (u *User) DisplayName() string {
	if full := strings.TrimSpace(u.FirstName + " " + u.LastName); full != "" {
		return full
	}

	return u.Username
}

// Profile extends a User one-to-one.
type Profile struct {
	UserID      uuid.UUID
	Phone       string
	Institution string
	Course      string
	CreatedAt   time.Time
}
