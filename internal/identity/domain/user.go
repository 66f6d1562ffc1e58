package domain

import (
	"errors"
	"strings"
	"time"
)

// User is an account that can authenticate. Role is the stored role name;
// an empty value resolves to member at the data layer.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Validate checks required fields before persistence.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("user: id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return errors.New("user: email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("user: password hash is required")
	}
	return nil
}
