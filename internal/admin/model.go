package admin

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("admin not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash only
	Picture      string    `json:"picture,omitempty" db:"picture"`
	Bio          string    `json:"bio,omitempty" db:"bio"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ProfileChanges is a partial update: nil fields keep their stored value.
type ProfileChanges struct {
	Name    *string
	Bio     *string
	Picture *string
}

func (c ProfileChanges) Empty() bool {
	return c.Name == nil && c.Bio == nil && c.Picture == nil
}
