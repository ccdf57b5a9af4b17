package user

import (
	"time"

	"github.com/geocoder89/inkwell/internal/apperr"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

var (
	ErrNotFound           = apperr.New(apperr.ErrNotFound, "user not found")
	ErrDuplicateEmail     = apperr.New(apperr.ErrDuplicateEmail, "email is already in use")
	ErrInvalidCredentials = apperr.New(apperr.ErrForbidden, "invalid credentials")
	ErrAdminExists        = apperr.New(apperr.ErrConflict, "an administrator already exists")
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=250"`
	Email    string `json:"email" binding:"required,email,max=250"`
	Password string `json:"password" binding:"required,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// View is the public projection of a user.
type View struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) ToView() View {
	return View{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}
