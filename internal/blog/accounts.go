package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/inkwell/internal/apperr"
	"github.com/geocoder89/inkwell/internal/domain/user"
	"github.com/go-playground/validator/v10"
)

const maxPasswordBytes = 72

// Accounts is the credential store: registration, lookup and password checks.
type Accounts struct {
	users    UserStore
	hasher   PasswordHasher
	validate *validator.Validate
	log      *slog.Logger
}

func NewAccounts(users UserStore, hasher PasswordHasher, log *slog.Logger) *Accounts {
	if log == nil {
		log = slog.Default()
	}
	return &Accounts{
		users:    users,
		hasher:   hasher,
		validate: newValidator(),
		log:      log,
	}
}

func (s *Accounts) Register(ctx context.Context, req user.RegisterRequest) (user.User, error) {
	const op = "accounts.register"

	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if err := validateInput(s.validate, op, req); err != nil {
		return user.User{}, err
	}

	// the binding tag counts characters; bcrypt reads at most 72 bytes
	if len(req.Password) > maxPasswordBytes {
		return user.User{}, apperr.Validation(op, []apperr.FieldError{{
			Field:   "password",
			Rule:    "max",
			Param:   "72",
			Message: "must be at most 72 bytes",
		}})
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, apperr.Storage(op, fmt.Errorf("hash password: %w", err))
	}

	now := time.Now().UTC()

	u, err := s.users.Create(ctx, user.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return user.User{}, apperr.Storage(op, err)
	}

	s.log.InfoContext(ctx, "user.registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

func (s *Accounts) FindByEmail(ctx context.Context, email string) (user.User, bool, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, false, nil
		}
		return user.User{}, false, apperr.Storage("accounts.find_by_email", err)
	}
	return u, true, nil
}

func (s *Accounts) Get(ctx context.Context, id int64) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, apperr.Storage("accounts.get", err)
	}
	return u, nil
}

func (s *Accounts) VerifyPassword(u user.User, plain string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return s.hasher.Verify(u.PasswordHash, plain)
}

// Authenticate resolves a login attempt. Unknown email and wrong password are indistinguishable.
func (s *Accounts) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, ok, err := s.FindByEmail(ctx, email)
	if err != nil {
		return user.User{}, err
	}

	if !ok || !s.VerifyPassword(u, password) {
		return user.User{}, user.ErrInvalidCredentials
	}
	return u, nil
}
