package memory

import (
	"context"

	"github.com/geocoder89/inkwell/internal/domain/user"
)

type UsersRepo struct {
	t *tables
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	hasAdmin := false
	for _, existing := range r.t.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrDuplicateEmail
		}
		if existing.IsAdmin() {
			hasAdmin = true
		}
	}

	if u.Role == "" {
		u.Role = user.RoleUser
		if len(r.t.users) == 0 {
			u.Role = user.RoleAdmin
		}
	}

	if u.Role == user.RoleAdmin && hasAdmin {
		return user.User{}, user.ErrAdminExists
	}

	r.t.nextUserID++
	u.ID = r.t.nextUserID
	r.t.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	for _, u := range r.t.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	u, ok := r.t.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) Count(_ context.Context) (int, error) {
	r.t.mu.RLock()
	defer r.t.mu.RUnlock()

	return len(r.t.users), nil
}
