package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/inkwell/internal/domain/user"
	"github.com/geocoder89/inkwell/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	repo
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{repo{pool: pool, prom: prom}}
}

const userColumns = `id, email, password_hash, name, role, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// Create inserts the user. The first row in an empty table becomes the administrator; two
// concurrent first registrations race on users_single_admin_idx and the loser is retried as a
// regular user.
func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	const op = "users.create"

	insert := func(roleExpr string) (user.User, error) {
		var created user.User
		err := r.observe(op, func() error {
			var e error
			created, e = scanUser(r.pool.QueryRow(ctx, `
				INSERT INTO users (email, password_hash, name, role, created_at, updated_at)
				VALUES ($1, $2, $3, `+roleExpr+`, $4, $5)
				RETURNING `+userColumns,
				u.Email, u.PasswordHash, u.Name, u.CreatedAt, u.UpdatedAt,
			))
			return e
		})
		return created, err
	}

	roleExpr := `CASE WHEN EXISTS (SELECT 1 FROM users) THEN 'user' ELSE 'admin' END`
	switch u.Role {
	case user.RoleAdmin:
		roleExpr = `'admin'`
	case user.RoleUser:
		roleExpr = `'user'`
	}

	created, err := insert(roleExpr)
	if u.Role == "" && violatedConstraint(err) == constraintUsersSingleAdmin {
		created, err = insert(`'user'`)
	}

	if err != nil {
		switch violatedConstraint(err) {
		case constraintUsersEmail:
			return user.User{}, user.ErrDuplicateEmail
		case constraintUsersSingleAdmin:
			return user.User{}, user.ErrAdminExists
		}
		return user.User{}, err
	}

	return created, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var e error
		u, e = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.observe("users.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	})
	return n, err
}
