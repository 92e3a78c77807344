package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/coderkec/authchat/internal/domain/user"
	"github.com/coderkec/authchat/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts a new user row inside a transaction. A failed insert never
// leaves a partial row; the unique constraint on username resolves signup
// races, the loser surfaces user.ErrUsernameTaken.
func (r *UsersRepo) Create(ctx context.Context, params user.CreateParams) (u user.User, err error) {
	now := time.Now().UTC()

	u = user.User{
		ID:           uuid.NewString(),
		Username:     params.Username,
		Email:        params.Email,
		DisplayName:  params.DisplayName,
		PasswordHash: &params.PasswordHash,
		Role:         params.Role,
		Status:       params.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return user.User{}, err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("users.create", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO users (id, username, password_hash, email, display_name, role, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, u.ID, u.Username, params.PasswordHash, u.Email, u.DisplayName, u.Role, u.Status, u.CreatedAt, u.UpdatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrUsernameTaken
		}
		return user.User{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getBy(ctx, "users.get_by_username", `WHERE username = $1`, username)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getBy(ctx, "users.get_by_id", `WHERE id = $1`, id)
}

func (r *UsersRepo) getBy(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx, `
			SELECT id, username, password_hash, email, display_name, role, status, created_at, updated_at
			FROM users `+where,
			arg,
		).Scan(
			&u.ID,
			&u.Username,
			&u.PasswordHash,
			&u.Email,
			&u.DisplayName,
			&u.Role,
			&u.Status,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// TouchUpdatedAt records a successful login on the row.
func (r *UsersRepo) TouchUpdatedAt(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("users.touch_updated_at", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `UPDATE users SET updated_at = NOW() WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) ListRecent(ctx context.Context, limit int) (users []user.User, err error) {
	var rows pgx.Rows

	err = r.observe("users.list_recent", func() error {
		rows, err = r.pool.Query(ctx, `
			SELECT id, username, password_hash, email, display_name, role, status, created_at, updated_at
			FROM users
			ORDER BY created_at DESC, id DESC
			LIMIT $1
		`, limit)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	users = make([]user.User, 0)

	for rows.Next() {
		var u user.User

		e := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.DisplayName, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)

		if e != nil {
			err = e
			return
		}
		users = append(users, u)
	}

	err = rows.Err()

	return
}
