package db

import (
	"context"
	"errors"
	"time"

	"github.com/coderkec/authchat/internal/config"
	"github.com/coderkec/authchat/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const adminRole = "ROLE_ADMIN"

// EnsureAdminUser creates the configured admin account if it does not exist.
// No-op when ADMIN_USERNAME/ADMIN_PASSWORD are unset.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, cfg.AdminUsername).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, display_name, role, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,'active',$6,$7)
	`, uuid.NewString(), cfg.AdminUsername, hash, cfg.AdminDisplayName, adminRole, now, now)

	return err
}
