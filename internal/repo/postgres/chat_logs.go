package postgres

import (
	"context"

	"github.com/coderkec/authchat/internal/domain/chatlog"
	"github.com/coderkec/authchat/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatLogsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewChatLogsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ChatLogsRepo {
	return &ChatLogsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ChatLogsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ChatLogsRepo) Insert(ctx context.Context, userID, category, question, answer string) error {
	return r.observe("chat_logs.insert", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO chat_logs (user_id, category, question, answer)
			VALUES ($1,$2,$3,$4)
		`, userID, category, question, answer)
		return err
	})
}

// ListByUserAndCategory returns up to limit entries for one user and category,
// oldest first. The query grabs the newest N by id and the slice is reversed,
// so a capped result still holds the most recent entries.
func (r *ChatLogsRepo) ListByUserAndCategory(ctx context.Context, userID, category string, limit int) (items []chatlog.Entry, err error) {
	var rows pgx.Rows

	err = r.observe("chat_logs.list_by_user_category", func() error {
		rows, err = r.pool.Query(ctx, `
			SELECT id, category, question, answer, created_at
			FROM chat_logs
			WHERE user_id = $1 AND category = $2
			ORDER BY id DESC
			LIMIT $3
		`, userID, category, limit)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	items = make([]chatlog.Entry, 0)

	for rows.Next() {
		var e chatlog.Entry
		e.UserID = userID

		scanErr := rows.Scan(&e.ID, &e.Category, &e.Question, &e.Answer, &e.CreatedAt)

		if scanErr != nil {
			err = scanErr
			return
		}
		items = append(items, e)
	}

	if err = rows.Err(); err != nil {
		return
	}

	// oldest first
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	return
}
