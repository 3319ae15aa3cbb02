package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/blinkroom/chat-service/internal/config"
	"github.com/blinkroom/chat-service/internal/model"
)

type Repository struct {
	connection *sqlx.DB
}

func New(cfg *config.Config) *Repository {
	conStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.Host, cfg.Postgres.Port)

	conn, err := sqlx.Connect("postgres", conStr)
	if err != nil {
		log.Fatal("error connect: ", err)
	}

	return &Repository{
		connection: conn,
	}
}

func (r *Repository) Close() {
	_ = r.connection.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.connection.PingContext(ctx)
}

// GetRecentMessages returns the live messages, newest first, capped at limit.
// The window boundary is evaluated with the database clock.
func (r *Repository) GetRecentMessages(ctx context.Context, window time.Duration, limit int) (*model.MessageList, error) {
	queryBuilder := sq.Select(
		"id",
		"content",
		"created_at",
		"reply_to",
	).
		From("messages").
		Where(sq.Expr("created_at > now() - make_interval(secs => ?)", window.Seconds())).
		OrderBy("created_at DESC")

	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	} else {
		queryBuilder = queryBuilder.Limit(100)
	}

	query, args, err := queryBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var messages model.MessageList
	err = r.connection.SelectContext(ctx, &messages, query, args...)
	if err != nil {
		return nil, err
	}

	return &messages, nil
}

// SaveMessage inserts a message and returns the server-assigned row, which
// the sender uses to reconcile its optimistic entry.
func (r *Repository) SaveMessage(ctx context.Context, content string, replyTo *uuid.UUID) (*model.Message, error) {
	query, args, err := sq.Insert("messages").
		Columns("content", "reply_to").
		Values(content, replyTo).
		Suffix("RETURNING id, content, created_at, reply_to").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var message model.Message
	err = r.connection.GetContext(ctx, &message, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %v", err)
	}

	return &message, nil
}

// PurgeExpired deletes rows older than the window and returns their ids.
// Concurrent redundant invocations are safe: rows already gone are simply
// not matched. reply_to references to deleted rows are nulled by the schema.
func (r *Repository) PurgeExpired(ctx context.Context, window time.Duration) ([]uuid.UUID, error) {
	query, args, err := sq.Delete("messages").
		Where(sq.Expr("created_at < now() - make_interval(secs => ?)", window.Seconds())).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var ids []uuid.UUID
	err = r.connection.SelectContext(ctx, &ids, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to purge expired messages: %v", err)
	}

	return ids, nil
}
