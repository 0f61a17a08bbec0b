package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/w3art/marko/internal/models"
)

type ConversationRepository interface {
	Create(ctx context.Context, tx *sql.Tx, conversation *models.Conversation) (int64, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Conversation, bool, error)
	List(ctx context.Context, userID int64) ([]*models.Conversation, error)
	Touch(ctx context.Context, id int64) error
	Remove(ctx context.Context, id int64) error
}

type conversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, tx *sql.Tx, conversation *models.Conversation) (int64, error) {
	query := "INSERT INTO conversations (user_id, title) VALUES ($1, $2) RETURNING id"

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, conversation.UserID, conversation.Title).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, conversation.UserID, conversation.Title).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id, userID int64) (*models.Conversation, bool, error) {
	var c models.Conversation
	query := "SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = $1 AND user_id = $2"
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return &c, true, nil
}

func (r *conversationRepository) List(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	query := "SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC"
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var conversations []*models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		conversations = append(conversations, &c)
	}
	return conversations, rows.Err()
}

func (r *conversationRepository) Touch(ctx context.Context, id int64) error {
	query := "UPDATE conversations SET updated_at = $1 WHERE id = $2"
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *conversationRepository) Remove(ctx context.Context, id int64) error {
	query := "DELETE FROM conversations WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
