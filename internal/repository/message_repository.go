package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/w3art/marko/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, tx *sql.Tx, message *models.Message) (int64, error)
	ListByConversation(ctx context.Context, conversationID int64) ([]*models.Message, error)
	ListRecent(ctx context.Context, conversationID int64, limit int) ([]*models.Message, error)
}

type messageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, tx *sql.Tx, message *models.Message) (int64, error) {
	query := "INSERT INTO messages (conversation_id, role, content) VALUES ($1, $2, $3) RETURNING id"

	var id int64
	var err error

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, message.ConversationID, message.Role, message.Content).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, message.ConversationID, message.Role, message.Content).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *messageRepository) ListByConversation(ctx context.Context, conversationID int64) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

// ListRecent returns the last limit messages in chronological order. The chat
// assistant feeds these back as model context.
func (r *messageRepository) ListRecent(ctx context.Context, conversationID int64, limit int) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM (
			SELECT id, conversation_id, role, content, created_at
			FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]*models.Message, error) {
	var messages []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
