package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"youapp-backend/internal/models"
)

// ConversationRepository defines interactions for stored messages.
type ConversationRepository interface {
	Create(ctx context.Context, chatID, fromID, toID int64, message string) (models.Conversation, error)
	ListByChat(ctx context.Context, chatID int64, page, limit int) ([]models.Conversation, int64, error)
}

// ConversationRepo is a sqlx-backed repository.
type ConversationRepo struct {
	db *sqlx.DB
}

// NewConversationRepo constructs ConversationRepo.
func NewConversationRepo(db *sqlx.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create stores a message. Messages are immutable once written.
func (r *ConversationRepo) Create(ctx context.Context, chatID, fromID, toID int64, message string) (models.Conversation, error) {
	var conv models.Conversation
	query := `INSERT INTO conversations (chat_id, from_id, to_id, message)
        VALUES ($1, $2, $3, $4)
        RETURNING id, chat_id, from_id, to_id, message, created_at`
	err := r.db.QueryRowxContext(ctx, query, chatID, fromID, toID, message).
		Scan(&conv.ID, &conv.ChatID, &conv.FromID, &conv.ToID, &conv.Message, &conv.CreatedAt)
	return conv, err
}

// ListByChat returns one page of messages, newest first, plus the unpaged
// total. Pages are 1-indexed.
func (r *ConversationRepo) ListByChat(ctx context.Context, chatID int64, page, limit int) ([]models.Conversation, int64, error) {
	offset := (page - 1) * limit
	var msgs []models.Conversation
	query := `SELECT id, chat_id, from_id, to_id, message, created_at
        FROM conversations WHERE chat_id=$1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &msgs, query, chatID, limit, offset); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM conversations WHERE chat_id=$1`, chatID); err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}
