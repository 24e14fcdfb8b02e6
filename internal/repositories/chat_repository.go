package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"youapp-backend/internal/models"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatRepository abstracts chat persistence.
type ChatRepository interface {
	FindOrCreate(ctx context.Context, userA int64, userB int64) (models.Chat, error)
	GetChat(ctx context.Context, chatID int64) (models.Chat, error)
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// NormalizePair orders a member pair so lookups are order-independent.
func NormalizePair(userA, userB int64) (int64, int64) {
	if userA > userB {
		return userB, userA
	}
	return userA, userB
}

// FindOrCreate returns the chat whose member set equals {userA, userB},
// creating it on first contact. The unique constraint on the normalized pair
// makes concurrent first messages converge on one row: the loser of the
// insert race re-selects the winner's chat.
func (r *ChatRepo) FindOrCreate(ctx context.Context, userA int64, userB int64) (models.Chat, error) {
	if userA == userB {
		return models.Chat{}, errors.New("cannot create chat with self")
	}
	user1, user2 := NormalizePair(userA, userB)

	chat, err := r.getByPair(ctx, user1, user2)
	if err == nil {
		return chat, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, err
	}

	query := `INSERT INTO chats (user1_id, user2_id) VALUES ($1, $2)
        RETURNING id, user1_id, user2_id, created_at`
	err = r.db.QueryRowxContext(ctx, query, user1, user2).
		Scan(&chat.ID, &chat.User1ID, &chat.User2ID, &chat.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation {
			return r.getByPair(ctx, user1, user2)
		}
		return models.Chat{}, err
	}
	return chat, nil
}

// GetChat fetches a chat by id.
func (r *ChatRepo) GetChat(ctx context.Context, chatID int64) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT id, user1_id, user2_id, created_at FROM chats WHERE id=$1`, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chat{}, ErrChatNotFound
	}
	return chat, err
}

func (r *ChatRepo) getByPair(ctx context.Context, user1, user2 int64) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, `SELECT id, user1_id, user2_id, created_at FROM chats WHERE user1_id=$1 AND user2_id=$2`, user1, user2)
	return chat, err
}
