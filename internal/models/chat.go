package models

import "time"

// Chat is a thread between exactly two users. The pair is stored normalized
// (user1_id < user2_id) so membership lookups are order-independent.
type Chat struct {
	ID        int64     `db:"id" json:"id"`
	User1ID   int64     `db:"user1_id" json:"user1_id"`
	User2ID   int64     `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasMember reports whether the user belongs to the chat.
func (c Chat) HasMember(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}
