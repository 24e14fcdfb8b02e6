package models

import "time"

// Conversation is a stored chat message. The record keeps raw id references;
// sender/recipient profiles are resolved in the response path.
type Conversation struct {
	ID        int64     `db:"id" json:"id"`
	ChatID    int64     `db:"chat_id" json:"chat_id"`
	FromID    int64     `db:"from_id" json:"from_id"`
	ToID      int64     `db:"to_id" json:"to_id"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ConversationView is a message enriched with both sides' public profiles.
type ConversationView struct {
	ID        int64      `json:"id"`
	From      PublicUser `json:"from"`
	To        PublicUser `json:"to"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}

// MessagePage is the paginated view of a chat, newest first.
type MessagePage struct {
	ChatID int64              `json:"chatId"`
	Datas  []ConversationView `json:"datas"`
	Total  int64              `json:"total"`
}

// RoomEvent is emitted over websocket connections into a room.
type RoomEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}
