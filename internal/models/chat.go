package models

import (
	"time"
)

// Message представляет сохранённое сообщение чата
type Message struct {
	ID        int64     `json:"id"`
	RoomID    string    `json:"room_id"`
	SenderID  int64     `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomSummary строка списка чатов пользователя, вычисляется из журнала сообщений
type RoomSummary struct {
	RoomID          string    `json:"room_id"`
	OtherUser       string    `json:"other_user"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
}

// ChatEvent исходящий кадр WebSocket с новым сообщением
type ChatEvent struct {
	ID             int64  `json:"id"`
	RoomID         string `json:"room_id"`
	SenderID       int64  `json:"sender_id"`
	SenderUsername string `json:"sender_username"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
}

// TimestampLayout формат created_at в исходящих кадрах (с часовым поясом)
const TimestampLayout = time.RFC3339Nano

// NewChatEvent формирует исходящий кадр по сохранённому сообщению
func NewChatEvent(msg *Message, senderUsername string) ChatEvent {
	return ChatEvent{
		ID:             msg.ID,
		RoomID:         msg.RoomID,
		SenderID:       msg.SenderID,
		SenderUsername: senderUsername,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt.Format(TimestampLayout),
	}
}
