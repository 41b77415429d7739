package db

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajivgeraev/adena-api/internal/models"
)

// MessageStore журнал сообщений чата
type MessageStore struct {
	pool *pgxpool.Pool
}

// NewMessageStore создаёт MessageStore
func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

// AppendMessage сохраняет сообщение. ID и created_at назначает база,
// clock_timestamp() сохраняет порядок вставки даже внутри одной транзакции.
func (s *MessageStore) AppendMessage(ctx context.Context, roomID string, senderID int64, content string) (*models.Message, error) {
	msg := models.Message{
		RoomID:   roomID,
		SenderID: senderID,
		Content:  content,
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (room_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, clock_timestamp())
		RETURNING id, created_at
	`, roomID, senderID, content).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения сообщения: %w", err)
	}

	return &msg, nil
}

// ListRoomMessages возвращает историю комнаты в порядке сохранения
func (s *MessageStore) ListRoomMessages(ctx context.Context, roomID string, skip, limit int) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, room_id, sender_id, content, created_at
		FROM messages
		WHERE room_id = $1
		ORDER BY id ASC
		OFFSET $2 LIMIT $3
	`, roomID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса сообщений: %w", err)
	}

	return collectMessages(rows)
}

// LatestMessagesForUser возвращает последнее сообщение каждой комнаты, где пользователь
// покупатель, продавец или отправитель
func (s *MessageStore) LatestMessagesForUser(ctx context.Context, userID int64) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (room_id) id, room_id, sender_id, content, created_at
		FROM messages
		WHERE sender_id = $1
		   OR split_part(room_id, '_', 2) = $2
		   OR split_part(room_id, '_', 3) = $2
		ORDER BY room_id, id DESC
	`, userID, strconv.FormatInt(userID, 10))
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса чатов пользователя: %w", err)
	}

	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]models.Message, error) {
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сообщения: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения сообщений: %w", err)
	}

	return messages, nil
}
