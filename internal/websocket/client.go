package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rajivgeraev/adena-api/internal/config"
	"github.com/rajivgeraev/adena-api/internal/logging"
	"github.com/rajivgeraev/adena-api/internal/models"
)

var (
	// ErrSlowConsumer буфер отправки клиента заполнен
	ErrSlowConsumer = errors.New("буфер отправки клиента заполнен")
	// ErrClientClosed клиент уже закрыт
	ErrClientClosed = errors.New("клиент закрыт")
)

// Client представляет собой отдельное WebSocket соединение в комнате чата
type Client struct {
	ID       uuid.UUID
	Identity *models.Identity
	RoomID   string

	conn      *websocket.Conn
	send      chan []byte // Буферизованный канал исходящих сообщений
	cfg       config.WebSocketConfig
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient создает новый экземпляр Client
func NewClient(identity *models.Identity, roomID string, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	bufferSize := cfg.SendBufferSize
	if bufferSize <= 0 {
		bufferSize = 1
	}

	return &Client{
		ID:       uuid.New(),
		Identity: identity,
		RoomID:   roomID,
		conn:     conn,
		send:     make(chan []byte, bufferSize),
		cfg:      cfg,
		done:     make(chan struct{}),
	}
}

// Deliver ставит сообщение в очередь отправки, не блокируясь
func (c *Client) Deliver(payload []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// Done закрывается, когда клиент закрыт
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close закрывает соединение без кадра закрытия
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// CloseWithCode отправляет кадр закрытия с кодом и закрывает соединение.
// Закрытие соединения прерывает ожидающее чтение в цикле сессии.
func (c *Client) CloseWithCode(code int) {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn == nil {
			return
		}
		// WriteControl можно вызывать параллельно с writePump
		deadline := time.Now().Add(c.cfg.WriteWait)
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, ""), deadline)
		c.conn.Close()
	})
}

// writePump отправляет сообщения клиенту и пингует его
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logging.L().Debug().Err(err).Str(logging.FieldClientID, c.ID.String()).Msg("ошибка отправки сообщения")
				return
			}
		case <-ticker.C:
			// Отправляем ping для поддержания соединения
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			// Соединение закрыто
			return
		}
	}
}
