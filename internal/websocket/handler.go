package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rajivgeraev/adena-api/internal/config"
	"github.com/rajivgeraev/adena-api/internal/db"
	"github.com/rajivgeraev/adena-api/internal/logging"
	"github.com/rajivgeraev/adena-api/internal/metrics"
	"github.com/rajivgeraev/adena-api/internal/models"
	"github.com/rajivgeraev/adena-api/internal/room"
)

// ErrPersistence сообщение не удалось сохранить, сессия закрывается
var ErrPersistence = errors.New("ошибка сохранения сообщения")

// IdentityResolver разрешает токен в пользователя
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (*models.Identity, error)
}

// MessageAppender сохраняет сообщение и возвращает его с присвоенными id и created_at
type MessageAppender interface {
	AppendMessage(ctx context.Context, roomID string, senderID int64, content string) (*models.Message, error)
}

// inboundFrame входящий кадр клиента
type inboundFrame struct {
	Content string `json:"content"`
}

// ChatHandler обслуживает WebSocket сессии чата
type ChatHandler struct {
	manager  *Manager
	auth     IdentityResolver
	messages MessageAppender
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewChatHandler создает новый экземпляр ChatHandler
func NewChatHandler(manager *Manager, auth IdentityResolver, messages MessageAppender, cfg config.WebSocketConfig) *ChatHandler {
	return &ChatHandler{
		manager:  manager,
		auth:     auth,
		messages: messages,
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS настраивается на уровне развёртывания, как и для REST API
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Mount регистрирует маршрут чата в роутере
func (h *ChatHandler) Mount(r chi.Router) {
	r.Get("/ws/chat/{room_id}", h.ServeHTTP)
}

// ServeHTTP проверяет токен и участие в комнате, затем ведёт сессию до отключения
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "room_id")
	token := r.URL.Query().Get("token")
	logger := logging.Ctx(r.Context()).With().Str(logging.FieldRoomID, roomID).Logger()

	identity, reason := h.authorize(r.Context(), token, roomID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту HTTP ошибкой
		logger.Warn().Err(err).Msg("Ошибка при установке WebSocket соединения")
		return
	}

	if reason != "" {
		metrics.ChatSessionsRejected.WithLabelValues(reason).Inc()
		logger.Info().Str(logging.FieldReason, reason).Msg("Подключение к чату отклонено")
		h.reject(conn)
		return
	}

	client := NewClient(identity, roomID, conn, h.cfg)
	h.manager.Join(roomID, client)
	defer func() {
		h.manager.Leave(roomID, client)
		client.Close()
	}()

	go client.writePump()

	h.readLoop(r.Context(), client)
}

// authorize возвращает пользователя или причину отказа.
// Администратор допускается в любую комнату без разбора её идентификатора.
func (h *ChatHandler) authorize(ctx context.Context, token, roomID string) (*models.Identity, string) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	identity, err := h.auth.Resolve(ctx, token)
	if err != nil {
		return nil, metrics.RejectUnauthenticated
	}
	if identity.IsAdmin {
		return identity, ""
	}

	id, ok := room.Decode(roomID)
	if !ok {
		return nil, metrics.RejectMalformedRoom
	}
	if !id.HasParticipant(identity.UserID) {
		return nil, metrics.RejectNotParticipant
	}

	return identity, ""
}

// reject закрывает соединение с кодом 1008 без пояснения
func (h *ChatHandler) reject(conn *websocket.Conn) {
	deadline := time.Now().Add(h.cfg.WriteWait)
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		logging.L().Debug().Err(err).Msg("не удалось отправить кадр закрытия")
	}
	conn.Close()
}

// readLoop читает кадры клиента до ошибки транспорта или сбоя сохранения
func (h *ChatHandler) readLoop(ctx context.Context, client *Client) {
	logger := logging.Ctx(ctx).With().
		Str(logging.FieldRoomID, client.RoomID).
		Int64(logging.FieldUserID, client.Identity.UserID).
		Str(logging.FieldClientID, client.ID.String()).
		Logger()

	client.conn.SetReadLimit(h.cfg.MaxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(h.cfg.PongWait))
		return nil
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Warn().Err(err).Msg("Неожиданное закрытие соединения")
			}
			return
		}

		if err := h.handleFrame(ctx, client, data); err != nil {
			logger.Error().Err(err).Msg("Сессия закрыта из-за ошибки сохранения")
			return
		}
	}
}

// handleFrame сохраняет и рассылает одно сообщение.
// Некорректные и пустые кадры игнорируются; ошибка возвращается только при сбое сохранения.
func (h *ChatHandler) handleFrame(ctx context.Context, client *Client, data []byte) error {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		metrics.ChatFramesIgnored.WithLabelValues(metrics.FrameMalformed).Inc()
		return nil
	}
	if frame.Content == "" {
		metrics.ChatFramesIgnored.WithLabelValues(metrics.FrameEmptyContent).Inc()
		return nil
	}

	_, err := h.manager.Publish(client.RoomID, func() ([]byte, error) {
		dbCtx, cancel := db.WithTimeout(ctx)
		defer cancel()

		start := time.Now()
		msg, err := h.messages.AppendMessage(dbCtx, client.RoomID, client.Identity.UserID, frame.Content)
		metrics.ChatPersistDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}

		return json.Marshal(models.NewChatEvent(msg, client.Identity.Username))
	})
	if err != nil {
		metrics.ChatPersistFailures.Inc()
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.ChatMessagesPersisted.Inc()
	return nil
}
