package chat

import (
	"context"
	"errors"
	"slices"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gorilla/websocket"

	"github.com/rajivgeraev/adena-api/internal/db"
	"github.com/rajivgeraev/adena-api/internal/logging"
	"github.com/rajivgeraev/adena-api/internal/middleware"
	"github.com/rajivgeraev/adena-api/internal/models"
	"github.com/rajivgeraev/adena-api/internal/room"
)

// MaxHistoryLimit максимальный размер страницы истории сообщений
const MaxHistoryLimit = 100

// ListingGetter источник объявлений
type ListingGetter interface {
	GetListing(ctx context.Context, listingID int64) (*models.Listing, error)
}

// MessageReader чтение журнала сообщений
type MessageReader interface {
	ListRoomMessages(ctx context.Context, roomID string, skip, limit int) ([]models.Message, error)
	LatestMessagesForUser(ctx context.Context, userID int64) ([]models.Message, error)
}

// UsernameResolver отображаемые имена пользователей
type UsernameResolver interface {
	Username(ctx context.Context, userID int64) (string, error)
}

// SessionRegistry живые сессии чата
type SessionRegistry interface {
	RoomSize(roomID string) int
	CloseRoom(roomID string, code int) int
}

// ChatService представляет сервис для работы с чатами
type ChatService struct {
	listings ListingGetter
	messages MessageReader
	users    UsernameResolver
	sessions SessionRegistry
	auth     middleware.IdentityResolver
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(
	listings ListingGetter,
	messages MessageReader,
	users UsernameResolver,
	sessions SessionRegistry,
	auth middleware.IdentityResolver,
) *ChatService {
	return &ChatService{
		listings: listings,
		messages: messages,
		users:    users,
		sessions: sessions,
		auth:     auth,
	}
}

// StartChat возвращает идентификатор комнаты для покупателя и продавца объявления
func (s *ChatService) StartChat(c fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	listingID, err := strconv.ParseInt(c.Query("listing_id"), 10, 64)
	if err != nil || listingID < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing_id"})
	}

	ctx, cancel := db.WithTimeout(c.Context())
	defer cancel()

	listing, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
		}
		logging.L().Error().Err(err).Int64("listing_id", listingID).Msg("Ошибка получения объявления")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения объявления"})
	}

	if listing.SellerID == identity.UserID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot start a chat on your own listing"})
	}

	return c.JSON(fiber.Map{
		"room_id": room.Encode(listing.ID, identity.UserID, listing.SellerID),
	})
}

// GetRooms возвращает список чатов пользователя, новые сверху
func (s *ChatService) GetRooms(c fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)

	ctx, cancel := db.WithTimeout(c.Context())
	defer cancel()

	latest, err := s.messages.LatestMessagesForUser(ctx, identity.UserID)
	if err != nil {
		logging.L().Error().Err(err).Int64(logging.FieldUserID, identity.UserID).Msg("Ошибка запроса чатов")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения чатов"})
	}

	// Последние сообщения сверху
	slices.SortFunc(latest, func(a, b models.Message) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})

	summaries := make([]models.RoomSummary, 0, len(latest))
	for _, msg := range latest {
		id, ok := room.Decode(msg.RoomID)
		if !ok {
			continue
		}

		otherUser, err := s.users.Username(ctx, id.Counterpart(identity.UserID))
		if err != nil {
			logging.L().Error().Err(err).Str(logging.FieldRoomID, msg.RoomID).Msg("Ошибка получения собеседника")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения чатов"})
		}

		summaries = append(summaries, models.RoomSummary{
			RoomID:          msg.RoomID,
			OtherUser:       otherUser,
			LastMessage:     msg.Content,
			LastMessageTime: msg.CreatedAt,
		})
	}

	return c.JSON(summaries)
}

// GetRoomMessages возвращает историю сообщений комнаты
func (s *ChatService) GetRoomMessages(c fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	roomID := c.Params("room_id")

	if !canAccess(identity, roomID) {
		return forbidden(c)
	}

	skip := fiber.Query[int](c, "skip", 0)
	limit := fiber.Query[int](c, "limit", MaxHistoryLimit)
	if skip < 0 || limit < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid pagination"})
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	ctx, cancel := db.WithTimeout(c.Context())
	defer cancel()

	messages, err := s.messages.ListRoomMessages(ctx, roomID, skip, limit)
	if err != nil {
		logging.L().Error().Err(err).Str(logging.FieldRoomID, roomID).Msg("Ошибка запроса сообщений")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения сообщений"})
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// GetRoomOnline возвращает число живых сессий комнаты
func (s *ChatService) GetRoomOnline(c fiber.Ctx) error {
	identity := middleware.IdentityFrom(c)
	roomID := c.Params("room_id")

	if !canAccess(identity, roomID) {
		return forbidden(c)
	}

	return c.JSON(fiber.Map{
		"room_id":  roomID,
		"sessions": s.sessions.RoomSize(roomID),
	})
}

// CloseRoomSessions принудительно закрывает все сессии комнаты
func (s *ChatService) CloseRoomSessions(c fiber.Ctx) error {
	roomID := c.Params("room_id")
	closed := s.sessions.CloseRoom(roomID, websocket.ClosePolicyViolation)

	logging.L().Warn().
		Str(logging.FieldRoomID, roomID).
		Int64(logging.FieldUserID, middleware.IdentityFrom(c).UserID).
		Int("closed", closed).
		Msg("Сессии комнаты закрыты администратором")

	return c.JSON(fiber.Map{"closed": closed})
}

// canAccess участник комнаты или администратор. Некорректный идентификатор доступа не даёт.
func canAccess(identity *models.Identity, roomID string) bool {
	if identity.IsAdmin {
		return true
	}
	id, ok := room.Decode(roomID)
	return ok && id.HasParticipant(identity.UserID)
}

func forbidden(c fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not a participant of this chat"})
}
