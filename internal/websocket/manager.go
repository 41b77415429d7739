package websocket

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rajivgeraev/adena-api/internal/logging"
	"github.com/rajivgeraev/adena-api/internal/metrics"
)

// ErrRoomNotFound в комнате нет ни одной сессии
var ErrRoomNotFound = errors.New("комната не найдена")

// roomEntry участники одной комнаты. Пустые комнаты в реестре не хранятся.
type roomEntry struct {
	// publishMu упорядочивает пары "сохранить + разослать" внутри комнаты
	publishMu sync.Mutex
	clients   []*Client
}

// Manager реестр соединений чата: room_id -> живые сессии комнаты.
// Один экземпляр на процесс, передаётся обработчику явно.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

// NewManager создает новый экземпляр Manager
func NewManager() *Manager {
	return &Manager{
		rooms: make(map[string]*roomEntry),
	}
}

// Join добавляет клиента в комнату, создавая её при необходимости
func (m *Manager) Join(roomID string, client *Client) {
	m.mu.Lock()
	entry, exists := m.rooms[roomID]
	if !exists {
		entry = &roomEntry{}
		m.rooms[roomID] = entry
		metrics.ChatRoomsActive.Inc()
	}

	for _, c := range entry.clients {
		if c == client {
			m.mu.Unlock()
			return
		}
	}
	entry.clients = append(entry.clients, client)
	size := len(entry.clients)
	m.mu.Unlock()

	metrics.ChatSessionsActive.Inc()
	logging.L().Info().
		Str(logging.FieldRoomID, roomID).
		Str(logging.FieldClientID, client.ID.String()).
		Int("room_size", size).
		Msg("Клиент подключился к комнате")
}

// Leave удаляет клиента из комнаты. Последний вышедший удаляет комнату.
// Возвращает false, если клиента в комнате не было.
func (m *Manager) Leave(roomID string, client *Client) bool {
	m.mu.Lock()
	entry, exists := m.rooms[roomID]
	if !exists {
		m.mu.Unlock()
		return false
	}

	idx := -1
	for i, c := range entry.clients {
		if c == client {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return false
	}

	entry.clients = append(entry.clients[:idx], entry.clients[idx+1:]...)
	roomRemoved := len(entry.clients) == 0
	if roomRemoved {
		delete(m.rooms, roomID)
	}
	m.mu.Unlock()

	metrics.ChatSessionsActive.Dec()
	if roomRemoved {
		metrics.ChatRoomsActive.Dec()
	}
	logging.L().Info().
		Str(logging.FieldRoomID, roomID).
		Str(logging.FieldClientID, client.ID.String()).
		Bool("room_removed", roomRemoved).
		Msg("Клиент покинул комнату")
	return true
}

// Broadcast ставит payload в очередь каждому участнику комнаты.
// Неудачная доставка пропускается и не прерывает рассылку остальным;
// медленный клиент закрывается, а из комнаты его удаляет собственная сессия.
// Возвращает число успешных доставок.
func (m *Manager) Broadcast(roomID string, payload []byte) int {
	var slow []*Client
	delivered := 0

	// Под RLock: после возврата Leave клиент больше ничего не получит
	m.mu.RLock()
	if entry, ok := m.rooms[roomID]; ok {
		for _, c := range entry.clients {
			err := c.Deliver(payload)
			if err == nil {
				delivered++
				continue
			}

			metrics.ChatDeliveryFailures.Inc()
			if errors.Is(err, ErrSlowConsumer) {
				slow = append(slow, c)
			}
		}
	}
	m.mu.RUnlock()

	for _, c := range slow {
		logging.L().Warn().
			Str(logging.FieldRoomID, roomID).
			Str(logging.FieldClientID, c.ID.String()).
			Msg("Канал отправки переполнен, закрываем соединение")
		go c.CloseWithCode(websocket.CloseTryAgainLater)
	}

	return delivered
}

// Publish выполняет persist и рассылает его результат, удерживая блокировку
// публикации комнаты: порядок видимости сообщений совпадает с порядком сохранения.
// Вызывающий должен быть участником комнаты. Ошибка persist возвращается без рассылки.
func (m *Manager) Publish(roomID string, persist func() ([]byte, error)) (int, error) {
	m.mu.RLock()
	entry, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if !ok {
		return 0, ErrRoomNotFound
	}

	entry.publishMu.Lock()
	defer entry.publishMu.Unlock()

	payload, err := persist()
	if err != nil {
		return 0, err
	}

	return m.Broadcast(roomID, payload), nil
}

// RoomSize возвращает количество сессий в комнате
func (m *Manager) RoomSize(roomID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if entry, ok := m.rooms[roomID]; ok {
		return len(entry.clients)
	}
	return 0
}

// Rooms возвращает количество комнат с живыми сессиями
func (m *Manager) Rooms() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// HasRoom проверяет наличие комнаты в реестре
func (m *Manager) HasRoom(roomID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[roomID]
	return ok
}

// CloseRoom принудительно закрывает все сессии комнаты. Возвращает их число.
func (m *Manager) CloseRoom(roomID string, code int) int {
	m.mu.RLock()
	var targets []*Client
	if entry, ok := m.rooms[roomID]; ok {
		targets = append(targets, entry.clients...)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		c.CloseWithCode(code)
	}
	return len(targets)
}

// Shutdown корректно закрывает все сессии. Сессии сами выходят из комнат.
func (m *Manager) Shutdown() {
	m.mu.RLock()
	var targets []*Client
	for _, entry := range m.rooms {
		targets = append(targets, entry.clients...)
	}
	m.mu.RUnlock()

	for _, c := range targets {
		c.CloseWithCode(websocket.CloseGoingAway)
	}
}
