package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Причины отказа в подключении к чату
const (
	RejectUnauthenticated = "unauthenticated"
	RejectMalformedRoom   = "malformed_room"
	RejectNotParticipant  = "not_participant"
)

// Причины игнорирования входящего кадра
const (
	FrameMalformed    = "malformed"
	FrameEmptyContent = "empty_content"
)

var (
	// Сессии и комнаты
	ChatSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adena_chat_sessions_active",
			Help: "Live chat sessions registered in the connection registry",
		},
	)

	ChatRoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "adena_chat_rooms_active",
			Help: "Rooms with at least one live session",
		},
	)

	ChatSessionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adena_chat_sessions_rejected_total",
			Help: "Chat connections rejected before admission",
		},
		[]string{"reason"},
	)

	// Сообщения
	ChatFramesIgnored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adena_chat_frames_ignored_total",
			Help: "Inbound frames ignored without closing the session",
		},
		[]string{"reason"},
	)

	ChatMessagesPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adena_chat_messages_persisted_total",
			Help: "Chat messages durably stored and broadcast",
		},
	)

	ChatPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adena_chat_persist_failures_total",
			Help: "Chat messages that failed to persist (session closed)",
		},
	)

	ChatPersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adena_chat_persist_duration_seconds",
			Help:    "Message store append latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	ChatDeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "adena_chat_delivery_failures_total",
			Help: "Broadcast deliveries skipped because the session was slow or closed",
		},
	)

	// Кэш пользователей
	UserCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adena_user_cache_requests_total",
			Help: "Username lookups by cache result",
		},
		[]string{"result"}, // "hit", "miss" или "error"
	)
)
