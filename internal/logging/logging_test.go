package logging

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtx_UsesLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str(FieldRoomID, "42_7_9").Logger()
	ctx := WithLogger(context.Background(), logger)

	Ctx(ctx).Warn().Msg("hello")

	assert.Contains(t, buf.String(), `"room_id":"42_7_9"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, L(), Ctx(context.Background()))
}

func TestRequestLogger_PutsRequestIDIntoContext(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var inner bytes.Buffer
	handler := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// логгер запроса перенаправлен в отдельный буфер
		l := Ctx(r.Context()).Output(&inner)
		l.Info().Msg("inside")
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/chat/1_2_3", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, inner.String(), `"request_id":"`)
	assert.Contains(t, inner.String(), `"path":"/ws/chat/1_2_3"`)
	assert.Contains(t, buf.String(), `"status":418`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" warning "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
}
