package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"beacon/internal/domain/realtime"
	"beacon/internal/usecase"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	usecase.SessionUsecase

	stats  realtime.Stats
	online []uuid.UUID
}

func (s *stubSessions) Stats() realtime.Stats { return s.stats }

func (s *stubSessions) OnlineUsers() []uuid.UUID { return s.online }

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NoError(t, json.Unmarshal(body.Data, out))
}

func TestRealtimeHandler_GetStats(t *testing.T) {
	sessions := &stubSessions{stats: realtime.Stats{
		ConnectedUsers:         3,
		MapViewers:             2,
		ActiveGeographicRooms:  5,
		TotalRoomSubscriptions: 9,
	}}
	h := NewRealtimeHandler(RealtimeHandlerParams{SessionUC: sessions})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/realtime/stats", nil), rec)

	require.NoError(t, h.GetStats(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var stats realtime.Stats
	decodeData(t, rec, &stats)
	assert.Equal(t, sessions.stats, stats)
}

func TestRealtimeHandler_GetOnlineUsers(t *testing.T) {
	sessions := &stubSessions{online: []uuid.UUID{uuid.New(), uuid.New()}}
	h := NewRealtimeHandler(RealtimeHandlerParams{SessionUC: sessions})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/realtime/online-users", nil), rec)

	require.NoError(t, h.GetOnlineUsers(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var got OnlineUsersResponse
	decodeData(t, rec, &got)
	assert.Equal(t, 2, got.Count)
	assert.ElementsMatch(t, sessions.online, got.Users)
}
