package impl

import (
	"io"
	"log/slog"
	"time"

	"beacon/config"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/realtime/realtimetest"
	"beacon/internal/infra/metrics"
	mockRealtime "beacon/internal/mocks/realtime"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return cfg
}

func newTestHub() (*realtime.Hub, *realtimetest.Clock) {
	clock := realtimetest.NewClock(testStart)

	return realtime.NewHub(clock, discardLogger()), clock
}

func newTestMetrics() *metrics.Realtime {
	return metrics.NewRealtime(prometheus.NewRegistry())
}

// join registers a fresh connected user on h.
func join(h *realtime.Hub, id realtime.ConnID, name string) (*mockRealtime.Conn, *realtime.Session) {
	userID := uuid.New()
	conn := mockRealtime.NewConn(id, userID)
	session := realtime.NewSession(userID, name, id, h.Now(), 0)
	h.Register(conn, session)

	return conn, session
}

func newConn(id realtime.ConnID, userID uuid.UUID) *mockRealtime.Conn {
	return mockRealtime.NewConn(id, userID)
}
