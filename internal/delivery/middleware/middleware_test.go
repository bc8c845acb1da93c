package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"beacon/config"
	deliverycontext "beacon/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware_Process(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{name: "reuses client id", header: "req-abc-123", reuse: true},
		{name: "generates when missing", header: ""},
		{name: "rejects whitespace", header: "req id"},
		{name: "rejects oversized id", header: strings.Repeat("a", maxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewRequestIDMiddleware(slog.New(slog.NewJSONHandler(&buf, nil)))

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/realtime/stats", nil)
			if tt.header != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen string
			err := m.Process(func(c echo.Context) error {
				seen = deliverycontext.GetRequestIDFromContext(c.Request().Context())
				deliverycontext.GetLoggerOrDefault(c.Request().Context(), nil).Info("handled")

				return nil
			})(c)
			require.NoError(t, err)

			if tt.reuse {
				assert.Equal(t, tt.header, seen)
			} else {
				_, parseErr := uuid.Parse(seen)
				assert.NoError(t, parseErr)
			}
			assert.Equal(t, seen, rec.Header().Get(deliverycontext.HeaderXRequestID))
			assert.Equal(t, seen, deliverycontext.GetRequestID(c))
			assert.Contains(t, buf.String(), `"request_id":"`+seen+`"`)
		})
	}
}

func newLoggerFixture(debug bool) (*LoggerMiddleware, *bytes.Buffer) {
	var buf bytes.Buffer
	cfg := &config.Config{}
	cfg.Env.Debug = debug

	return NewLoggerMiddleware(slog.New(slog.NewJSONHandler(&buf, nil)), cfg), &buf
}

func serveLogged(m *LoggerMiddleware, path string, websocket bool) {
	e := echo.New()
	e.Use(m.Handle)
	e.GET(path, func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, path+"?token=secret", nil)
	if websocket {
		req.Header.Set(echo.HeaderUpgrade, "websocket")
	}
	e.ServeHTTP(httptest.NewRecorder(), req)
}

func TestLoggerMiddleware_Handle(t *testing.T) {
	t.Run("debug logs requests", func(t *testing.T) {
		m, buf := newLoggerFixture(true)
		serveLogged(m, "/api/v1/realtime/stats", false)

		assert.Contains(t, buf.String(), `"msg":"HTTP Request"`)
		assert.Contains(t, buf.String(), `"status":204`)
	})

	t.Run("quiet without debug", func(t *testing.T) {
		m, buf := newLoggerFixture(false)
		serveLogged(m, "/api/v1/realtime/stats", false)

		assert.Empty(t, buf.String())
	})

	t.Run("probes are never logged", func(t *testing.T) {
		m, buf := newLoggerFixture(true)
		serveLogged(m, "/health", false)

		assert.Empty(t, buf.String())
	})

	t.Run("connections are logged without the token", func(t *testing.T) {
		m, buf := newLoggerFixture(false)
		serveLogged(m, "/ws", true)

		assert.Contains(t, buf.String(), `"msg":"Realtime connection closed"`)
		assert.NotContains(t, buf.String(), "secret")
	})
}
