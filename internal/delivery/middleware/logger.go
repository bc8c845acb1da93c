package middleware

import (
	"log/slog"
	"time"

	"beacon/config"
	deliverycontext "beacon/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// Health and metrics endpoints are polled constantly and are never logged.
var quietPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// LoggerMiddleware logs HTTP requests when debug is enabled. Realtime connections are
// always logged once, when they close.
type LoggerMiddleware struct {
	logger *slog.Logger
	debug  bool
}

// NewLoggerMiddleware creates a new logger middleware
func NewLoggerMiddleware(logger *slog.Logger, config *config.Config) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger: logger,
		debug:  config.Env.Debug,
	}
}

// Handle processes request logging
func (m *LoggerMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, quiet := quietPaths[c.Path()]; quiet {
			return next(c)
		}

		websocket := c.IsWebSocket()
		if !m.debug && !websocket {
			return next(c)
		}

		start := time.Now()
		err := next(c)
		if websocket {
			m.logConnection(c, start, err)
		} else {
			m.logRequest(c, start, err)
		}

		return err
	}
}

func (m *LoggerMiddleware) logRequest(c echo.Context, start time.Time, err error) {
	req := c.Request()
	res := c.Response()

	fields := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("uri", req.URL.Path),
		slog.Int("status", res.Status),
		slog.Duration("latency", time.Since(start)),
		slog.String("remote_ip", c.RealIP()),
		slog.String("user_agent", req.UserAgent()),
	}
	if userID, ok := deliverycontext.GetUserID(c); ok {
		fields = append(fields, slog.String("user_id", userID.String()))
	}
	if err != nil {
		fields = append(fields, slog.Any("error", err))
	}

	logLevel := slog.LevelInfo
	if res.Status >= 400 {
		logLevel = slog.LevelWarn
	}
	if res.Status >= 500 {
		logLevel = slog.LevelError
	}

	m.scoped(c).LogAttrs(req.Context(), logLevel, "HTTP Request", fields...)
}

// logConnection reports the lifetime of an upgraded connection. The query is omitted
// because it carries the handshake token.
func (m *LoggerMiddleware) logConnection(c echo.Context, start time.Time, err error) {
	fields := []slog.Attr{
		slog.Duration("duration", time.Since(start)),
		slog.String("remote_ip", c.RealIP()),
		slog.String("user_agent", c.Request().UserAgent()),
	}
	if err != nil {
		fields = append(fields, slog.Any("error", err))
	}

	m.scoped(c).LogAttrs(c.Request().Context(), slog.LevelInfo, "Realtime connection closed", fields...)
}

func (m *LoggerMiddleware) scoped(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)
}
