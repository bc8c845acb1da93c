// Package gateway is the websocket surface of the realtime engine: handshake, per
// connection pumps and the inbound event table.
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"time"

	"beacon/config"
	"beacon/internal/delivery/api/validator"
	deliverycontext "beacon/internal/delivery/context"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/realtime"
	"beacon/internal/domain/service"
	"beacon/internal/usecase"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const handshakeTimeout = 10 * time.Second

// handlerFunc handles the raw payload of one inbound event.
type handlerFunc func(ctx context.Context, conn realtime.Conn, data json.RawMessage) error

// GatewayParams holds dependencies for Gateway, injected by Fx.
type GatewayParams struct {
	fx.In

	Lc        fx.Lifecycle
	Sessions  usecase.SessionUsecase
	Maps      usecase.MapUsecase
	Messaging usecase.MessagingUsecase
	Metrics   service.RealtimeMetrics
	Config    *config.Config
	Logger    *slog.Logger
}

// Gateway upgrades authenticated HTTP requests to realtime connections.
type Gateway struct {
	sessions  usecase.SessionUsecase
	maps      usecase.MapUsecase
	messaging usecase.MessagingUsecase
	metrics   service.RealtimeMetrics
	validator *validator.Validator
	cfg       config.WebSocketConfig
	upgrader  websocket.Upgrader
	handlers  map[string]handlerFunc
	logger    *slog.Logger

	mu       sync.Mutex
	clients  map[*client]struct{}
	stopping bool
}

// NewGateway is the constructor for Gateway.
func NewGateway(params GatewayParams) *Gateway {
	g := &Gateway{
		sessions:  params.Sessions,
		maps:      params.Maps,
		messaging: params.Messaging,
		metrics:   params.Metrics,
		validator: validator.New(),
		cfg:       params.Config.WebSocket,
		logger:    params.Logger,
		clients:   make(map[*client]struct{}),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: handshakeTimeout,
		CheckOrigin:      g.checkOrigin,
	}
	g.handlers = g.routes()

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			g.closeAll()

			return nil
		},
	})

	return g
}

// ServeWS authenticates the handshake, upgrades it and serves the connection until
// it closes. A rejected handshake never reaches the session manager.
func (g *Gateway) ServeWS(c echo.Context) error {
	req := c.Request()

	user, err := g.sessions.Authenticate(req.Context(), handshakeToken(req))
	if err != nil {
		return err
	}

	ws, err := g.upgrader.Upgrade(c.Response(), req, nil)
	if err != nil {
		// The upgrader has already answered the request.
		g.logger.Warn("[Gateway] Upgrade failed", slog.Any("error", err))

		return nil
	}

	g.serve(req.Context(), newClient(ws, user.ID, g.cfg, g.metrics, g.logger), user)

	return nil
}

func (g *Gateway) serve(ctx context.Context, cl *client, user *entity.User) {
	ctx = deliverycontext.WithLogger(ctx, cl.logger)

	go cl.writePump()
	if !g.track(cl) {
		_ = cl.Close()

		return
	}
	defer g.untrack(cl)
	defer g.sessions.Disconnect(context.WithoutCancel(ctx), cl)

	if _, err := g.sessions.Connect(ctx, cl, user); err != nil {
		g.fail(ctx, cl, "connect", err)
		_ = cl.Close()

		return
	}

	cl.readPump(func(frame []byte) {
		g.dispatch(ctx, cl, frame)
	})
}

// track registers cl for shutdown. It refuses new clients once the gateway is stopping.
func (g *Gateway) track(cl *client) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopping {
		return false
	}
	g.clients[cl] = struct{}{}

	return true
}

func (g *Gateway) untrack(cl *client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.clients, cl)
}

// closeAll sends a normal close to every live connection. Their read loops then end
// and each session is disconnected as usual.
func (g *Gateway) closeAll() {
	g.mu.Lock()
	g.stopping = true
	clients := make([]*client, 0, len(g.clients))
	for cl := range g.clients {
		clients = append(clients, cl)
	}
	g.mu.Unlock()

	if len(clients) > 0 {
		g.logger.Info("[Gateway] Closing realtime connections", slog.Int("count", len(clients)))
	}
	for _, cl := range clients {
		_ = cl.Close()
	}
}

// dispatch runs the handler of one inbound frame. Handler errors and panics are
// reported to this connection only.
func (g *Gateway) dispatch(ctx context.Context, conn realtime.Conn, raw []byte) {
	frame, err := decodeFrame(raw)
	if err != nil {
		g.fail(ctx, conn, "", err)

		return
	}

	g.sessions.Touch(conn)

	handle, ok := g.handlers[frame.Event]
	if !ok {
		g.fail(ctx, conn, frame.Event, domainerrors.ErrUnknownEvent.WithDetails(frame.Event))

		return
	}

	defer func() {
		if r := recover(); r != nil {
			deliverycontext.GetLoggerOrDefault(ctx, g.logger).Error("[Gateway] Handler panicked",
				slog.String("event", frame.Event),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			g.fail(ctx, conn, frame.Event, domainerrors.ErrInternalError)
		}
	}()

	if err := handle(ctx, conn, frame.Data); err != nil {
		g.fail(ctx, conn, frame.Event, err)
	}
}

// fail emits an error event to conn. Client errors carry their details; anything else
// is reported as an internal error and logged.
func (g *Gateway) fail(ctx context.Context, conn realtime.Conn, event string, err error) {
	logger := deliverycontext.GetLoggerOrDefault(ctx, g.logger)
	if event != "" {
		g.metrics.HandlerFailed(event)
	}

	if errors.Is(err, domainerrors.ErrSessionClosed) {
		// The connection is going away; nobody is listening.
		return
	}

	code, message, clientErr := domainerrors.Describe(err)
	if clientErr {
		logger.Debug("[Gateway] Event rejected", slog.String("event", event), slog.Any("error", err))
	} else {
		logger.Error("[Gateway] Event failed", slog.String("event", event), slog.Any("error", err))
	}

	payload := realtime.ErrorEvent{Message: message, Code: code}
	_ = conn.Emit(realtime.EventError, payload)
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	if len(g.cfg.AllowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// Native clients send no Origin.
		return true
	}

	return slices.Contains(g.cfg.AllowedOrigins, origin)
}

// handshakeToken reads the access token from the token query parameter or a Bearer
// Authorization header.
func handshakeToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}

	token, ok := strings.CutPrefix(r.Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !ok {
		return ""
	}

	return token
}
