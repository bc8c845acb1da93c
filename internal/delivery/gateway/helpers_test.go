package gateway

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"beacon/config"
	"beacon/internal/domain/entity"
	domainerrors "beacon/internal/domain/errors"
	"beacon/internal/domain/realtime"
	"beacon/internal/infra/metrics"
	"beacon/internal/usecase"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx/fxtest"
)

const validToken = "valid-token"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	return cfg
}

// fakeSessions accepts validToken for its user and records connection lifecycle calls.
type fakeSessions struct {
	usecase.SessionUsecase

	user       *entity.User
	connectErr error

	mu           sync.Mutex
	connected    []realtime.ConnID
	disconnected []realtime.ConnID
	joined       []uuid.UUID
	touched      []realtime.ConnID
}

func (f *fakeSessions) Authenticate(_ context.Context, token string) (*entity.User, error) {
	if token != validToken {
		return nil, domainerrors.ErrAuthenticationFailed
	}

	return f.user, nil
}

func (f *fakeSessions) Connect(_ context.Context, conn realtime.Conn, user *entity.User) (*realtime.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.connected = append(f.connected, conn.ID())
	if f.connectErr != nil {
		return nil, f.connectErr
	}

	return realtime.NewSession(user.ID, user.Name, conn.ID(), user.CreatedAt, 0), nil
}

func (f *fakeSessions) Disconnect(_ context.Context, conn realtime.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disconnected = append(f.disconnected, conn.ID())
}

func (f *fakeSessions) JoinConversation(_ context.Context, _ realtime.Conn, in *usecase.ConversationRoomInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.joined = append(f.joined, in.ConversationID)

	return nil
}

func (f *fakeSessions) Touch(conn realtime.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.touched = append(f.touched, conn.ID())
}

func (f *fakeSessions) counts() (connected, disconnected int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.connected), len(f.disconnected)
}

// fakeMaps records the map events it receives. Search always panics.
type fakeMaps struct {
	usecase.MapUsecase

	err error

	mu        sync.Mutex
	calls     []string
	viewports []*usecase.ViewportChangeInput
	areas     []*usecase.JoinAreaInput
}

func (f *fakeMaps) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, name)

	return f.err
}

func (f *fakeMaps) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeMaps) EndMapSession(context.Context, realtime.Conn) error {
	return f.record(EventMapSessionEnd)
}

func (f *fakeMaps) ChangeViewport(_ context.Context, _ realtime.Conn, in *usecase.ViewportChangeInput) error {
	f.mu.Lock()
	f.viewports = append(f.viewports, in)
	f.mu.Unlock()

	return f.record(EventMapViewportChange)
}

func (f *fakeMaps) JoinArea(_ context.Context, _ realtime.Conn, in *usecase.JoinAreaInput) (string, error) {
	f.mu.Lock()
	f.areas = append(f.areas, in)
	f.mu.Unlock()

	return "51.507_-0.128_500", f.record(EventJoinArea)
}

func (f *fakeMaps) MarkerViewed(context.Context, realtime.Conn, *usecase.MarkerViewedInput) error {
	return f.record(EventFoodMarkerViewed)
}

func (f *fakeMaps) Search(context.Context, realtime.Conn, *usecase.MapSearchInput) error {
	panic("search index unavailable")
}

// fakeMessaging records typing indicators and sent messages.
type fakeMessaging struct {
	usecase.MessagingUsecase

	mu     sync.Mutex
	typing []bool
	sent   []*usecase.SendMessageInput
}

func (f *fakeMessaging) SendMessage(_ context.Context, _ realtime.Conn, in *usecase.SendMessageInput) (*entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, in)

	return &entity.Message{ID: uuid.New(), ConversationID: in.ConversationID}, nil
}

func (f *fakeMessaging) Typing(_ context.Context, _ realtime.Conn, _ *usecase.TypingInput, started bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.typing = append(f.typing, started)

	return nil
}

type gatewayFixture struct {
	lc        *fxtest.Lifecycle
	gateway   *Gateway
	sessions  *fakeSessions
	maps      *fakeMaps
	messaging *fakeMessaging
	metrics   *metrics.Realtime
}

func newGatewayFixture(t *testing.T, cfg *config.Config) *gatewayFixture {
	f := &gatewayFixture{
		lc: fxtest.NewLifecycle(t),
		sessions: &fakeSessions{
			user: &entity.User{ID: uuid.New(), Name: "Ada"},
		},
		maps:      &fakeMaps{},
		messaging: &fakeMessaging{},
		metrics:   metrics.NewRealtime(prometheus.NewRegistry()),
	}
	f.gateway = NewGateway(GatewayParams{
		Lc:        f.lc,
		Sessions:  f.sessions,
		Maps:      f.maps,
		Messaging: f.messaging,
		Metrics:   f.metrics,
		Config:    cfg,
		Logger:    discardLogger(),
	})

	return f
}
