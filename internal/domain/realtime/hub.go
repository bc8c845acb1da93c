package realtime

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConversationRoom is the room name of a conversation.
func ConversationRoom(id uuid.UUID) string {
	return "conversation_" + id.String()
}

// AreaRoom is the room name of a named geographic area.
func AreaRoom(areaID string) string {
	return "geo_area_" + areaID
}

// Conn is a live client connection able to receive events.
type Conn interface {
	ID() ConnID
	UserID() uuid.UUID
	// Emit queues one event for the client. It never blocks on the network.
	Emit(event string, payload any) error
	Close() error
}

// Stats summarises the realtime state.
type Stats struct {
	ConnectedUsers         int `json:"connectedUsers"`
	MapViewers             int `json:"mapViewers"`
	ActiveGeographicRooms  int `json:"activeGeographicRooms"`
	TotalRoomSubscriptions int `json:"totalRoomSubscriptions"`
}

// Hub owns the process-wide realtime state: the connection registry, the presence table
// and the cell, area and conversation membership tables.
type Hub struct {
	mu    sync.RWMutex
	conns map[ConnID]Conn

	presence      *PresenceTable
	cells         *Index
	areas         *Index
	conversations *Index
	clock         Clock
	logger        *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(clock Clock, logger *slog.Logger) *Hub {
	return &Hub{
		conns:         make(map[ConnID]Conn),
		presence:      NewPresenceTable(),
		cells:         NewIndex(),
		areas:         NewIndex(),
		conversations: NewIndex(),
		clock:         clock,
		logger:        logger,
	}
}

// Clock returns the hub's time source.
func (h *Hub) Clock() Clock { return h.clock }

// Presence returns the presence table.
func (h *Hub) Presence() *PresenceTable { return h.presence }

// Cells returns the geo-cell membership table.
func (h *Hub) Cells() *Index { return h.cells }

// Areas returns the named-area membership table.
func (h *Hub) Areas() *Index { return h.areas }

// Conversations returns the conversation room membership table.
func (h *Hub) Conversations() *Index { return h.conversations }

// Register adds conn and makes session the presence entry of its user. It returns the
// session that was replaced, if any.
func (h *Hub) Register(conn Conn, session *Session) *Session {
	h.mu.Lock()
	h.conns[conn.ID()] = conn
	h.mu.Unlock()

	return h.presence.Put(session)
}

// Unregister removes conn and every membership it held. The presence entry of its user
// is removed only while it still belongs to conn; the result reports whether it was.
func (h *Hub) Unregister(conn ConnID, userID uuid.UUID) bool {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()

	h.cells.UnsubscribeAll(conn)
	h.areas.UnsubscribeAll(conn)
	h.conversations.UnsubscribeAll(conn)

	return h.presence.RemoveIf(userID, conn)
}

// Conn returns the live connection with id.
func (h *Hub) Conn(id ConnID) (Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.conns[id]

	return c, ok
}

// Session returns the live session of userID.
func (h *Hub) Session(userID uuid.UUID) (*Session, bool) {
	return h.presence.Get(userID)
}

// IsOnline reports whether userID has a live session.
func (h *Hub) IsOnline(userID uuid.UUID) bool {
	_, ok := h.presence.Get(userID)

	return ok
}

// Broadcast emits an event to every connection and returns how many accepted it.
func (h *Hub) Broadcast(event string, payload any) int {
	sent := 0
	for _, c := range h.connections() {
		if h.emit(c, event, payload) {
			sent++
		}
	}

	return sent
}

// EmitTo emits an event to one connection.
func (h *Hub) EmitTo(id ConnID, event string, payload any) bool {
	c, ok := h.Conn(id)
	if !ok {
		return false
	}

	return h.emit(c, event, payload)
}

// EmitToUser emits an event to the live connection of userID.
func (h *Hub) EmitToUser(userID uuid.UUID, event string, payload any) bool {
	s, ok := h.presence.Get(userID)
	if !ok {
		return false
	}

	return h.EmitTo(s.ConnID, event, payload)
}

// EmitToRoom emits an event to every member of room except exclude.
func (h *Hub) EmitToRoom(index *Index, room string, event string, payload any, exclude ConnID) int {
	return h.EmitToRooms(index, []string{room}, event, payload, exclude)
}

// EmitToRooms emits an event once to every connection in any of rooms, except exclude.
// Connections are reached in room order, then in member order.
func (h *Hub) EmitToRooms(index *Index, rooms []string, event string, payload any, exclude ConnID) int {
	seen := make(map[ConnID]struct{})
	sent := 0

	for _, room := range rooms {
		for _, id := range index.Subscribers(room) {
			if id == exclude {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			if h.EmitTo(id, event, payload) {
				sent++
			}
		}
	}

	return sent
}

// Stats returns connection and room counters.
func (h *Hub) Stats() Stats {
	return Stats{
		ConnectedUsers:         h.presence.Len(),
		MapViewers:             h.presence.MapViewerCount(),
		ActiveGeographicRooms:  h.cells.RoomCount() + h.areas.RoomCount(),
		TotalRoomSubscriptions: h.cells.SubscriptionCount() + h.areas.SubscriptionCount(),
	}
}

// Now returns the hub clock's current time.
func (h *Hub) Now() time.Time {
	return h.clock.Now()
}

func (h *Hub) connections() []Conn {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	sort.Slice(conns, func(i, j int) bool { return conns[i].ID() < conns[j].ID() })

	return conns
}

func (h *Hub) emit(c Conn, event string, payload any) bool {
	if err := c.Emit(event, payload); err != nil {
		h.logger.Debug("[Hub] Dropped event",
			slog.String("event", event),
			slog.String("connection_id", string(c.ID())),
			slog.Any("error", err),
		)

		return false
	}

	return true
}
