package realtime

import (
	"sort"
	"sync"

	"beacon/internal/domain/geo"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// PresenceTable holds the live session of every connected user, one per user.
type PresenceTable struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewPresenceTable creates an empty presence table.
func NewPresenceTable() *PresenceTable {
	return &PresenceTable{sessions: make(map[uuid.UUID]*Session)}
}

// Put stores s as the session of its user and returns the session it replaced, if any.
func (t *PresenceTable) Put(s *Session) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.sessions[s.UserID]
	t.sessions[s.UserID] = s

	return prev
}

// Get returns the session of userID.
func (t *PresenceTable) Get(userID uuid.UUID) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sessions[userID]

	return s, ok
}

// Remove deletes the session of userID.
func (t *PresenceTable) Remove(userID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.sessions, userID)
}

// RemoveIf deletes the session of userID only while it still belongs to conn, and
// reports whether it did.
func (t *PresenceTable) RemoveIf(userID uuid.UUID, conn ConnID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[userID]
	if !ok || s.ConnID != conn {
		return false
	}
	delete(t.sessions, userID)

	return true
}

// ForEach calls fn for every session until fn returns false. The table is not locked
// while fn runs.
func (t *PresenceTable) ForEach(fn func(*Session) bool) {
	for _, s := range t.list() {
		if !fn(s) {
			return
		}
	}
}

// Len returns the number of online users.
func (t *PresenceTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.sessions)
}

// UserIDs returns the online users in a stable order.
func (t *PresenceTable) UserIDs() []uuid.UUID {
	sessions := t.list()
	ids := make([]uuid.UUID, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.UserID)
	}

	return ids
}

// Nearby is a map-viewing session found by a radius scan.
type Nearby struct {
	Session  SessionSnapshot
	Distance float64
}

// MapViewersWithin returns the map-viewing sessions that want realtime updates and whose
// last location lies within radius meters of center, nearest first.
func (t *PresenceTable) MapViewersWithin(center orb.Point, radius float64) []Nearby {
	found := make([]Nearby, 0)

	t.ForEach(func(s *Session) bool {
		snap := s.Snapshot()
		if !snap.ViewingMap || !snap.Preferences.RealTimeUpdates || snap.Location == nil {
			return true
		}

		distance, ok := geo.DistanceMeters(&center, &snap.Location.Point)
		if ok && distance <= radius {
			found = append(found, Nearby{Session: snap, Distance: distance})
		}

		return true
	})

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Distance < found[j].Distance
	})

	return found
}

// MapViewerCount returns the number of sessions currently viewing the map.
func (t *PresenceTable) MapViewerCount() int {
	count := 0
	t.ForEach(func(s *Session) bool {
		if s.ViewingMap() {
			count++
		}

		return true
	})

	return count
}

func (t *PresenceTable) list() []*Session {
	t.mu.RLock()
	sessions := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		sessions = append(sessions, s)
	}
	t.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UserID.String() < sessions[j].UserID.String()
	})

	return sessions
}
