package realtime

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"golang.org/x/time/rate"
)

// SessionState is the lifecycle stage of a Session.
type SessionState string

const (
	SessionConnected    SessionState = "connected"
	SessionDisconnected SessionState = "disconnected"
)

// Price range modes understood by the notification filter.
const (
	PriceRangeAll  = "all"
	PriceRangeFree = "free"
	PriceRangePaid = "paid"
)

// Notification frequencies. Minimal only lets hot deals through.
const (
	FrequencyNormal  = "normal"
	FrequencyMinimal = "minimal"
)

// ShareLevelNone marks a location update the user does not want shared.
const ShareLevelNone = "none"

// DefaultNotifyRadius is the notifyRadius of a fresh session, in meters.
const DefaultNotifyRadius = 5000

// Preferences controls which listing notifications a session receives.
type Preferences struct {
	NotifyRadius    float64  `json:"notifyRadius"`
	Categories      []string `json:"categories"`
	PriceRange      string   `json:"priceRange"`
	HotDealsOnly    bool     `json:"hotDealsOnly"`
	RealTimeUpdates bool     `json:"realTimeUpdates"`
	SoundEnabled    bool     `json:"soundEnabled"`
	Frequency       string   `json:"frequency"`
}

// DefaultPreferences returns the preferences every new session starts with.
func DefaultPreferences() Preferences {
	return Preferences{
		NotifyRadius:    DefaultNotifyRadius,
		Categories:      []string{},
		PriceRange:      PriceRangeAll,
		HotDealsOnly:    false,
		RealTimeUpdates: true,
		SoundEnabled:    false,
		Frequency:       FrequencyNormal,
	}
}

// PreferencesPatch is a partial preferences update. Nil fields keep their current value;
// an empty non-nil Categories clears the allow-list, empty strings are ignored.
type PreferencesPatch struct {
	NotifyRadius    *float64 `json:"notifyRadius,omitempty" validate:"omitempty,gte=0,lte=100000"`
	Categories      []string `json:"categories,omitempty" validate:"omitempty,dive,required"`
	PriceRange      string   `json:"priceRange,omitempty" validate:"omitempty,oneof=all free paid"`
	HotDealsOnly    *bool    `json:"hotDealsOnly,omitempty"`
	RealTimeUpdates *bool    `json:"realTimeUpdates,omitempty"`
	SoundEnabled    *bool    `json:"soundEnabled,omitempty"`
	Frequency       string   `json:"frequency,omitempty" validate:"omitempty,oneof=normal minimal"`
}

// Apply returns p with the patch applied.
func (patch *PreferencesPatch) Apply(p Preferences) Preferences {
	if patch == nil {
		return p
	}
	if patch.NotifyRadius != nil {
		p.NotifyRadius = *patch.NotifyRadius
	}
	if patch.Categories != nil {
		p.Categories = slices.Clone(patch.Categories)
	}
	if patch.PriceRange != "" {
		p.PriceRange = patch.PriceRange
	}
	if patch.HotDealsOnly != nil {
		p.HotDealsOnly = *patch.HotDealsOnly
	}
	if patch.RealTimeUpdates != nil {
		p.RealTimeUpdates = *patch.RealTimeUpdates
	}
	if patch.SoundEnabled != nil {
		p.SoundEnabled = *patch.SoundEnabled
	}
	if patch.Frequency != "" {
		p.Frequency = patch.Frequency
	}
	if p.Frequency == "" {
		p.Frequency = FrequencyNormal
	}

	return p
}

// Location is the last position reported by a session.
type Location struct {
	Point      orb.Point `json:"coordinates"`
	Accuracy   float64   `json:"accuracy"`
	ShareLevel string    `json:"shareLevel,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MapFilters are the listing filters active on the client map. They are echoed back in
// viewport updates and do not affect subscriptions.
type MapFilters struct {
	Categories   []string `json:"categories,omitempty"`
	PriceRange   string   `json:"priceRange,omitempty" validate:"omitempty,oneof=all free paid"`
	HotDealsOnly bool     `json:"hotDealsOnly,omitempty"`
	MaxDistance  float64  `json:"maxDistance,omitempty" validate:"gte=0"`
	Query        string   `json:"query,omitempty"`
}

// Viewport is the visible map area of a session.
type Viewport struct {
	Bounds  orb.Bound
	Zoom    float64
	Center  *orb.Point
	Filters MapFilters
}

// Session is the presence record of one connected user. A session is mutated by its own
// connection; other goroutines read it through Snapshot.
type Session struct {
	UserID      uuid.UUID
	UserName    string
	ConnID      ConnID
	ConnectedAt time.Time

	mu          sync.Mutex
	state       SessionState
	location    *Location
	viewport    *Viewport
	preferences Preferences
	viewingMap  bool
	lastSeen    time.Time
	debounce    Timer
	locations   *rate.Limiter
}

// SessionSnapshot is a point-in-time copy of a Session.
type SessionSnapshot struct {
	UserID      uuid.UUID
	UserName    string
	ConnID      ConnID
	State       SessionState
	Location    *Location
	Viewport    *Viewport
	Preferences Preferences
	ViewingMap  bool
	LastSeen    time.Time
}

// NewSession creates a connected session with default preferences. locationEvery is the
// minimum spacing between accepted location updates.
func NewSession(userID uuid.UUID, userName string, connID ConnID, now time.Time, locationEvery time.Duration) *Session {
	return &Session{
		UserID:      userID,
		UserName:    userName,
		ConnID:      connID,
		ConnectedAt: now,
		state:       SessionConnected,
		preferences: DefaultPreferences(),
		lastSeen:    now,
		locations:   rate.NewLimiter(rate.Every(locationEvery), 1),
	}
}

// Snapshot returns a copy of the session that is safe to read without locking.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		UserID:      s.UserID,
		UserName:    s.UserName,
		ConnID:      s.ConnID,
		State:       s.state,
		Preferences: s.preferences,
		ViewingMap:  s.viewingMap,
		LastSeen:    s.lastSeen,
	}
	snap.Preferences.Categories = slices.Clone(s.preferences.Categories)
	if s.location != nil {
		loc := *s.location
		snap.Location = &loc
	}
	if s.viewport != nil {
		vp := *s.viewport
		vp.Filters.Categories = slices.Clone(s.viewport.Filters.Categories)
		snap.Viewport = &vp
	}

	return snap
}

// State returns the lifecycle stage of the session.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Touch records activity on the session.
func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = now
}

// StartMap marks the session as viewing the map with the given viewport, merging patch
// into the current preferences.
func (s *Session) StartMap(vp *Viewport, patch *PreferencesPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewingMap = true
	s.viewport = vp
	s.preferences = patch.Apply(s.preferences)
}

// EndMap clears the viewport and the map-viewing flag.
func (s *Session) EndMap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewingMap = false
	s.viewport = nil
}

// SetViewport replaces the stored viewport.
func (s *Session) SetViewport(vp *Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewport = vp
}

// SetFilters replaces the filters of the stored viewport and reports whether there was one.
func (s *Session) SetFilters(filters MapFilters) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.viewport == nil {
		return false
	}
	s.viewport.Filters = filters

	return true
}

// SetLocation stores the last reported position.
func (s *Session) SetLocation(loc Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.location = &loc
}

// UpdatePreferences merges patch into the current preferences and returns the result.
func (s *Session) UpdatePreferences(patch *PreferencesPatch) Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.preferences = patch.Apply(s.preferences)
	p := s.preferences
	p.Categories = slices.Clone(p.Categories)

	return p
}

// AllowLocationUpdate reports whether a location update at now fits the throttle.
func (s *Session) AllowLocationUpdate(now time.Time) bool {
	return s.locations.AllowN(now, 1)
}

// Debounce replaces any pending debounced callback of the session with f, due after d.
// Nothing is scheduled once the session is disconnected.
func (s *Session) Debounce(clock Clock, d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	if s.state == SessionDisconnected {
		return
	}

	var timer Timer
	timer = clock.AfterFunc(d, func() {
		s.mu.Lock()
		current := s.debounce == timer
		if current {
			s.debounce = nil
		}
		s.mu.Unlock()

		if current {
			f()
		}
	})
	s.debounce = timer
}

// Close moves the session to Disconnected and cancels its pending debounce.
func (s *Session) Close(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = SessionDisconnected
	s.viewingMap = false
	s.lastSeen = now
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
}

// ViewingMap reports whether the session has an active map session.
func (s *Session) ViewingMap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.viewingMap
}
