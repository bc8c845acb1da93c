// Package metrics exposes realtime fan-out activity as Prometheus collectors.
package metrics

import (
	"strconv"

	"beacon/internal/domain/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "beacon"

// Realtime holds the realtime collectors. It implements service.RealtimeMetrics.
type Realtime struct {
	ConnectedSessions prometheus.Gauge
	MapViewers        prometheus.Gauge
	TierNotifications *prometheus.CounterVec
	RoomBroadcasts    *prometheus.CounterVec
	DroppedFrames     prometheus.Counter
	HandlerErrors     *prometheus.CounterVec
	MapInteractions   *prometheus.CounterVec
}

var _ service.RealtimeMetrics = (*Realtime)(nil)

// NewRealtime registers the realtime collectors on reg.
func NewRealtime(reg prometheus.Registerer) *Realtime {
	factory := promauto.With(reg)

	return &Realtime{
		ConnectedSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_sessions",
			Help:      "Current number of connected realtime sessions",
		}),
		MapViewers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_viewers",
			Help:      "Current number of sessions viewing the map",
		}),
		TierNotifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_notifications_total",
			Help:      "Total nearby_food_added notifications sent, by tier",
		}, []string{"tier"}),
		RoomBroadcasts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_broadcast_deliveries_total",
			Help:      "Total events delivered by room and global broadcasts, by event",
		}, []string{"event"}),
		DroppedFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Total outbound events dropped because a client send buffer was full",
		}),
		HandlerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_errors_total",
			Help:      "Total inbound events whose handler failed, by event",
		}, []string{"event"}),
		MapInteractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_interactions_total",
			Help:      "Total map interactions and analytics events, by type",
		}, []string{"type"}),
	}
}

// SetSessions reports the number of connected sessions and of map viewers.
func (m *Realtime) SetSessions(connected, mapViewers int) {
	m.ConnectedSessions.Set(float64(connected))
	m.MapViewers.Set(float64(mapViewers))
}

// TierNotified counts notifications sent by one tier.
func (m *Realtime) TierNotified(tier int, count int) {
	if count == 0 {
		return
	}
	m.TierNotifications.WithLabelValues(strconv.Itoa(tier)).Add(float64(count))
}

// RoomBroadcast counts deliveries of a broadcast.
func (m *Realtime) RoomBroadcast(event string, count int) {
	if count == 0 {
		return
	}
	m.RoomBroadcasts.WithLabelValues(event).Add(float64(count))
}

// FrameDropped counts a dropped outbound event.
func (m *Realtime) FrameDropped() {
	m.DroppedFrames.Inc()
}

// HandlerFailed counts a failed inbound event.
func (m *Realtime) HandlerFailed(event string) {
	m.HandlerErrors.WithLabelValues(event).Inc()
}

// Interaction counts a map interaction or analytics event.
func (m *Realtime) Interaction(kind string) {
	m.MapInteractions.WithLabelValues(kind).Inc()
}
