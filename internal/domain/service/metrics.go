package service

// RealtimeMetrics records realtime fan-out activity.
type RealtimeMetrics interface {
	// SetSessions reports the number of connected sessions and of map viewers.
	SetSessions(connected, mapViewers int)
	// TierNotified counts notifications sent by one tier of a new-listing broadcast.
	TierNotified(tier int, count int)
	// RoomBroadcast counts deliveries of a room or global broadcast.
	RoomBroadcast(event string, count int)
	// FrameDropped counts an outbound event discarded because a client fell behind.
	FrameDropped()
	// HandlerFailed counts an inbound event whose handler returned an error.
	HandlerFailed(event string)
	// Interaction counts a map interaction or analytics event.
	Interaction(kind string)
}
