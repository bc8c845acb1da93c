package realtime

import (
	"sort"
	"sync"
)

// ConnID identifies one live realtime connection.
type ConnID string

// Index is a room membership table: which connections are in a room and which rooms a
// connection is in. Rooms with no members are removed.
type Index struct {
	mu      sync.RWMutex
	members map[string]map[ConnID]struct{}
	rooms   map[ConnID]map[string]struct{}
}

// NewIndex creates an empty membership table.
func NewIndex() *Index {
	return &Index{
		members: make(map[string]map[ConnID]struct{}),
		rooms:   make(map[ConnID]map[string]struct{}),
	}
}

// Subscribe adds conn to room and reports whether it was not already a member.
func (x *Index) Subscribe(conn ConnID, room string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	members, ok := x.members[room]
	if !ok {
		members = make(map[ConnID]struct{})
		x.members[room] = members
	}
	if _, exists := members[conn]; exists {
		return false
	}
	members[conn] = struct{}{}

	rooms, ok := x.rooms[conn]
	if !ok {
		rooms = make(map[string]struct{})
		x.rooms[conn] = rooms
	}
	rooms[room] = struct{}{}

	return true
}

// Unsubscribe removes conn from room and reports whether it was a member.
func (x *Index) Unsubscribe(conn ConnID, room string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	return x.removeLocked(conn, room)
}

// UnsubscribeAll removes conn from every room it is in and returns those rooms.
func (x *Index) UnsubscribeAll(conn ConnID) []string {
	x.mu.Lock()
	defer x.mu.Unlock()

	held := make([]string, 0, len(x.rooms[conn]))
	for room := range x.rooms[conn] {
		held = append(held, room)
	}
	for _, room := range held {
		x.removeLocked(conn, room)
	}
	sort.Strings(held)

	return held
}

// Subscribers returns the members of room in a stable order.
func (x *Index) Subscribers(room string) []ConnID {
	x.mu.RLock()
	defer x.mu.RUnlock()

	members := x.members[room]
	conns := make([]ConnID, 0, len(members))
	for conn := range members {
		conns = append(conns, conn)
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i] < conns[j] })

	return conns
}

// Has reports whether conn is a member of room.
func (x *Index) Has(conn ConnID, room string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	_, ok := x.members[room][conn]

	return ok
}

// RoomsOf returns the rooms conn is in, sorted.
func (x *Index) RoomsOf(conn ConnID) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	rooms := make([]string, 0, len(x.rooms[conn]))
	for room := range x.rooms[conn] {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)

	return rooms
}

// Exists reports whether room has at least one member.
func (x *Index) Exists(room string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	_, ok := x.members[room]

	return ok
}

// RoomCount returns the number of non-empty rooms.
func (x *Index) RoomCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	return len(x.members)
}

// SubscriptionCount returns the total number of (room, connection) memberships.
func (x *Index) SubscriptionCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	total := 0
	for _, members := range x.members {
		total += len(members)
	}

	return total
}

func (x *Index) removeLocked(conn ConnID, room string) bool {
	members, ok := x.members[room]
	if !ok {
		return false
	}
	if _, exists := members[conn]; !exists {
		return false
	}

	delete(members, conn)
	if len(members) == 0 {
		delete(x.members, room)
	}

	if rooms, ok := x.rooms[conn]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(x.rooms, conn)
		}
	}

	return true
}
