// Package realtime provides an in-memory connection that records emitted events.
package realtime

import (
	"sync"

	"beacon/internal/domain/realtime"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrConnClosed is returned by Emit after Close.
var ErrConnClosed = errors.New("connection closed")

// Event is one recorded emission.
type Event struct {
	Name    string
	Payload any
}

// Conn is a realtime.Conn that keeps every event it receives.
type Conn struct {
	id     realtime.ConnID
	userID uuid.UUID

	mu     sync.Mutex
	events []Event
	closed bool
}

// NewConn creates a recording connection.
func NewConn(id realtime.ConnID, userID uuid.UUID) *Conn {
	return &Conn{id: id, userID: userID}
}

func (c *Conn) ID() realtime.ConnID { return c.id }

func (c *Conn) UserID() uuid.UUID { return c.userID }

func (c *Conn) Emit(event string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	c.events = append(c.events, Event{Name: event, Payload: payload})

	return nil
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	return nil
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// Events returns a copy of every recorded event.
func (c *Conn) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Event(nil), c.events...)
}

// Named returns the payloads of the recorded events called name.
func (c *Conn) Named(name string) []any {
	c.mu.Lock()
	defer c.mu.Unlock()

	payloads := make([]any, 0)
	for _, e := range c.events {
		if e.Name == name {
			payloads = append(payloads, e.Payload)
		}
	}

	return payloads
}

// Reset forgets the recorded events.
func (c *Conn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = nil
}
