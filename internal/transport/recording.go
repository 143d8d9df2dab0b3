package transport

import (
	"context"
	"sync"

	"multirpg/internal/dispatch"
)

// SentMessage is one message captured by a RecordingConn
type SentMessage struct {
	Dest dispatch.Destination
	Text string
}

// RecordingConn is a Conn test double that captures everything sent
type RecordingConn struct {
	network string

	mu   sync.Mutex
	sent []SentMessage
}

var _ Conn = (*RecordingConn)(nil)

// NewRecordingConn creates a recording connection for the given network
func NewRecordingConn(network string) *RecordingConn {
	return &RecordingConn{network: network}
}

func (c *RecordingConn) Network() string {
	return c.network
}

func (c *RecordingConn) Send(_ context.Context, dest dispatch.Destination, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, SentMessage{Dest: dest, Text: text})
	return nil
}

// Sent returns a copy of everything delivered so far
func (c *RecordingConn) Sent() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SentMessage(nil), c.sent...)
}
