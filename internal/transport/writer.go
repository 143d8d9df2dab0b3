package transport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"multirpg/internal/dispatch"
)

// WriterConn writes outbound lines to an io.Writer, one line per message,
// prefixed with the destination. It stands in for a real protocol link:
// the process that owns the writer does the actual network framing.
type WriterConn struct {
	network string

	mu sync.Mutex
	w  io.Writer
}

// NewWriterConn creates a connection that emits lines on w
func NewWriterConn(network string, w io.Writer) *WriterConn {
	return &WriterConn{network: network, w: w}
}

// Network returns the network name
func (c *WriterConn) Network() string {
	return c.network
}

// Send writes one outbound line
func (c *WriterConn) Send(_ context.Context, dest dispatch.Destination, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "%s %s %s :%s\n", c.network, dest.Kind, dest.Target, text)
	return err
}
