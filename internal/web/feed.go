package web

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages per client
	sendBufferSize = 256
)

// feedClient represents one connected event-feed subscriber.
type feedClient struct {
	send        chan []byte
	remoteAddr  string
	connectedAt time.Time
}

// Feed fans game announcements out to SSE subscribers. There is a
// single feed for the whole realm.
type Feed struct {
	clients map[*feedClient]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan *feedClient
	unregister chan *feedClient
	broadcast  chan []byte
	done       chan struct{}
}

// NewFeed creates the event feed.
func NewFeed(logger *slog.Logger) *Feed {
	return &Feed{
		clients:    make(map[*feedClient]bool),
		logger:     logger.With(slog.String("component", "feed")),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the feed's event loop.
func (f *Feed) Run() {
	f.logger.Info("event feed started")
	for {
		select {
		case client := <-f.register:
			f.mu.Lock()
			f.clients[client] = true
			count := len(f.clients)
			f.mu.Unlock()
			f.logger.Info("feed client connected",
				slog.String("remote", client.remoteAddr),
				slog.Int("total_clients", count))

		case client := <-f.unregister:
			f.mu.Lock()
			if _, ok := f.clients[client]; ok {
				delete(f.clients, client)
				close(client.send)
				count := len(f.clients)
				f.mu.Unlock()
				f.logger.Info("feed client disconnected",
					slog.String("remote", client.remoteAddr),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", count))
			} else {
				f.mu.Unlock()
			}

		case message := <-f.broadcast:
			f.mu.RLock()
			dropped := 0
			for client := range f.clients {
				select {
				case client.send <- message:
				default:
					dropped++
				}
			}
			f.mu.RUnlock()
			if dropped > 0 {
				f.logger.Warn("feed broadcast dropped for slow clients",
					slog.Int("dropped", dropped))
			}

		case <-f.done:
			f.mu.Lock()
			for client := range f.clients {
				close(client.send)
				delete(f.clients, client)
			}
			f.mu.Unlock()
			f.logger.Info("event feed stopped")
			return
		}
	}
}

// Publish sends an announcement to every subscriber.
func (f *Feed) Publish(kind, text string) {
	msg := formatSSEMessage(kind, text)
	select {
	case f.broadcast <- msg:
	default:
		f.logger.Warn("feed broadcast dropped, buffer full")
	}
}

// Close shuts the feed down and disconnects all subscribers.
func (f *Feed) Close() {
	close(f.done)
}

// ClientCount returns the number of connected subscribers.
func (f *Feed) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// formatSSEMessage formats an SSE frame. Each line of data gets its
// own "data: " prefix as the protocol requires.
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(eventName)
	b.WriteString("\n")
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// serveFeed handles a single SSE subscriber connection.
func (f *Feed) serveFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := &feedClient{
		send:        make(chan []byte, sendBufferSize),
		remoteAddr:  r.RemoteAddr,
		connectedAt: time.Now(),
	}
	f.register <- client
	defer func() {
		f.unregister <- client
	}()

	_, _ = w.Write([]byte("event: connected\ndata: {\"status\":\"connected\"}\n\n"))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
