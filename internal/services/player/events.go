package player

import (
	"context"

	"github.com/google/uuid"

	"multirpg/internal/metrics"
	"multirpg/internal/model"
)

// AppendEvent records a world event in the ring buffer and the mirror
func (s *Service) AppendEvent(kind model.EventKind, message string, p1, p2 model.PlayerID) *model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendEventLocked(kind, message, p1, p2)
}

func (s *Service) appendEventLocked(kind model.EventKind, message string, p1, p2 model.PlayerID) *model.Event {
	ev := &model.Event{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		Player1:   p1,
		Player2:   p2,
		CreatedAt: s.clock.Now(),
	}
	s.recent = append(s.recent, ev)
	if len(s.recent) > recentEventsCap {
		s.recent = s.recent[len(s.recent)-recentEventsCap:]
	}
	metrics.RecordEvent(string(kind))

	cp := *ev
	s.mirror.enqueue("append event", func(ctx context.Context) error {
		return s.storage.AppendEvent(ctx, &cp)
	})
	return ev
}

// RecentEvents returns up to limit events, newest first
func (s *Service) RecentEvents(limit int) []*model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]*model.Event, 0, limit)
	for i := len(s.recent) - 1; i >= len(s.recent)-limit; i-- {
		cp := *s.recent[i]
		out = append(out, &cp)
	}
	return out
}
