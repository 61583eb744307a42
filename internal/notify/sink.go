package notify

import (
	"context"
	"sync"
)

// Sink receives notifications after the emitting operation has committed.
// Publishing happens outside the storage transaction, so implementations own
// their failure handling; a sink must never fail the already-committed call.
type Sink interface {
	Publish(ctx context.Context, n Notification)
}

// MemorySink collects notifications in publish order. Used by tests and as
// the fallback when no Redis address is configured.
type MemorySink struct {
	mu   sync.Mutex
	sent []Notification
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Publish(_ context.Context, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
}

// Notifications returns a snapshot of everything published so far.
func (s *MemorySink) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Notification, len(s.sent))
	copy(out, s.sent)
	return out
}

// Last returns the most recent notification, or false when none were published.
func (s *MemorySink) Last() (Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return Notification{}, false
	}
	return s.sent[len(s.sent)-1], true
}
