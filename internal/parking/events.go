package parking

import (
	"sync"
	"time"
)

type EventType string

const (
	EventVehicleEntry  EventType = "vehicle_entry"
	EventVehicleExit   EventType = "vehicle_exit"
	EventVehicleQueued EventType = "vehicle_queued"
	EventPaymentFailed EventType = "payment_failed"
)

// Event is one observable state change in the garage. SpaceID is empty for
// queue events and Amount is zero unless a fee was computed.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Plate     string    `json:"vehicle_plate"`
	SpaceID   string    `json:"space_id,omitempty"`
	Amount    float64   `json:"amount,omitempty"`
}

// Recorder receives every event the engine emits, in emission order. The
// engine keeps no history of its own; a recorder is the integration point
// for event consumers.
type Recorder interface {
	Append(Event)
}

// MemoryRecorder retains the most recent events up to a fixed limit.
type MemoryRecorder struct {
	mu     sync.RWMutex
	limit  int
	events []Event
}

func NewMemoryRecorder(limit int) *MemoryRecorder {
	if limit <= 0 {
		limit = 1000
	}
	return &MemoryRecorder{limit: limit}
}

func (r *MemoryRecorder) Append(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if len(r.events) > r.limit {
		r.events = append([]Event(nil), r.events[len(r.events)-r.limit:]...)
	}
}

// Recent returns up to n events, oldest first. n <= 0 returns everything
// retained.
func (r *MemoryRecorder) Recent(n int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n <= 0 || n > len(r.events) {
		n = len(r.events)
	}
	return append([]Event(nil), r.events[len(r.events)-n:]...)
}

func (r *MemoryRecorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}
