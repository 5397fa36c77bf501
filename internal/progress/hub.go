package progress

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	subscriberBuffer = 64
	sinkTimeout      = 5 * time.Second
)

// Publisher accepts progress events. Implementations must not block the caller on slow consumers.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Sink receives every published event, e.g. for fan-out to a message broker.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

type subscriber struct {
	programID string
	ch        chan Event
}

// Hub is an in-process pub/sub for progress events. Safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]*subscriber
	nextID int
	sinks  []Sink
	log    logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger, sinks ...Sink) *Hub {
	return &Hub{subs: make(map[int]*subscriber), sinks: sinks, log: log}
}

// Subscribe returns a channel of events for programID, or for all programs when programID is empty.
// The cancel func unsubscribes and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(programID string) (<-chan Event, func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	sub := &subscriber{programID: programID, ch: make(chan Event, subscriberBuffer)}
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
}

// Publish delivers e to matching subscribers without blocking; a full subscriber drops the event.
// Sinks are called asynchronously.
func (h *Hub) Publish(_ context.Context, e Event) {
	h.mu.RLock()
	for _, sub := range h.subs {
		if sub.programID != "" && sub.programID != e.ProgramID {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			h.log.WithFields(logrus.Fields{"program_id": e.ProgramID, "type": e.Type}).Debug("progress: subscriber full, event dropped")
		}
	}
	h.mu.RUnlock()

	for _, s := range h.sinks {
		go func(s Sink) {
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			defer cancel()
			if err := s.Send(ctx, e); err != nil {
				h.log.WithError(err).WithField("program_id", e.ProgramID).Warn("progress: sink send failed")
			}
		}(s)
	}
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
