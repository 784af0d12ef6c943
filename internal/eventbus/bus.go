// Package eventbus provides an in-memory, asynchronous event bus. Events are
// dispatched through a buffered channel and processed by a worker pool; this
// is how the application hands "something happened" signals to the
// notification bridge without blocking request handling.
package eventbus

import (
	"log/slog"
	"sync"
	"time"
)

const (
	defaultWorkers    = 3
	defaultBufferSize = 100
)

// Bus is the interface for publishing events and managing subscribers.
type Bus interface {
	// Publish enqueues an event for the given user. It never blocks: if the
	// buffer is full, the event is dropped and a warning is logged.
	Publish(eventType, userID string, payload map[string]string)

	// Subscribe registers a listener invoked for every published event
	// (broadcast). Subscribe must be called before the first Publish.
	Subscribe(listener Listener)

	// Close stops accepting new events and waits for pending events to drain.
	Close()
}

// memoryBus is the default Bus implementation.
type memoryBus struct {
	events    chan Event
	listeners []Listener
	mu        sync.RWMutex
	wg        sync.WaitGroup
	log       *slog.Logger
}

// New creates an in-memory Bus with the given number of worker goroutines.
// workers <= 0 selects the default of 3.
func New(workers int, log *slog.Logger) Bus {
	if workers <= 0 {
		workers = defaultWorkers
	}
	b := &memoryBus{
		events: make(chan Event, defaultBufferSize),
		log:    log,
	}
	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for e := range b.events {
				b.dispatch(e)
			}
		}()
	}
	return b
}

// dispatch calls all registered listeners for the event. Each listener runs
// with panic recovery so one bad listener cannot take down the workers.
func (b *memoryBus) dispatch(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error("event listener panicked", "event_type", e.Type, "panic", r)
				}
			}()
			l(e)
		}()
	}
}

// Publish enqueues an event. If the buffer is full the event is dropped.
func (b *memoryBus) Publish(eventType, userID string, payload map[string]string) {
	e := Event{
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	select {
	case b.events <- e:
	default:
		b.log.Warn("event buffer full, dropping event", "event_type", eventType)
	}
}

// Subscribe adds a listener to receive all future events.
func (b *memoryBus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

// Close drains and closes the event channel, then waits for the workers.
func (b *memoryBus) Close() {
	close(b.events)
	b.wg.Wait()
}
