package eventbus

import (
	"log"
	"runtime/debug"
	"sync"

	"sharefind/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventSearchTextChanged = domain.EventSearchTextChanged
	EventSessionChanged    = domain.EventSessionChanged
	EventItemKindChanged   = domain.EventItemKindChanged
	EventLookupModeChanged = domain.EventLookupModeChanged
	EventFetchStateChanged = domain.EventFetchStateChanged
	EventResultsResetBegan = domain.EventResultsResetBegan
	EventResultsResetEnded = domain.EventResultsResetEnded
	EventResultsReady      = domain.EventResultsReady
	EventSearchError       = domain.EventSearchError
	EventConfigLoaded      = domain.EventConfigLoaded
	EventConfigSaved       = domain.EventConfigSaved
)

// Re-export domain event types
type SearchTextChangedEvent = domain.SearchTextChangedEvent
type SessionChangedEvent = domain.SessionChangedEvent
type ItemKindChangedEvent = domain.ItemKindChangedEvent
type LookupModeChangedEvent = domain.LookupModeChangedEvent
type FetchStateChangedEvent = domain.FetchStateChangedEvent
type ResultsResetBeganEvent = domain.ResultsResetBeganEvent
type ResultsResetEndedEvent = domain.ResultsResetEndedEvent
type ResultsReadyEvent = domain.ResultsReadyEvent
type SearchErrorEvent = domain.SearchErrorEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Stop()
}

// subscription pairs a handler with an id so unsubscribing can find it again
type subscription struct {
	id      int
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[EventType][]subscription

	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	quitOnce  sync.Once
}

// New creates a new event bus
func New() EventBus {
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 1000),
		quit:      make(chan struct{}),
	}

	// Start the event dispatcher
	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers. Events are delivered in
// publish order; handlers for one event run before the next event is taken.
func (b *bus) Publish(event DomainEvent) {
	select {
	case b.eventChan <- event:
		// Event sent successfully
	default:
		// Channel full, log and drop
		log.Printf("Event bus channel full, dropping event: %v", event.Type())
	}
}

// Stop shuts the dispatcher down and returns once it has exited. Events
// published after Stop are silently dropped.
func (b *bus) Stop() {
	b.quitOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	// Return unsubscribe function
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			// Get handlers for this event type
			b.mu.RLock()
			subs := b.handlers[event.Type()]
			// Make a copy to avoid holding the lock during handler execution
			subsCopy := make([]subscription, len(subs))
			copy(subsCopy, subs)
			b.mu.RUnlock()

			// Handlers run inline so that subscribers observe events in the
			// exact order they were published; the reset-began/reset-ended
			// bracketing around a result swap depends on this.
			for _, s := range subsCopy {
				b.call(s.handler, event)
			}

		case <-b.quit:
			// Drain remaining events
			for {
				select {
				case <-b.eventChan:
					// Discard event
				default:
					return
				}
			}
		}
	}
}

// call invokes a handler, recovering from panics so one bad subscriber
// cannot take down the dispatcher.
func (b *bus) call(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Event handler panic for %s: %v\nStack: %s", event.Type(), r, debug.Stack())
		}
	}()
	h(event)
}
