package service

// EventType defines the type of event.
type EventType string

const (
	EventProfileCreated     EventType = "profile-created"
	EventProfileUpdated     EventType = "profile-updated"
	EventProfileDeleted     EventType = "profile-deleted"
	EventProfileActivated   EventType = "profile-activated"
	EventSecretsFileChanged EventType = "secrets-file-changed"
	EventSecretsFileInvalid EventType = "secrets-file-invalid"
	EventGuardViolation     EventType = "guard-violation"
)

// Event represents an event that occurred in the system. Payloads are
// summaries and reports; a passphrase never rides on the bus.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events. Subscribers
// register once during startup, before any publisher runs.
type EventBus struct {
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events.
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers.
func (eb *EventBus) Publish(event Event) {
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}
