// Package events provides the publish/subscribe bus that coordinates
// the settings store, display manager, registry, and icon shell.
package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/opendesk/deskshell/internal/models"
)

// EventType defines the types of events that can be emitted.
type EventType string

const (
	// Published by the settings store after a verified save.
	EventSettingsUpdated EventType = "desktop-settings-updated"

	// Published by the icon shell after applying a non-initial
	// settings update.
	EventSettingsApplied EventType = "desktop-settings-applied"

	// Published once after the shell's first successful init.
	EventIconsReady EventType = "desktop-icons-ready"

	EventAppHidden EventType = "app-hidden"
	EventAppShown  EventType = "app-shown"

	// Published by the registry when an app registers.
	EventAppRegistered EventType = "app-registered"

	// Consumed by the shell; each triggers a re-render, directly or
	// through a short debounce.
	EventSystemReady         EventType = "system-ready"
	EventOrientationChanged  EventType = "orientation-changed"
	EventDisplayResized      EventType = "display-resized"
	EventLayoutChanged       EventType = "layout-changed"
	EventDisplayForceRefresh EventType = "display-force-refresh"

	// Transient user-facing status banners (settings save/reset
	// outcomes).
	EventStatusBanner EventType = "status-banner"
)

const (
	defaultBuffer = 64
	maxBuffer     = 1024
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields.
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

// SettingsUpdatedEvent carries the full settings record after a
// verified save.
type SettingsUpdatedEvent struct {
	BaseEvent
	Settings models.Settings
}

// SettingsAppliedEvent carries the behavior subset the shell merged
// into its local state.
type SettingsAppliedEvent struct {
	BaseEvent
	Behavior models.BehaviorSettings
}

// IconsReadyEvent signals the shell finished its first render.
type IconsReadyEvent struct {
	BaseEvent
	IconCount int
}

// AppEvent covers app-registered, app-hidden and app-shown.
type AppEvent struct {
	BaseEvent
	AppID string
}

// DisplayEvent covers orientation, resize, layout and force-refresh
// notifications.
type DisplayEvent struct {
	BaseEvent
	Width  int
	Height int
}

// BannerEvent is a transient status message with an auto-dismiss TTL.
type BannerEvent struct {
	BaseEvent
	Level   string // "info" or "error"
	Message string
	TTL     time.Duration
}

// Bus manages event subscriptions and publishing. Publish never
// blocks: a subscriber with a full buffer drops the event and the
// drop is counted.
type Bus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64
}

// NewBus creates a new event bus with the specified per-subscriber
// buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	if bufferSize > maxBuffer {
		bufferSize = maxBuffer
	}
	return &Bus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type.
func (b *Bus) Subscribe(eventType EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, b.bufferSize)
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events.
func (b *Bus) SubscribeAll() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, b.bufferSize)
	b.all = append(b.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// Handlers for the same event type receive events in subscription
// order; no ordering is guaranteed across unrelated event types.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			b.droppedEvents.Add(1)
		}
	}

	for _, ch := range b.all {
		select {
		case ch <- event:
		default:
			b.droppedEvents.Add(1)
		}
	}
}

// Unsubscribe removes a subscription channel from a specific event
// type. Prevents leaks from abandoned subscriptions.
func (b *Bus) Unsubscribe(eventType EventType, ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	subscribers := b.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			b.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, channels := range b.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range b.all {
		close(ch)
	}
}

// DroppedEvents returns the number of events dropped due to full
// subscriber buffers.
func (b *Bus) DroppedEvents() int64 {
	return b.droppedEvents.Load()
}

// PublishSettingsUpdated publishes the full settings record after a
// verified save.
func (b *Bus) PublishSettingsUpdated(s models.Settings) {
	b.Publish(&SettingsUpdatedEvent{
		BaseEvent: BaseEvent{EventType: EventSettingsUpdated, Time: time.Now()},
		Settings:  s,
	})
}

// PublishApp publishes an app lifecycle event (registered, hidden or
// shown).
func (b *Bus) PublishApp(eventType EventType, appID string) {
	b.Publish(&AppEvent{
		BaseEvent: BaseEvent{EventType: eventType, Time: time.Now()},
		AppID:     appID,
	})
}

// PublishDisplay publishes a display geometry event.
func (b *Bus) PublishDisplay(eventType EventType, width, height int) {
	b.Publish(&DisplayEvent{
		BaseEvent: BaseEvent{EventType: eventType, Time: time.Now()},
		Width:     width,
		Height:    height,
	})
}
