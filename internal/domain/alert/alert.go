// Package alert publishes the transient user-visible message describing the
// most recent forced logout. An alert stays pending for a fixed display
// window and then clears itself; nothing mutates it in between.
package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDisplayWindow is how long a published alert stays pending.
const DefaultDisplayWindow = 5 * time.Second

// Alert is a single forced-logout notification.
type Alert struct {
	// ID is unique per publication.
	ID string
	// Kind is the machine-readable invalidation reason.
	Kind string
	// Message is the user-facing text.
	Message string
	// CreatedAt is when the alert was published.
	CreatedAt time.Time
}

// Broker holds at most one pending alert and fans publications out to
// subscribers. It implements session.AlertSink.
type Broker struct {
	window time.Duration

	mu         sync.Mutex
	pending    *Alert
	clearTimer *time.Timer
	subs       map[int]func(Alert)
	nextSub    int
	closed     bool
}

// NewBroker creates a Broker. A zero window means DefaultDisplayWindow.
func NewBroker(window time.Duration) *Broker {
	if window <= 0 {
		window = DefaultDisplayWindow
	}
	return &Broker{
		window: window,
		subs:   make(map[int]func(Alert)),
	}
}

// Publish records a new pending alert, replacing any prior one, and delivers
// it to subscribers. The alert auto-clears after the display window.
func (b *Broker) Publish(kind, message string) {
	a := Alert{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.pending = &a
	if b.clearTimer != nil {
		b.clearTimer.Stop()
	}
	id := a.ID
	b.clearTimer = time.AfterFunc(b.window, func() { b.clear(id) })

	fns := make([]func(Alert), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(a)
	}
}

// clear drops the pending alert if it is still the one that armed the timer.
func (b *Broker) clear(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending != nil && b.pending.ID == id {
		b.pending = nil
		b.clearTimer = nil
	}
}

// Pending returns the alert currently on display, or nil.
func (b *Broker) Pending() *Alert {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return nil
	}
	a := *b.pending
	return &a
}

// Subscription is the handle returned by Subscribe. Cancel deregisters; a
// remounted consumer must cancel its previous subscription before
// re-subscribing so one invalidation never fans out twice to the same
// surface.
type Subscription struct {
	b  *Broker
	id int
}

// Subscribe registers a delivery callback. Callbacks run on the publishing
// goroutine and must not block.
func (b *Broker) Subscribe(fn func(Alert)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextSub++
	id := b.nextSub
	b.subs[id] = fn
	return Subscription{b: b, id: id}
}

// Cancel deregisters the subscription. Safe to call twice.
func (s Subscription) Cancel() {
	if s.b == nil {
		return
	}
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	delete(s.b.subs, s.id)
}

// Close stops the auto-clear timer and drops all subscriptions. Publications
// after Close are ignored.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.clearTimer != nil {
		b.clearTimer.Stop()
		b.clearTimer = nil
	}
	b.pending = nil
	b.subs = make(map[int]func(Alert))
}
