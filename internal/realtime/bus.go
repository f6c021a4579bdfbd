package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dmorenov/cajadesk/pkg/logger"
	"github.com/dmorenov/cajadesk/pkg/metrics"
)

// Handler receives realtime events.
type Handler func(Event)

// Indicator renders a transient on-screen badge for an accepted event. The
// badge is independent of the toast channel and self-dismisses on the
// consumer side.
type Indicator interface {
	Flash(Event)
}

// CuePlayer plays a short audio cue for the named event kind.
type CuePlayer interface {
	Cue(kind string)
}

type subscription struct {
	id int
	fn Handler
}

// Bus fans events out to domain subscribers and wildcard subscribers.
// Domain-specific handlers run before wildcard handlers; within a tier,
// handlers run in subscription order.
type Bus struct {
	config *ConfigService

	mu       sync.RWMutex
	seq      int
	handlers map[Domain][]subscription
	wildcard []subscription

	indicator Indicator
	cues      CuePlayer
	log       *zap.Logger
}

// BusOption customises the Bus.
type BusOption func(*Bus)

// WithIndicator wires the visual indicator side effect.
func WithIndicator(indicator Indicator) BusOption {
	return func(b *Bus) { b.indicator = indicator }
}

// WithCuePlayer wires the audio cue side effect.
func WithCuePlayer(cues CuePlayer) BusOption {
	return func(b *Bus) { b.cues = cues }
}

// NewBus constructs an event bus filtered by the supplied config service.
func NewBus(config *ConfigService, opts ...BusOption) *Bus {
	b := &Bus{
		config:   config,
		handlers: make(map[Domain][]subscription),
		log:      logger.WithComponent("eventbus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for a single domain. The returned disposer
// removes exactly that handler and is safe to call more than once.
func (b *Bus) Subscribe(domain Domain, fn Handler) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.seq++
	id := b.seq
	b.handlers[domain] = append(b.handlers[domain], subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers[domain] = removeSubscription(b.handlers[domain], id)
	}
}

// SubscribeAll registers a handler invoked for every accepted event, after
// the domain-specific handlers for that event.
func (b *Bus) SubscribeAll(fn Handler) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	b.seq++
	id := b.seq
	b.wildcard = append(b.wildcard, subscription{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.wildcard = removeSubscription(b.wildcard, id)
	}
}

// Publish delivers an event to subscribers. Events for domains outside the
// configured enabled set are dropped entirely: no handler runs and no side
// effect fires. A failing handler never blocks delivery to the rest.
func (b *Bus) Publish(event Event) {
	cfg := b.config.Get()
	if !cfg.DomainEnabled(event.Domain) {
		metrics.EventsDropped.WithLabelValues(string(event.Domain)).Inc()
		return
	}

	// Snapshot under the read lock so handlers that unsubscribe mid-dispatch
	// only affect future passes.
	b.mu.RLock()
	tier := make([]subscription, 0, len(b.handlers[event.Domain])+len(b.wildcard))
	tier = append(tier, b.handlers[event.Domain]...)
	tier = append(tier, b.wildcard...)
	b.mu.RUnlock()

	for _, sub := range tier {
		b.invoke(sub, event)
	}

	metrics.EventsPublished.WithLabelValues(string(event.Domain), string(event.Action)).Inc()

	if cfg.ShowVisualIndicator && b.indicator != nil {
		b.indicator.Flash(event)
	}
	if cfg.PlaySound && b.cues != nil {
		b.cues.Cue(string(event.Domain))
	}
}

func (b *Bus) invoke(sub subscription, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("event handler panicked",
				zap.String("domain", string(event.Domain)),
				zap.Any("panic", r))
		}
	}()
	sub.fn(event)
}

func removeSubscription(subs []subscription, id int) []subscription {
	for i, sub := range subs {
		if sub.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
