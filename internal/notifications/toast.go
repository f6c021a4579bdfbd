package notifications

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmorenov/cajadesk/pkg/logger"
	"github.com/dmorenov/cajadesk/pkg/metrics"
)

// Toast is the ephemeral projection of a just-created notification. It is
// never persisted; display subscribers self-dismiss it after TTLMs.
type Toast struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	TTLMs     int64     `json:"ttl_ms"`
	EmittedAt time.Time `json:"emitted_at"`
}

// ToastChannel delivers toasts to display subscribers, fire-and-forget. A
// subscriber registered after an emission never sees it.
type ToastChannel struct {
	mu   sync.RWMutex
	seq  int
	subs map[int]func(Toast)
	log  *zap.Logger
}

// NewToastChannel constructs an empty channel.
func NewToastChannel() *ToastChannel {
	return &ToastChannel{
		subs: make(map[int]func(Toast)),
		log:  logger.WithComponent("toast"),
	}
}

// Subscribe registers a display callback. The returned disposer is
// idempotent.
func (t *ToastChannel) Subscribe(fn func(Toast)) func() {
	if fn == nil {
		return func() {}
	}

	t.mu.Lock()
	t.seq++
	id := t.seq
	t.subs[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// Emit invokes every current subscriber with the toast. The toast is not
// retained afterward. A failing subscriber does not block the rest.
func (t *ToastChannel) Emit(toast Toast) {
	t.mu.RLock()
	ordered := make([]int, 0, len(t.subs))
	for id := range t.subs {
		ordered = append(ordered, id)
	}
	sort.Ints(ordered)
	snapshot := make([]func(Toast), 0, len(ordered))
	for _, id := range ordered {
		snapshot = append(snapshot, t.subs[id])
	}
	t.mu.RUnlock()

	for _, fn := range snapshot {
		t.deliver(fn, toast)
	}
	metrics.ToastsEmitted.Inc()
}

func (t *ToastChannel) deliver(fn func(Toast), toast Toast) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Warn("toast subscriber panicked", zap.Any("panic", r))
		}
	}()
	fn(toast)
}
