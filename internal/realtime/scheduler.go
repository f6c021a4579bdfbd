package realtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dmorenov/cajadesk/pkg/logger"
	"github.com/dmorenov/cajadesk/pkg/metrics"
)

// Scheduler owns one repeating ticker per watched domain. Each tick runs the
// domain's differ and forwards produced events to the bus. Ticks are gated by
// the visibility monitor: a backgrounded surface keeps its tickers armed but
// performs no work.
type Scheduler struct {
	bus        *Bus
	config     *ConfigService
	visibility *Visibility
	differs    map[Domain]Differ
	log        *zap.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewScheduler constructs a scheduler over the supplied differs. It also
// registers itself as the config service's scheduling-change hook.
func NewScheduler(bus *Bus, config *ConfigService, visibility *Visibility, differs []Differ) *Scheduler {
	byDomain := make(map[Domain]Differ, len(differs))
	for _, differ := range differs {
		byDomain[differ.Domain()] = differ
	}

	s := &Scheduler{
		bus:        bus,
		config:     config,
		visibility: visibility,
		differs:    byDomain,
		log:        logger.WithComponent("scheduler"),
	}
	config.OnSchedulingChange(s.Restart)
	return s
}

// Start installs one ticker per registered domain at the configured interval.
// It is idempotent: an already-running scheduler is stopped first, so there
// is never more than one ticker set per domain. When polling is disabled by
// config, Start is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	cfg := s.config.Get()
	if !cfg.Enabled {
		s.log.Info("polling disabled by config")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	interval := cfg.PollInterval()
	for domain, differ := range s.differs {
		s.wg.Add(1)
		go s.loop(ctx, domain, differ, interval)
	}
	s.log.Info("polling started",
		zap.Duration("interval", interval),
		zap.Int("domains", len(s.differs)))
}

// Stop clears every ticker and waits for in-flight ticks to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Restart stops then starts the scheduler. Stop waits for the previous
// ticker goroutines to drain, so two ticker sets can never overlap for the
// same domain. That wait also means Restart must not be called from a bus
// handler running inside a poll tick: the tick goroutine would be waiting
// on itself. Config updates arrive on HTTP goroutines, which is safe.
func (s *Scheduler) Restart() {
	s.Stop()
	s.Start()
}

// Running reports whether any domain tickers are installed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) stopLocked() {
	if !s.running {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil
	s.running = false
	s.log.Info("polling stopped")
}

func (s *Scheduler) loop(ctx context.Context, domain Domain, differ Differ, interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, domain, differ)
		}
	}
}

// tick performs one poll pass for a domain. Differ failures and panics are
// contained here so one domain cannot stall the others.
func (s *Scheduler) tick(ctx context.Context, domain Domain, differ Differ) {
	if !s.visibility.Live() {
		metrics.PollTicks.WithLabelValues(string(domain), "skipped").Inc()
		return
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.PollTicks.WithLabelValues(string(domain), "error").Inc()
			s.log.Error("differ panicked",
				zap.String("domain", string(domain)),
				zap.Any("panic", r))
		}
	}()

	events, err := differ.Detect(ctx)
	if err != nil {
		metrics.PollTicks.WithLabelValues(string(domain), "error").Inc()
		s.log.Warn("poll tick failed",
			zap.String("domain", string(domain)),
			zap.Error(err))
		return
	}

	if len(events) == 0 {
		metrics.PollTicks.WithLabelValues(string(domain), "empty").Inc()
		return
	}

	metrics.PollTicks.WithLabelValues(string(domain), "detected").Inc()
	for _, event := range events {
		s.bus.Publish(event)
	}
}
