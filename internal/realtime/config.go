package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmorenov/cajadesk/internal/database"
	"github.com/dmorenov/cajadesk/pkg/logger"
)

const configSettingKey = "realtime.config"

// Config controls the polling engine at runtime. It is loaded once at engine
// start and persisted on every mutation.
type Config struct {
	Enabled             bool     `json:"enabled"`
	PollIntervalMs      uint     `json:"poll_interval_ms"`
	EnabledDomains      []Domain `json:"enabled_domains"`
	ShowVisualIndicator bool     `json:"show_visual_indicator"`
	PlaySound           bool     `json:"play_sound"`
}

// ConfigPatch describes a partial update; nil fields are left unchanged.
type ConfigPatch struct {
	Enabled             *bool     `json:"enabled,omitempty"`
	PollIntervalMs      *uint     `json:"poll_interval_ms,omitempty"`
	EnabledDomains      *[]Domain `json:"enabled_domains,omitempty"`
	ShowVisualIndicator *bool     `json:"show_visual_indicator,omitempty"`
	PlaySound           *bool     `json:"play_sound,omitempty"`
}

// DefaultConfig returns the configuration used before any operator changes it.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		PollIntervalMs:      3000,
		EnabledDomains:      append([]Domain{DomainSystem}, WatchedDomains()...),
		ShowVisualIndicator: true,
		PlaySound:           true,
	}
}

// PollInterval returns the polling interval as a duration, enforcing a floor
// so a misconfigured interval cannot spin the scheduler.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMs < 250 {
		return 250 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// DomainEnabled reports whether events for the domain pass the bus filter.
func (c Config) DomainEnabled(domain Domain) bool {
	for _, d := range c.EnabledDomains {
		if d == domain {
			return true
		}
	}
	return false
}

// ConfigService owns the persisted realtime configuration. Updates to the
// enabled flag or the poll interval trigger the registered restart hook.
type ConfigService struct {
	settings *database.Settings

	mu      sync.RWMutex
	current Config
	restart func()
}

// NewConfigService constructs a ConfigService. Call Load before first use.
func NewConfigService(settings *database.Settings) (*ConfigService, error) {
	if settings == nil {
		return nil, fmt.Errorf("realtime config: settings store is required")
	}
	return &ConfigService{settings: settings, current: DefaultConfig()}, nil
}

// Load reads the persisted configuration, falling back to defaults when the
// stored value is missing or corrupt.
func (s *ConfigService) Load(ctx context.Context) error {
	cfg := DefaultConfig()
	found, err := s.settings.GetJSON(ctx, configSettingKey, &cfg)
	if err != nil {
		return fmt.Errorf("realtime config: load: %w", err)
	}
	if !found {
		logger.WithComponent("realtime").Debug("no stored realtime config, using defaults")
	}

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return nil
}

// Get returns the current configuration.
func (s *ConfigService) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// OnSchedulingChange registers the hook invoked when enabled or the poll
// interval changes. The scheduler registers its Restart here. The hook runs
// synchronously on the Update caller's goroutine, so Update must not be
// called from an event handler dispatched by a poll tick.
func (s *ConfigService) OnSchedulingChange(fn func()) {
	s.mu.Lock()
	s.restart = fn
	s.mu.Unlock()
}

// Update applies a partial configuration change and persists the result.
func (s *ConfigService) Update(ctx context.Context, patch ConfigPatch) (Config, error) {
	s.mu.Lock()
	cfg := s.current

	reschedule := false
	if patch.Enabled != nil && *patch.Enabled != cfg.Enabled {
		cfg.Enabled = *patch.Enabled
		reschedule = true
	}
	if patch.PollIntervalMs != nil && *patch.PollIntervalMs != cfg.PollIntervalMs {
		cfg.PollIntervalMs = *patch.PollIntervalMs
		reschedule = true
	}
	if patch.EnabledDomains != nil {
		cfg.EnabledDomains = append([]Domain(nil), (*patch.EnabledDomains)...)
	}
	if patch.ShowVisualIndicator != nil {
		cfg.ShowVisualIndicator = *patch.ShowVisualIndicator
	}
	if patch.PlaySound != nil {
		cfg.PlaySound = *patch.PlaySound
	}

	if err := s.settings.SetJSON(ctx, configSettingKey, cfg); err != nil {
		s.mu.Unlock()
		return Config{}, fmt.Errorf("realtime config: persist: %w", err)
	}

	s.current = cfg
	restart := s.restart
	s.mu.Unlock()

	if reschedule && restart != nil {
		restart()
	}
	return cfg, nil
}
