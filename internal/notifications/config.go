package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmorenov/cajadesk/internal/database"
	"github.com/dmorenov/cajadesk/internal/models"
)

const configSettingKey = "notifications.config"

// Config controls alert behaviour for ledger appends.
type Config struct {
	EnableVisualAlerts bool     `json:"enable_visual_alerts"`
	EnableSoundAlerts  bool     `json:"enable_sound_alerts"`
	AutoMarkReadOnView bool     `json:"auto_mark_read_on_view"`
	ToastDurationSec   uint     `json:"toast_duration_sec"`
	EnabledCategories  []string `json:"enabled_categories"`
}

// ConfigPatch describes a partial update; nil fields are left unchanged.
type ConfigPatch struct {
	EnableVisualAlerts *bool     `json:"enable_visual_alerts,omitempty"`
	EnableSoundAlerts  *bool     `json:"enable_sound_alerts,omitempty"`
	AutoMarkReadOnView *bool     `json:"auto_mark_read_on_view,omitempty"`
	ToastDurationSec   *uint     `json:"toast_duration_sec,omitempty"`
	EnabledCategories  *[]string `json:"enabled_categories,omitempty"`
}

// DefaultConfig enables alerts for every category.
func DefaultConfig() Config {
	return Config{
		EnableVisualAlerts: true,
		EnableSoundAlerts:  true,
		AutoMarkReadOnView: false,
		ToastDurationSec:   5,
		EnabledCategories: []string{
			models.CategoryInfo,
			models.CategorySuccess,
			models.CategoryWarning,
			models.CategoryError,
			models.CategoryRequest,
			models.CategoryApproval,
		},
	}
}

// CategoryEnabled reports whether appends of this category raise alerts.
func (c Config) CategoryEnabled(category string) bool {
	for _, enabled := range c.EnabledCategories {
		if enabled == category {
			return true
		}
	}
	return false
}

// ConfigService owns the persisted notification configuration.
type ConfigService struct {
	settings *database.Settings

	mu      sync.RWMutex
	current Config
}

// NewConfigService constructs a ConfigService. Call Load before first use.
func NewConfigService(settings *database.Settings) (*ConfigService, error) {
	if settings == nil {
		return nil, fmt.Errorf("notification config: settings store is required")
	}
	return &ConfigService{settings: settings, current: DefaultConfig()}, nil
}

// Load reads the persisted configuration, falling back to defaults when the
// stored value is missing or corrupt.
func (s *ConfigService) Load(ctx context.Context) error {
	cfg := DefaultConfig()
	if _, err := s.settings.GetJSON(ctx, configSettingKey, &cfg); err != nil {
		return fmt.Errorf("notification config: load: %w", err)
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

// Update applies a partial configuration change and persists the result.
func (s *ConfigService) Update(ctx context.Context, patch ConfigPatch) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.current
	if patch.EnableVisualAlerts != nil {
		cfg.EnableVisualAlerts = *patch.EnableVisualAlerts
	}
	if patch.EnableSoundAlerts != nil {
		cfg.EnableSoundAlerts = *patch.EnableSoundAlerts
	}
	if patch.AutoMarkReadOnView != nil {
		cfg.AutoMarkReadOnView = *patch.AutoMarkReadOnView
	}
	if patch.ToastDurationSec != nil && *patch.ToastDurationSec > 0 {
		cfg.ToastDurationSec = *patch.ToastDurationSec
	}
	if patch.EnabledCategories != nil {
		cfg.EnabledCategories = append([]string(nil), (*patch.EnabledCategories)...)
	}

	if err := s.settings.SetJSON(ctx, configSettingKey, cfg); err != nil {
		return Config{}, fmt.Errorf("notification config: persist: %w", err)
	}

	s.current = cfg
	return cfg, nil
}
