package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/models"
)

// Settings is a thin synchronous accessor over the app_settings key/value
// table. It backs runtime configs, poll high-water marks, and collection
// fingerprints.
type Settings struct {
	db *gorm.DB
}

// NewSettings constructs a Settings accessor.
func NewSettings(db *gorm.DB) (*Settings, error) {
	if db == nil {
		return nil, errors.New("settings: db is required")
	}
	return &Settings{db: db}, nil
}

// Get retrieves a setting value. Missing keys return an empty string.
func (s *Settings) Get(ctx context.Context, key string) (string, error) {
	var row models.AppSetting
	err := s.db.WithContext(ctx).Take(&row, "key = ?", key).Error
	if err == nil {
		return row.Value, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if strings.Contains(err.Error(), "no such table") {
		return "", nil
	}
	return "", fmt.Errorf("settings: get %q: %w", key, err)
}

// Set stores or updates a setting value.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("settings: key is required")
	}

	record := models.AppSetting{Key: key, Value: value}
	if err := s.db.WithContext(ctx).
		Where("key = ?", key).
		Assign(map[string]any{"value": value}).
		FirstOrCreate(&record).Error; err != nil {
		return fmt.Errorf("settings: set %q: %w", key, err)
	}
	return nil
}

// Delete removes a setting. Deleting a missing key is a no-op.
func (s *Settings) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&models.AppSetting{}).Error; err != nil {
		return fmt.Errorf("settings: delete %q: %w", key, err)
	}
	return nil
}

// GetJSON decodes a stored JSON value into out, which must be a non-nil
// pointer. Missing keys and corrupt payloads leave out untouched and report
// found=false; corruption is never surfaced as an error to callers. Decoding
// happens against a scratch copy of out so a value that fails mid-decode
// cannot partially overwrite it.
func (s *Settings) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return false, fmt.Errorf("settings: get json %q: out must be a non-nil pointer", key)
	}

	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(raw) == "" {
		return false, nil
	}

	scratch := reflect.New(target.Elem().Type())
	scratch.Elem().Set(target.Elem())
	if err := json.Unmarshal([]byte(raw), scratch.Interface()); err != nil {
		return false, nil
	}

	target.Elem().Set(scratch.Elem())
	return true, nil
}

// SetJSON encodes value as JSON and stores it under key.
func (s *Settings) SetJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("settings: marshal %q: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
