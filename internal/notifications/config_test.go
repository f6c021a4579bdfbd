package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmorenov/cajadesk/internal/database/testutil"
	"github.com/dmorenov/cajadesk/internal/models"
)

func newTestNotificationConfig(t *testing.T) *ConfigService {
	t.Helper()

	_, settings := testutil.MustOpenSettings(t)
	svc, err := NewConfigService(settings)
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestNotificationDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.True(t, cfg.EnableVisualAlerts)
	require.True(t, cfg.EnableSoundAlerts)
	require.False(t, cfg.AutoMarkReadOnView)
	require.Equal(t, uint(5), cfg.ToastDurationSec)
	for _, category := range []string{
		models.CategoryInfo, models.CategorySuccess, models.CategoryWarning,
		models.CategoryError, models.CategoryRequest, models.CategoryApproval,
	} {
		require.True(t, cfg.CategoryEnabled(category), "category %s should default on", category)
	}
	require.False(t, cfg.CategoryEnabled("bogus"))
}

func TestNotificationConfigUpdateMergesPartialPatch(t *testing.T) {
	svc := newTestNotificationConfig(t)
	ctx := context.Background()

	off := false
	categories := []string{models.CategoryRequest, models.CategoryApproval}
	updated, err := svc.Update(ctx, ConfigPatch{
		EnableSoundAlerts: &off,
		EnabledCategories: &categories,
	})
	require.NoError(t, err)

	require.False(t, updated.EnableSoundAlerts)
	require.True(t, updated.EnableVisualAlerts)
	require.True(t, updated.CategoryEnabled(models.CategoryRequest))
	require.False(t, updated.CategoryEnabled(models.CategoryInfo))

	// Zero toast duration is rejected silently, keeping the previous value.
	zero := uint(0)
	updated, err = svc.Update(ctx, ConfigPatch{ToastDurationSec: &zero})
	require.NoError(t, err)
	require.Equal(t, uint(5), updated.ToastDurationSec)
}

func TestNotificationConfigPersistsAcrossLoad(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()

	first, err := NewConfigService(settings)
	require.NoError(t, err)
	require.NoError(t, first.Load(ctx))

	on := true
	duration := uint(8)
	_, err = first.Update(ctx, ConfigPatch{AutoMarkReadOnView: &on, ToastDurationSec: &duration})
	require.NoError(t, err)

	second, err := NewConfigService(settings)
	require.NoError(t, err)
	require.NoError(t, second.Load(ctx))

	cfg := second.Get()
	require.True(t, cfg.AutoMarkReadOnView)
	require.Equal(t, uint(8), cfg.ToastDurationSec)
}
