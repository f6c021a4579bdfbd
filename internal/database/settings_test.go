package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmorenov/cajadesk/internal/database"
	"github.com/dmorenov/cajadesk/internal/database/testutil"
)

func TestSettingsGetMissingKey(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)

	value, err := settings.Get(context.Background(), "realtime.config")
	require.NoError(t, err)
	require.Empty(t, value)
}

func TestSettingsSetAndOverwrite(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()

	require.NoError(t, settings.Set(ctx, "poll.notifications.high_water", "2026-01-02T15:04:05Z"))
	require.NoError(t, settings.Set(ctx, "poll.notifications.high_water", "2026-01-03T00:00:00Z"))

	value, err := settings.Get(ctx, "poll.notifications.high_water")
	require.NoError(t, err)
	require.Equal(t, "2026-01-03T00:00:00Z", value)
}

func TestSettingsJSONRoundTrip(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()

	type payload struct {
		Enabled  bool `json:"enabled"`
		Interval int  `json:"interval"`
	}

	require.NoError(t, settings.SetJSON(ctx, "realtime.config", payload{Enabled: true, Interval: 3000}))

	var out payload
	found, err := settings.GetJSON(ctx, "realtime.config", &out)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, out.Enabled)
	require.Equal(t, 3000, out.Interval)
}

func TestSettingsJSONCorruptionTreatedAsMissing(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()

	require.NoError(t, settings.Set(ctx, "notifications.config", "{not json"))

	var out map[string]any
	found, err := settings.GetJSON(ctx, "notifications.config", &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSettingsJSONMidDecodeFailureLeavesOutUntouched(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()

	type payload struct {
		Enabled  bool `json:"enabled"`
		Interval int  `json:"interval"`
	}

	// Valid prefix, then a type mismatch: a naive decode would flip Enabled
	// before failing on Interval.
	require.NoError(t, settings.Set(ctx, "realtime.config", `{"enabled":false,"interval":"soon"}`))

	out := payload{Enabled: true, Interval: 3000}
	found, err := settings.GetJSON(ctx, "realtime.config", &out)
	require.NoError(t, err)
	require.False(t, found)
	require.True(t, out.Enabled)
	require.Equal(t, 3000, out.Interval)
}

func TestSettingsJSONPartialValueKeepsExistingFields(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()

	type payload struct {
		Enabled  bool `json:"enabled"`
		Interval int  `json:"interval"`
	}

	require.NoError(t, settings.Set(ctx, "realtime.config", `{"enabled":false}`))

	out := payload{Enabled: true, Interval: 3000}
	found, err := settings.GetJSON(ctx, "realtime.config", &out)
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, out.Enabled)
	require.Equal(t, 3000, out.Interval, "fields absent from the stored value keep their prior value")
}

func TestSettingsJSONRejectsNonPointer(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)

	var out map[string]any
	_, err := settings.GetJSON(context.Background(), "realtime.config", out)
	require.Error(t, err)
}

func TestSettingsDeleteMissingKeyIsNoop(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	require.NoError(t, settings.Delete(context.Background(), "poll.users.fingerprint"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(database.Config{Driver: "oracle"})
	require.Error(t, err)
}
