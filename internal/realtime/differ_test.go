package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmorenov/cajadesk/internal/database/testutil"
)

// fakeCollection backs a high-water differ with an in-memory record set so
// detection logic is exercised without real tables.
type fakeCollection struct {
	records []changedRecord
}

func (f *fakeCollection) fetch(_ context.Context, since time.Time) ([]changedRecord, error) {
	var out []changedRecord
	for _, rec := range f.records {
		if rec.Stamp.After(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeCollection) count(context.Context) (int64, error) {
	return int64(len(f.records)), nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestHighWaterDifferColdStartReplaysNothing(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	coll := &fakeCollection{records: []changedRecord{
		{Stamp: base.Add(-2 * time.Hour), Action: ActionCreate, Payload: "old-1"},
		{Stamp: base.Add(-1 * time.Hour), Action: ActionCreate, Payload: "old-2"},
	}}
	differ := newHighWaterDiffer(DomainRequest, settings, coll.fetch, coll.count, fixedClock(base))

	events, err := differ.Detect(ctx)
	require.NoError(t, err)
	require.Empty(t, events, "pre-existing history must not replay on first observation")

	// The mark is primed, so a second pass is also silent.
	events, err = differ.Detect(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestHighWaterDifferEmitsEachChangeOnce(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	coll := &fakeCollection{}
	differ := newHighWaterDiffer(DomainRequest, settings, coll.fetch, coll.count, fixedClock(base))

	_, err := differ.Detect(ctx)
	require.NoError(t, err)

	coll.records = append(coll.records,
		changedRecord{Stamp: base.Add(time.Second), Action: ActionCreate, Payload: "r1", OwnerID: "u1"},
		changedRecord{Stamp: base.Add(2 * time.Second), Action: ActionUpdate, Payload: "r2"},
	)

	events, err := differ.Detect(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, ActionCreate, events[0].Action)
	require.Equal(t, "r1", events[0].Payload)
	require.Equal(t, "u1", events[0].OwnerID)
	require.Equal(t, DomainRequest, events[0].Domain)
	require.Equal(t, ActionUpdate, events[1].Action)

	// The mark advanced past both records: nothing repeats.
	events, err = differ.Detect(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestHighWaterDifferDetectsShrinkAsAggregateDelete(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	coll := &fakeCollection{records: []changedRecord{
		{Stamp: base.Add(-time.Hour), Action: ActionCreate, Payload: "a"},
		{Stamp: base.Add(-time.Minute), Action: ActionCreate, Payload: "b"},
	}}
	differ := newHighWaterDiffer(DomainRequest, settings, coll.fetch, coll.count, fixedClock(base))

	_, err := differ.Detect(ctx)
	require.NoError(t, err)

	coll.records = coll.records[:1]

	events, err := differ.Detect(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, ActionDelete, events[0].Action)
	require.Nil(t, events[0].Payload)

	events, err = differ.Detect(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestHighWaterDifferCorruptMarkDegradesToColdStart(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	coll := &fakeCollection{records: []changedRecord{
		{Stamp: base.Add(-time.Hour), Action: ActionCreate, Payload: "a"},
	}}
	differ := newHighWaterDiffer(DomainRequest, settings, coll.fetch, coll.count, fixedClock(base))

	require.NoError(t, settings.Set(ctx, differ.markKey(), "garbage"))

	events, err := differ.Detect(ctx)
	require.NoError(t, err)
	require.Empty(t, events)

	// The mark is usable again afterwards.
	coll.records = append(coll.records,
		changedRecord{Stamp: base.Add(time.Second), Action: ActionCreate, Payload: "fresh"})
	events, err = differ.Detect(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "fresh", events[0].Payload)
}

func TestFingerprintDifferBaselineIsSilent(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	collection := []string{"ana", "bruno"}
	differ := newFingerprintDiffer(DomainUser, settings, func(context.Context) (any, error) {
		return collection, nil
	}, fixedClock(base))

	events, err := differ.Detect(ctx)
	require.NoError(t, err)
	require.Empty(t, events)

	events, err = differ.Detect(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestFingerprintDifferEmitsOneAggregateUpdate(t *testing.T) {
	_, settings := testutil.MustOpenSettings(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	collection := []string{"ana", "bruno"}
	differ := newFingerprintDiffer(DomainUser, settings, func(context.Context) (any, error) {
		return collection, nil
	}, fixedClock(base))

	_, err := differ.Detect(ctx)
	require.NoError(t, err)

	collection = []string{"ana", "bruno", "carla"}

	events, err := differ.Detect(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, DomainUser, events[0].Domain)
	require.Equal(t, ActionUpdate, events[0].Action)
	require.Equal(t, []string{"ana", "bruno", "carla"}, events[0].Payload)
	require.Equal(t, base, events[0].OccurredAt)

	// Fingerprint stored before emitting: the same state never re-emits.
	events, err = differ.Detect(ctx)
	require.NoError(t, err)
	require.Empty(t, events)
}
