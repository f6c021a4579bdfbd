package realtime

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmorenov/cajadesk/internal/database"
)

// Differ detects which records changed in one domain since the previous
// observation. Implementations persist their observation state before
// returning events, so a reentrant call cannot report the same change twice.
type Differ interface {
	Domain() Domain
	Detect(ctx context.Context) ([]Event, error)
}

// changedRecord is one record a high-water differ found past the mark.
type changedRecord struct {
	Stamp   time.Time
	Action  Action
	Payload any
	OwnerID string
}

// fetchSince returns records whose relevant timestamp is strictly newer than
// since, ordered oldest first.
type fetchSince func(ctx context.Context, since time.Time) ([]changedRecord, error)

// countAll returns the current size of the domain collection.
type countAll func(ctx context.Context) (int64, error)

// highWaterDiffer detects changes via a persisted high-water-mark timestamp.
// The collection row count is tracked alongside the mark so deletions, which
// timestamp comparison alone cannot see, surface as one aggregate delete
// event.
type highWaterDiffer struct {
	domain   Domain
	settings *database.Settings
	fetch    fetchSince
	count    countAll
	now      func() time.Time
}

func newHighWaterDiffer(domain Domain, settings *database.Settings, fetch fetchSince, count countAll, now func() time.Time) *highWaterDiffer {
	if now == nil {
		now = time.Now
	}
	return &highWaterDiffer{
		domain:   domain,
		settings: settings,
		fetch:    fetch,
		count:    count,
		now:      now,
	}
}

func (d *highWaterDiffer) Domain() Domain { return d.domain }

func (d *highWaterDiffer) markKey() string {
	return fmt.Sprintf("poll.%s.high_water", d.domain)
}

func (d *highWaterDiffer) countKey() string {
	return fmt.Sprintf("poll.%s.count", d.domain)
}

func (d *highWaterDiffer) Detect(ctx context.Context) ([]Event, error) {
	raw, err := d.settings.Get(ctx, d.markKey())
	if err != nil {
		return nil, err
	}

	size, err := d.count(ctx)
	if err != nil {
		return nil, fmt.Errorf("differ %s: count: %w", d.domain, err)
	}

	if raw == "" {
		// Cold start: establish the mark at the newest existing record so
		// history is never replayed.
		return nil, d.prime(ctx, size)
	}

	mark, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		// A corrupt mark degrades to a cold start rather than failing the tick.
		return nil, d.prime(ctx, size)
	}

	records, err := d.fetch(ctx, mark)
	if err != nil {
		return nil, fmt.Errorf("differ %s: fetch: %w", d.domain, err)
	}

	prevSize := d.storedCount(ctx)
	shrank := prevSize >= 0 && size < prevSize

	if len(records) == 0 && !shrank {
		return nil, nil
	}

	// Advance the stored mark and count before emitting anything.
	newMark := mark
	for _, rec := range records {
		if rec.Stamp.After(newMark) {
			newMark = rec.Stamp
		}
	}
	if err := d.settings.Set(ctx, d.markKey(), newMark.UTC().Format(time.RFC3339Nano)); err != nil {
		return nil, err
	}
	if err := d.settings.Set(ctx, d.countKey(), strconv.FormatInt(size, 10)); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(records)+1)
	for _, rec := range records {
		events = append(events, Event{
			Domain:     d.domain,
			Action:     rec.Action,
			Payload:    rec.Payload,
			OccurredAt: rec.Stamp,
			OwnerID:    rec.OwnerID,
		})
	}
	if shrank {
		events = append(events, Event{
			Domain:     d.domain,
			Action:     ActionDelete,
			OccurredAt: d.now(),
		})
	}
	return events, nil
}

func (d *highWaterDiffer) prime(ctx context.Context, size int64) error {
	newest := d.now()
	records, err := d.fetch(ctx, time.Time{})
	if err == nil {
		for _, rec := range records {
			if rec.Stamp.After(newest) {
				newest = rec.Stamp
			}
		}
	}
	if err := d.settings.Set(ctx, d.markKey(), newest.UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return d.settings.Set(ctx, d.countKey(), strconv.FormatInt(size, 10))
}

func (d *highWaterDiffer) storedCount(ctx context.Context) int64 {
	raw, err := d.settings.Get(ctx, d.countKey())
	if err != nil || raw == "" {
		return -1
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// loadCollection returns the full domain collection for fingerprinting and
// for the aggregate update payload.
type loadCollection func(ctx context.Context) (any, error)

// fingerprintDiffer detects changes by hashing the serialized collection.
// Used for domains without reliable per-record timestamps; any difference
// emits a single aggregate update carrying the whole new collection.
type fingerprintDiffer struct {
	domain   Domain
	settings *database.Settings
	load     loadCollection
	now      func() time.Time
}

func newFingerprintDiffer(domain Domain, settings *database.Settings, load loadCollection, now func() time.Time) *fingerprintDiffer {
	if now == nil {
		now = time.Now
	}
	return &fingerprintDiffer{domain: domain, settings: settings, load: load, now: now}
}

func (d *fingerprintDiffer) Domain() Domain { return d.domain }

func (d *fingerprintDiffer) key() string {
	return fmt.Sprintf("poll.%s.fingerprint", d.domain)
}

func (d *fingerprintDiffer) Detect(ctx context.Context) ([]Event, error) {
	collection, err := d.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("differ %s: load: %w", d.domain, err)
	}

	fingerprint, err := fingerprintOf(collection)
	if err != nil {
		return nil, fmt.Errorf("differ %s: fingerprint: %w", d.domain, err)
	}

	previous, err := d.settings.Get(ctx, d.key())
	if err != nil {
		return nil, err
	}

	if previous == fingerprint {
		return nil, nil
	}

	// Store before emitting so a reentrant tick cannot double-emit.
	if err := d.settings.Set(ctx, d.key(), fingerprint); err != nil {
		return nil, err
	}

	if previous == "" {
		// First observation establishes the baseline silently.
		return nil, nil
	}

	return []Event{{
		Domain:     d.domain,
		Action:     ActionUpdate,
		Payload:    collection,
		OccurredAt: d.now(),
	}}, nil
}

func fingerprintOf(collection any) (string, error) {
	data, err := json.Marshal(collection)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
