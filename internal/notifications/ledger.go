package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/models"
	apperrors "github.com/dmorenov/cajadesk/pkg/errors"
	"github.com/dmorenov/cajadesk/pkg/logger"
	"github.com/dmorenov/cajadesk/pkg/metrics"
)

// Notifications live for a day unless the producer asks otherwise; the sweep
// runs once a minute, independent of the poll scheduler.
const (
	defaultLifetime = 24 * time.Hour
	sweepSpec       = "@every 1m"
)

// CuePlayer plays a short audio cue for the named category.
type CuePlayer interface {
	Cue(kind string)
}

// AppendInput defines attributes for a new ledger entry. ID, read state, and
// timestamps are assigned by the ledger.
type AppendInput struct {
	Category string
	Title    string
	Message  string
	OwnerID  string
	Metadata map[string]any
	Lifetime time.Duration // 0 means the 24h default
}

// Ledger is the durable notification store. It owns the notification
// collection exclusively: producers append through it, surfaces read through
// it, and the expiry sweep prunes it.
type Ledger struct {
	db     *gorm.DB
	config *ConfigService
	toasts *ToastChannel
	cues   CuePlayer
	now    func() time.Time
	log    *zap.Logger

	mu   sync.RWMutex
	seq  int
	subs map[int]func([]models.Notification)

	cron *cron.Cron
}

// LedgerOption customises the Ledger.
type LedgerOption func(*Ledger)

// WithClock overrides the clock, primarily for tests.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithCuePlayer wires the audio cue side effect for appends.
func WithCuePlayer(cues CuePlayer) LedgerOption {
	return func(l *Ledger) { l.cues = cues }
}

// NewLedger constructs a Ledger.
func NewLedger(db *gorm.DB, config *ConfigService, toasts *ToastChannel, opts ...LedgerOption) (*Ledger, error) {
	if db == nil {
		return nil, errors.New("ledger: db is required")
	}
	if config == nil {
		return nil, errors.New("ledger: config service is required")
	}
	if toasts == nil {
		toasts = NewToastChannel()
	}

	l := &Ledger{
		db:     db,
		config: config,
		toasts: toasts,
		now:    time.Now,
		log:    logger.WithComponent("ledger"),
		subs:   make(map[int]func([]models.Notification)),
		cron:   cron.New(cron.WithLogger(cron.DiscardLogger)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Toasts exposes the channel display surfaces subscribe to.
func (l *Ledger) Toasts() *ToastChannel { return l.toasts }

// Append persists a new notification, notifies ledger subscribers, and, when
// the category is enabled, raises the toast and audio alerts synchronously.
// Self-originated creations are immediate; the poller only exists so other
// surfaces catch up.
func (l *Ledger) Append(ctx context.Context, input AppendInput) (*models.Notification, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("notification title is required")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = models.CategoryInfo
	}
	if !models.KnownCategory(category) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown notification category %q", category))
	}

	lifetime := input.Lifetime
	if lifetime <= 0 {
		lifetime = defaultLifetime
	}

	now := l.now().UTC()
	notification := models.Notification{
		BaseModel: models.BaseModel{CreatedAt: now, UpdatedAt: now},
		Category:  category,
		Title:     title,
		Message:   strings.TrimSpace(input.Message),
		OwnerID:   strings.TrimSpace(input.OwnerID),
		IsRead:    false,
		ExpiresAt: now.Add(lifetime),
	}

	if input.Metadata != nil {
		data, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("ledger: marshal metadata: %w", err)
		}
		notification.Metadata = datatypes.JSON(data)
	}

	if err := l.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("ledger: append: %w", err)
	}

	metrics.NotificationsCreated.WithLabelValues(category).Inc()
	l.broadcast(ctx)
	l.alert(notification)

	return &notification, nil
}

// MarkRead flips the read flag for one notification.
func (l *Ledger) MarkRead(ctx context.Context, id string) error {
	result := l.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("ledger: mark read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	l.broadcast(ctx)
	return nil
}

// MarkAllRead flips the read flag for every notification visible to ownerID;
// an empty owner marks the whole ledger.
func (l *Ledger) MarkAllRead(ctx context.Context, ownerID string) error {
	query := l.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_read = ?", false)
	if owner := strings.TrimSpace(ownerID); owner != "" {
		query = query.Where("owner_id = ? OR owner_id = ?", owner, "")
	}

	if err := query.Update("is_read", true).Error; err != nil {
		return fmt.Errorf("ledger: mark all read: %w", err)
	}

	l.broadcast(ctx)
	return nil
}

// Delete removes one notification.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	result := l.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Notification{})
	if result.Error != nil {
		return fmt.Errorf("ledger: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	l.broadcast(ctx)
	return nil
}

// ClearAll removes every notification visible to ownerID; an empty owner
// clears the whole ledger.
func (l *Ledger) ClearAll(ctx context.Context, ownerID string) error {
	query := l.db.WithContext(ctx)
	if owner := strings.TrimSpace(ownerID); owner != "" {
		query = query.Where("owner_id = ? OR owner_id = ?", owner, "")
	} else {
		query = query.Where("1 = 1")
	}

	if err := query.Delete(&models.Notification{}).Error; err != nil {
		return fmt.Errorf("ledger: clear all: %w", err)
	}

	l.broadcast(ctx)
	return nil
}

// List returns notifications with no owner or matching the given owner, most
// recent first. An empty owner returns only unowned (broadcast) entries.
func (l *Ledger) List(ctx context.Context, ownerID string) ([]models.Notification, error) {
	query := l.db.WithContext(ctx).Order("created_at DESC")
	if owner := strings.TrimSpace(ownerID); owner != "" {
		query = query.Where("owner_id = ? OR owner_id = ?", owner, "")
	} else {
		query = query.Where("owner_id = ?", "")
	}

	var rows []models.Notification
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	return rows, nil
}

// UnreadCount counts unread notifications visible to ownerID.
func (l *Ledger) UnreadCount(ctx context.Context, ownerID string) (int64, error) {
	query := l.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_read = ?", false)
	if owner := strings.TrimSpace(ownerID); owner != "" {
		query = query.Where("owner_id = ? OR owner_id = ?", owner, "")
	} else {
		query = query.Where("owner_id = ?", "")
	}

	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("ledger: unread count: %w", err)
	}
	return n, nil
}

// SweepExpired removes every notification past its expiry. Subscribers are
// notified only when the collection actually shrank.
func (l *Ledger) SweepExpired(ctx context.Context) (int64, error) {
	result := l.db.WithContext(ctx).
		Where("expires_at <= ?", l.now().UTC()).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("ledger: sweep expired: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.NotificationsSwept.Add(float64(result.RowsAffected))
		l.log.Debug("swept expired notifications", zap.Int64("removed", result.RowsAffected))
		l.broadcast(ctx)
	}
	return result.RowsAffected, nil
}

// StartSweeper schedules the periodic expiry sweep.
func (l *Ledger) StartSweeper() error {
	if _, err := l.cron.AddFunc(sweepSpec, func() {
		if _, err := l.SweepExpired(context.Background()); err != nil {
			l.log.Warn("expiry sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	l.cron.Start()
	return nil
}

// StopSweeper halts the periodic sweep.
func (l *Ledger) StopSweeper() {
	l.cron.Stop()
}

// Subscribe registers a callback observing the full collection. It is
// invoked immediately with the current state, then again after every
// mutation. The returned disposer is idempotent.
func (l *Ledger) Subscribe(fn func([]models.Notification)) func() {
	if fn == nil {
		return func() {}
	}

	l.mu.Lock()
	l.seq++
	id := l.seq
	l.subs[id] = fn
	l.mu.Unlock()

	l.notifyOne(fn, l.snapshot(context.Background()))

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *Ledger) alert(notification models.Notification) {
	cfg := l.config.Get()
	if !cfg.CategoryEnabled(notification.Category) {
		return
	}

	if cfg.EnableVisualAlerts {
		l.toasts.Emit(Toast{
			ID:        notification.ID,
			Category:  notification.Category,
			Title:     notification.Title,
			Message:   notification.Message,
			TTLMs:     int64(cfg.ToastDurationSec) * 1000,
			EmittedAt: l.now().UTC(),
		})
	}
	if cfg.EnableSoundAlerts && l.cues != nil {
		l.cues.Cue(notification.Category)
	}
}

// broadcast pushes the full updated collection to every ledger subscriber.
func (l *Ledger) broadcast(ctx context.Context) {
	l.mu.RLock()
	ordered := make([]int, 0, len(l.subs))
	for id := range l.subs {
		ordered = append(ordered, id)
	}
	sort.Ints(ordered)
	snapshot := make([]func([]models.Notification), 0, len(ordered))
	for _, id := range ordered {
		snapshot = append(snapshot, l.subs[id])
	}
	l.mu.RUnlock()

	if len(snapshot) == 0 {
		return
	}

	collection := l.snapshot(ctx)
	for _, fn := range snapshot {
		l.notifyOne(fn, collection)
	}
}

func (l *Ledger) notifyOne(fn func([]models.Notification), collection []models.Notification) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Warn("ledger subscriber panicked", zap.Any("panic", r))
		}
	}()
	fn(collection)
}

func (l *Ledger) snapshot(ctx context.Context) []models.Notification {
	var rows []models.Notification
	if err := l.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		l.log.Warn("ledger snapshot failed", zap.Error(err))
		return nil
	}
	return rows
}
