package realtime

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/dmorenov/cajadesk/internal/database"
	"github.com/dmorenov/cajadesk/internal/models"
)

// NewNotificationDiffer watches the notification ledger collection using the
// created_at high-water mark. It lets a notification appended by one surface
// become visible to every other surface on the next tick.
func NewNotificationDiffer(db *gorm.DB, settings *database.Settings, now func() time.Time) Differ {
	fetch := func(ctx context.Context, since time.Time) ([]changedRecord, error) {
		var rows []models.Notification
		if err := db.WithContext(ctx).
			Where("created_at > ?", since).
			Order("created_at ASC").
			Find(&rows).Error; err != nil {
			return nil, err
		}

		records := make([]changedRecord, 0, len(rows))
		for _, row := range rows {
			records = append(records, changedRecord{
				Stamp:   row.CreatedAt,
				Action:  ActionCreate,
				Payload: row,
				OwnerID: row.OwnerID,
			})
		}
		return records, nil
	}

	count := func(ctx context.Context) (int64, error) {
		var n int64
		err := db.WithContext(ctx).Model(&models.Notification{}).Count(&n).Error
		return n, err
	}

	return newHighWaterDiffer(DomainNotification, settings, fetch, count, now)
}

// NewRequestDiffer watches opening requests. A request is "new" when its
// created_at passes the mark; a resolution is "new" when its processed_at
// does. One mark covers both, so a single pass emits creations and
// resolutions in timestamp order.
func NewRequestDiffer(db *gorm.DB, settings *database.Settings, now func() time.Time) Differ {
	fetch := func(ctx context.Context, since time.Time) ([]changedRecord, error) {
		var rows []models.OpeningRequest
		if err := db.WithContext(ctx).
			Where("created_at > ? OR processed_at > ?", since, since).
			Order("created_at ASC").
			Find(&rows).Error; err != nil {
			return nil, err
		}

		records := make([]changedRecord, 0, len(rows))
		for _, row := range rows {
			rec := changedRecord{
				Stamp:   row.CreatedAt,
				Action:  ActionCreate,
				Payload: row,
				OwnerID: row.RequestedBy,
			}
			if row.ProcessedAt != nil && row.ProcessedAt.After(since) {
				rec.Stamp = *row.ProcessedAt
				rec.Action = ActionUpdate
			}
			records = append(records, rec)
		}
		sort.Slice(records, func(i, j int) bool {
			return records[i].Stamp.Before(records[j].Stamp)
		})
		return records, nil
	}

	count := func(ctx context.Context) (int64, error) {
		var n int64
		err := db.WithContext(ctx).Model(&models.OpeningRequest{}).Count(&n).Error
		return n, err
	}

	return newHighWaterDiffer(DomainRequest, settings, fetch, count, now)
}

// NewUserDiffer watches the operator collection by whole-collection
// fingerprint; any change emits one aggregate update carrying all users.
func NewUserDiffer(db *gorm.DB, settings *database.Settings, now func() time.Time) Differ {
	load := func(ctx context.Context) (any, error) {
		var rows []models.User
		err := db.WithContext(ctx).Order("id ASC").Find(&rows).Error
		return rows, err
	}
	return newFingerprintDiffer(DomainUser, settings, load, now)
}

// NewPrinterDiffer watches the printer collection by whole-collection
// fingerprint.
func NewPrinterDiffer(db *gorm.DB, settings *database.Settings, now func() time.Time) Differ {
	load := func(ctx context.Context) (any, error) {
		var rows []models.Printer
		err := db.WithContext(ctx).Order("id ASC").Find(&rows).Error
		return rows, err
	}
	return newFingerprintDiffer(DomainPrinter, settings, load, now)
}

// DefaultDiffers builds the differ set for every watched domain.
func DefaultDiffers(db *gorm.DB, settings *database.Settings, now func() time.Time) []Differ {
	return []Differ{
		NewNotificationDiffer(db, settings, now),
		NewRequestDiffer(db, settings, now),
		NewUserDiffer(db, settings, now),
		NewPrinterDiffer(db, settings, now),
	}
}
