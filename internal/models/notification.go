package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification categories understood by the ledger and the toast channel.
const (
	CategoryInfo     = "info"
	CategorySuccess  = "success"
	CategoryWarning  = "warning"
	CategoryError    = "error"
	CategoryRequest  = "request"
	CategoryApproval = "approval"
)

// Notification is a durable in-app notification. OwnerID is empty for
// broadcast notifications visible to every operator.
type Notification struct {
	BaseModel

	Category string         `gorm:"type:varchar(32);not null;default:'info'" json:"category"`
	Title    string         `gorm:"type:varchar(255);not null" json:"title"`
	Message  string         `gorm:"type:text" json:"message"`
	OwnerID  string         `gorm:"type:uuid;index" json:"owner_id,omitempty"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`
}

// KnownCategory reports whether the supplied category is one the system understands.
func KnownCategory(category string) bool {
	switch category {
	case CategoryInfo, CategorySuccess, CategoryWarning, CategoryError, CategoryRequest, CategoryApproval:
		return true
	}
	return false
}
