package models

import "time"

// Opening request lifecycle states.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// OpeningRequest records a cash-register opening authorization request.
type OpeningRequest struct {
	BaseModel

	RegisterID  string `gorm:"type:varchar(64);not null;index" json:"register_id"`
	RequestedBy string `gorm:"type:uuid;not null;index" json:"requested_by"`
	Reason      string `gorm:"type:text" json:"reason"`
	AmountCents int64  `gorm:"not null;default:0" json:"amount_cents"`

	Status      string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	ResolvedBy  string     `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ProcessedAt *time.Time `gorm:"index" json:"processed_at,omitempty"`
}

// Resolved reports whether the request has left the pending state.
func (r *OpeningRequest) Resolved() bool {
	return r.Status != RequestPending
}
