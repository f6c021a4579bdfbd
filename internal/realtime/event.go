package realtime

import "time"

// Domain identifies a watched change category.
type Domain string

// Watched change domains.
const (
	DomainNotification Domain = "notification"
	DomainRequest      Domain = "request"
	DomainUser         Domain = "user"
	DomainPrinter      Domain = "printer"
	DomainSystem       Domain = "system"
)

// Action describes the kind of change an event carries.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Event is a change notice fanned out through the bus. Events are immutable
// once constructed and are never persisted.
type Event struct {
	Domain     Domain    `json:"domain"`
	Action     Action    `json:"action"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	OwnerID    string    `json:"owner_id,omitempty"`
}

// WatchedDomains lists the domains the poll scheduler observes. DomainSystem
// is publish-only: producers emit system events directly, nothing polls for
// them.
func WatchedDomains() []Domain {
	return []Domain{DomainNotification, DomainRequest, DomainUser, DomainPrinter}
}
