package model

import "time"

// Reference kinds understood by the entity resolver.  Each kind maps to one
// lookup table whose rows carry a stable external code.
const (
	KindClient       = "client"
	KindRoom         = "room"
	KindHost         = "host"
	KindPlatform     = "platform"
	KindShowType     = "show_type"
	KindShowStatus   = "show_status"
	KindShowStandard = "show_standard"
)

// ReferenceEntity is a row in one of the reference tables (clients, rooms,
// hosts, platforms, show_types, show_statuses, show_standards).  Code is the
// stable external identifier used in plan documents and import payloads; it
// never changes even if the display name does.  A soft-deleted entity keeps
// its row but is unusable for new references.
type ReferenceEntity struct {
	ID        uint64     `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
