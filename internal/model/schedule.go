package model

import "time"

// Schedule status values.  The lifecycle is monotonic: DRAFT -> REVIEW ->
// PUBLISHED.  A published schedule never returns to an editable status;
// republishing requires duplicating it into a fresh draft.
const (
	ScheduleStatusDraft     = "DRAFT"
	ScheduleStatusReview    = "REVIEW"
	ScheduleStatusPublished = "PUBLISHED"
)

// Schedule is the top-level container of planned shows for a client and a
// date range.  The plan document is embedded as a JSON column on the
// schedules row rather than normalized into child tables, which keeps
// whole-document snapshots cheap and lets a single version counter guard
// every mutation.
//
// Version is the optimistic-lock token: it increases by exactly one on
// every accepted mutation of the plan document or the status.  Writers must
// present the version they read; a stale version loses the race and the
// write is rejected.  PublishedAt and PublishedBy are set exactly once, on
// the draft-to-published transition, and never cleared.
type Schedule struct {
	ID          uint64       `json:"id"`
	Name        string       `json:"name"`
	ClientID    uint64       `json:"client_id"`
	RangeStart  time.Time    `json:"range_start"`
	RangeEnd    time.Time    `json:"range_end"`
	Status      string       `json:"status"`
	Plan        PlanDocument `json:"plan_document"`
	Version     uint64       `json:"version"`
	CreatedBy   uint64       `json:"created_by"`
	PublishedBy *uint64      `json:"published_by,omitempty"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// PlanDocument is the nested structure holding every planned show of a
// schedule before any of them exists as a persisted show row.  It is never
// stored on its own; it lives inside the owning schedule and inside
// snapshots of that schedule.
type PlanDocument struct {
	Metadata PlanMetadata   `json:"metadata"`
	Shows    []ShowPlanItem `json:"shows"`
}

// PlanMetadata carries audit and display information for a plan document.
type PlanMetadata struct {
	LastEditedBy uint64    `json:"last_edited_by"`
	LastEditedAt time.Time `json:"last_edited_at"`
	TotalShows   int       `json:"total_shows"`
	RangeStart   time.Time `json:"range_start"`
	RangeEnd     time.Time `json:"range_end"`
}

// ShowPlanItem is one planned show inside a plan document.  TempID is a
// business identifier unique within the document; it lets items reference
// each other before any show row exists.  All entity references use stable
// external codes, not database keys, so a document survives re-imports and
// environment moves.
type ShowPlanItem struct {
	TempID           string            `json:"temp_id"`
	Name             string            `json:"name"`
	StartsAt         time.Time         `json:"starts_at"`
	EndsAt           time.Time         `json:"ends_at"`
	ClientCode       string            `json:"client_code"`
	RoomCode         string            `json:"room_code"`
	ShowTypeCode     string            `json:"show_type_code"`
	ShowStatusCode   string            `json:"show_status_code"`
	ShowStandardCode string            `json:"show_standard_code"`
	MCs              []HostStub        `json:"mcs"`
	Platforms        []PlatformStub    `json:"platforms"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// HostStub is a host assignment planned inside a document, before the show
// is persisted.
type HostStub struct {
	HostCode string `json:"host_code"`
	Note     string `json:"note,omitempty"`
}

// PlatformStub is a streaming platform assignment planned inside a document.
type PlatformStub struct {
	PlatformCode   string `json:"platform_code"`
	StreamLink     string `json:"stream_link,omitempty"`
	ExternalShowID string `json:"external_show_id,omitempty"`
}

// Clone returns a deep copy of the document detached from the receiver's
// slices and maps.  Duplicating a schedule and storing snapshots in memory
// during tests both rely on the copy sharing nothing with the original.
func (d PlanDocument) Clone() PlanDocument {
	out := d
	out.Shows = make([]ShowPlanItem, len(d.Shows))
	for i, s := range d.Shows {
		cs := s
		cs.MCs = append([]HostStub(nil), s.MCs...)
		cs.Platforms = append([]PlatformStub(nil), s.Platforms...)
		if s.Extra != nil {
			cs.Extra = make(map[string]string, len(s.Extra))
			for k, v := range s.Extra {
				cs.Extra[k] = v
			}
		}
		out.Shows[i] = cs
	}
	return out
}
