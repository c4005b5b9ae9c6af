package model

import "time"

// Snapshot reasons.  These are the wire values stored on snapshot rows.
const (
	SnapshotReasonAutoSave   = "auto_save"
	SnapshotReasonManual     = "manual"
	SnapshotReasonPrePublish = "pre_publish"
)

// Snapshot is an immutable copy of a schedule's plan document and version
// taken at a point in time.  Snapshots form an append-only history: they are
// created inside the same transaction as the mutation that triggers them and
// are never updated or deleted afterwards.  The captured document is always
// the pre-mutation state, so replaying snapshots newest-first walks the edit
// history backwards.
type Snapshot struct {
	ID         uint64       `json:"id"`
	ScheduleID uint64       `json:"schedule_id"`
	Plan       PlanDocument `json:"plan_document"`
	Version    uint64       `json:"version"`
	Reason     string       `json:"reason"`
	ActorID    uint64       `json:"actor_id"`
	CreatedAt  time.Time    `json:"created_at"`
}
