package service

import (
	"context"
	"time"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
)

// BulkItem is one schedule in a bulk request.  Key is a caller-chosen
// correlation label echoed back on the matching result.  ExpectedVersion is
// only read by BulkUpdate.
type BulkItem struct {
	Key             string             `json:"key"`
	ScheduleID      uint64             `json:"schedule_id,omitempty"`
	Name            string             `json:"name"`
	ClientID        uint64             `json:"client_id"`
	RangeStart      time.Time          `json:"range_start"`
	RangeEnd        time.Time          `json:"range_end"`
	ExpectedVersion uint64             `json:"expected_version,omitempty"`
	Plan            model.PlanDocument `json:"plan"`
}

// BulkItemResult reports the outcome of one item, in input order.
type BulkItemResult struct {
	Key        string `json:"key"`
	ScheduleID uint64 `json:"schedule_id,omitempty"`
	Version    uint64 `json:"version,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// BulkItemRef identifies one successfully applied schedule.
type BulkItemRef struct {
	ScheduleID uint64 `json:"id"`
	Version    uint64 `json:"version"`
}

// BulkResult aggregates a whole bulk run.  SuccessfulItems lists only the
// applied schedules so callers can collect ids without scanning Results.
type BulkResult struct {
	Total           int              `json:"total"`
	Successful      int              `json:"successful"`
	Failed          int              `json:"failed"`
	SuccessfulItems []BulkItemRef    `json:"successful_items"`
	Results         []BulkItemResult `json:"results"`
}

// BulkService applies a batch of schedule creates or updates.  Each item
// runs in its own transaction through the planning service, so one bad item
// never rolls back its neighbours; the per-item outcome is reported instead.
type BulkService struct {
	planning *PlanningService
}

// NewBulkService constructs a BulkService on top of the planning service.
func NewBulkService(planning *PlanningService) *BulkService {
	if planning == nil {
		panic("nil planning service passed to NewBulkService")
	}
	return &BulkService{planning: planning}
}

// BulkCreate creates one draft schedule per item.  Items are processed in
// input order and results line up with the input by index and key.
func (s *BulkService) BulkCreate(ctx context.Context, items []BulkItem, creatorID uint64) *BulkResult {
	res := newBulkResult(len(items))
	for _, it := range items {
		r := BulkItemResult{Key: it.Key}
		sched, err := s.planning.CreateSchedule(ctx, it.Name, it.ClientID, it.RangeStart, it.RangeEnd, it.Plan, creatorID)
		if err != nil {
			r.Error = err.Error()
			res.Failed++
		} else {
			r.OK = true
			r.ScheduleID = sched.ID
			r.Version = sched.Version
			res.Successful++
			res.SuccessfulItems = append(res.SuccessfulItems, BulkItemRef{ScheduleID: sched.ID, Version: sched.Version})
		}
		res.Results = append(res.Results, r)
	}
	return res
}

// BulkUpdate replaces the plan document of each named schedule under the
// item's expected version.  A stale version or missing schedule fails only
// that item.
func (s *BulkService) BulkUpdate(ctx context.Context, items []BulkItem, editorID uint64) *BulkResult {
	res := newBulkResult(len(items))
	for _, it := range items {
		r := BulkItemResult{Key: it.Key, ScheduleID: it.ScheduleID}
		sched, err := s.planning.UpdatePlanDocument(ctx, it.ScheduleID, it.Plan, it.ExpectedVersion, editorID)
		if err != nil {
			r.Error = err.Error()
			res.Failed++
		} else {
			r.OK = true
			r.Version = sched.Version
			res.Successful++
			res.SuccessfulItems = append(res.SuccessfulItems, BulkItemRef{ScheduleID: sched.ID, Version: sched.Version})
		}
		res.Results = append(res.Results, r)
	}
	return res
}

// newBulkResult pre-sizes an empty aggregate so both lists marshal as []
// rather than null even when nothing succeeded.
func newBulkResult(total int) *BulkResult {
	return &BulkResult{
		Total:           total,
		SuccessfulItems: make([]BulkItemRef, 0, total),
		Results:         make([]BulkItemResult, 0, total),
	}
}
