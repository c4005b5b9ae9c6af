package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
	"github.com/iliyamo/studio-show-scheduling/internal/planner"
	"github.com/iliyamo/studio-show-scheduling/internal/repository"
)

// PlanningService orchestrates the schedule lifecycle: plan-document
// updates, validation, snapshotting and the draft-to-published transition.
// Consistency relies on the store's conditional updates and on running each
// mutating flow inside one transaction; the service itself holds no locks
// and no state, so any number of requests may use it concurrently.
type PlanningService struct {
	tx        TxRunner
	schedules ScheduleStore
	snapshots SnapshotStore
	validator *planner.Validator
	now       func() time.Time
}

// NewPlanningService constructs a PlanningService.  All dependencies must
// be non-nil.
func NewPlanningService(tx TxRunner, schedules ScheduleStore, snapshots SnapshotStore, validator *planner.Validator) *PlanningService {
	if tx == nil || schedules == nil || snapshots == nil || validator == nil {
		panic("nil dependency passed to NewPlanningService")
	}
	return &PlanningService{
		tx:        tx,
		schedules: schedules,
		snapshots: snapshots,
		validator: validator,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// stampMetadata refreshes the document's audit block before it is written.
func stampMetadata(doc *model.PlanDocument, editorID uint64, at time.Time) {
	doc.Metadata.LastEditedBy = editorID
	doc.Metadata.LastEditedAt = at
	doc.Metadata.TotalShows = len(doc.Shows)
}

// CreateSchedule persists a brand-new draft schedule with version 1.
func (s *PlanningService) CreateSchedule(ctx context.Context, name string, clientID uint64, rangeStart, rangeEnd time.Time, doc model.PlanDocument, creatorID uint64) (*model.Schedule, error) {
	if !rangeEnd.After(rangeStart) {
		return nil, ErrInvalidTimeRange
	}
	stampMetadata(&doc, creatorID, s.now())
	doc.Metadata.RangeStart = rangeStart
	doc.Metadata.RangeEnd = rangeEnd
	sched := &model.Schedule{
		Name:       name,
		ClientID:   clientID,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		Plan:       doc,
		CreatedBy:  creatorID,
	}
	if err := s.schedules.Create(ctx, sched); err != nil {
		return nil, err
	}
	return sched, nil
}

// GetSchedule returns a schedule by id.
func (s *PlanningService) GetSchedule(ctx context.Context, id uint64) (*model.Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

// UpdatePlanDocument replaces a schedule's plan document under optimistic
// concurrency.  Inside one transaction it snapshots the pre-update state
// with reason auto_save, writes the new document and bumps the version by
// exactly one.  A stale expectedVersion mutates nothing and returns
// repository.ErrVersionConflict.  The document is not validated here:
// saving an invalid intermediate draft is allowed, validation is a
// separate explicit step.
func (s *PlanningService) UpdatePlanDocument(ctx context.Context, scheduleID uint64, doc model.PlanDocument, expectedVersion uint64, editorID uint64) (*model.Schedule, error) {
	stampMetadata(&doc, editorID, s.now())
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		cur, err := s.schedules.GetForUpdateTx(ctx, tx, scheduleID)
		if err != nil {
			return err
		}
		if cur.Version != expectedVersion {
			return repository.ErrVersionConflict
		}
		snap := &model.Snapshot{
			ScheduleID: scheduleID,
			Plan:       cur.Plan,
			Version:    cur.Version,
			Reason:     model.SnapshotReasonAutoSave,
			ActorID:    editorID,
		}
		if err := s.snapshots.CreateTx(ctx, tx, snap); err != nil {
			return err
		}
		return s.schedules.UpdatePlanTx(ctx, tx, scheduleID, doc, expectedVersion)
	})
	if err != nil {
		return nil, err
	}
	return s.schedules.GetByID(ctx, scheduleID)
}

// ValidateSchedule runs the plan validator against the schedule's current
// document.  It is read-only and safe to call on any status, any number of
// times.
func (s *PlanningService) ValidateSchedule(ctx context.Context, scheduleID uint64) (*planner.ValidationResult, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(ctx, &sched.Plan)
}

// PublishSchedule performs the gated draft-to-published transition.  Inside
// one transaction it re-checks status and version under a row lock,
// re-validates the document, snapshots the pre-publish state and flips the
// row.  Any failure rolls the whole transaction back, leaving the schedule
// untouched: status, version and published_at only ever change together.
func (s *PlanningService) PublishSchedule(ctx context.Context, scheduleID uint64, expectedVersion uint64, publisherID uint64) (*model.Schedule, error) {
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		cur, err := s.schedules.GetForUpdateTx(ctx, tx, scheduleID)
		if err != nil {
			return err
		}
		if cur.Status != model.ScheduleStatusDraft {
			return &InvalidStateTransitionError{From: cur.Status, To: model.ScheduleStatusPublished}
		}
		if cur.Version != expectedVersion {
			return repository.ErrVersionConflict
		}
		res, err := s.validator.Validate(ctx, &cur.Plan)
		if err != nil {
			return err
		}
		if !res.IsValid {
			return &ValidationFailedError{Errors: res.Errors}
		}
		snap := &model.Snapshot{
			ScheduleID: scheduleID,
			Plan:       cur.Plan,
			Version:    cur.Version,
			Reason:     model.SnapshotReasonPrePublish,
			ActorID:    publisherID,
		}
		if err := s.snapshots.CreateTx(ctx, tx, snap); err != nil {
			return err
		}
		return s.schedules.PublishTx(ctx, tx, scheduleID, expectedVersion, publisherID, s.now())
	})
	if err != nil {
		return nil, err
	}
	return s.schedules.GetByID(ctx, scheduleID)
}

// SubmitForReview moves a draft schedule into review.  Review is the only
// transition besides publish; a schedule never leaves review except by
// being duplicated into a new draft.
func (s *PlanningService) SubmitForReview(ctx context.Context, scheduleID uint64, expectedVersion uint64) (*model.Schedule, error) {
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		cur, err := s.schedules.GetForUpdateTx(ctx, tx, scheduleID)
		if err != nil {
			return err
		}
		if cur.Status != model.ScheduleStatusDraft {
			return &InvalidStateTransitionError{From: cur.Status, To: model.ScheduleStatusReview}
		}
		if cur.Version != expectedVersion {
			return repository.ErrVersionConflict
		}
		return s.schedules.UpdateStatusTx(ctx, tx, scheduleID,
			model.ScheduleStatusDraft, model.ScheduleStatusReview, expectedVersion)
	})
	if err != nil {
		return nil, err
	}
	return s.schedules.GetByID(ctx, scheduleID)
}

// DuplicateSchedule deep-copies the plan document into a brand-new draft
// schedule with version 1 and no publish stamps.  Snapshot history is not
// copied; the new schedule starts its own.
func (s *PlanningService) DuplicateSchedule(ctx context.Context, scheduleID uint64, newName string, creatorID uint64) (*model.Schedule, error) {
	src, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	doc := src.Plan.Clone()
	stampMetadata(&doc, creatorID, s.now())
	dup := &model.Schedule{
		Name:       newName,
		ClientID:   src.ClientID,
		RangeStart: src.RangeStart,
		RangeEnd:   src.RangeEnd,
		Plan:       doc,
		CreatedBy:  creatorID,
	}
	if err := s.schedules.Create(ctx, dup); err != nil {
		return nil, err
	}
	return dup, nil
}

// CreateSnapshot records a manual checkpoint of the schedule's current
// document and version.  The read and the insert share one transaction so
// the copy can never be torn.
func (s *PlanningService) CreateSnapshot(ctx context.Context, scheduleID uint64, actorID uint64) (*model.Snapshot, error) {
	var snap *model.Snapshot
	err := s.tx.RunInTx(ctx, func(tx *sql.Tx) error {
		cur, err := s.schedules.GetForUpdateTx(ctx, tx, scheduleID)
		if err != nil {
			return err
		}
		snap = &model.Snapshot{
			ScheduleID: scheduleID,
			Plan:       cur.Plan,
			Version:    cur.Version,
			Reason:     model.SnapshotReasonManual,
			ActorID:    actorID,
		}
		return s.snapshots.CreateTx(ctx, tx, snap)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns the schedule's snapshot history, newest first.  The
// schedule is looked up first so a missing id surfaces as not-found rather
// than an empty list.
func (s *PlanningService) ListSnapshots(ctx context.Context, scheduleID uint64, limit int) ([]model.Snapshot, error) {
	if _, err := s.schedules.GetByID(ctx, scheduleID); err != nil {
		return nil, err
	}
	return s.snapshots.ListBySchedule(ctx, scheduleID, limit)
}
