package handler

// In-memory stand-ins for the service layer's store interfaces, just enough
// to drive handlers through echo without a database.

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
	"github.com/iliyamo/studio-show-scheduling/internal/planner"
	"github.com/iliyamo/studio-show-scheduling/internal/repository"
	"github.com/iliyamo/studio-show-scheduling/internal/service"
)

// passRunner hands the callback a nil transaction so service flows run
// against the fakes directly.
type passRunner struct{}

func (passRunner) RunInTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return fn(nil)
}

type fakeScheduleStore struct {
	seq   uint64
	items map[uint64]*model.Schedule
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{items: make(map[uint64]*model.Schedule)}
}

func (s *fakeScheduleStore) Create(ctx context.Context, sched *model.Schedule) error {
	s.seq++
	sched.ID = s.seq
	sched.Status = model.ScheduleStatusDraft
	sched.Version = 1
	cp := *sched
	s.items[sched.ID] = &cp
	return nil
}

func (s *fakeScheduleStore) GetByID(ctx context.Context, id uint64) (*model.Schedule, error) {
	sched, ok := s.items[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	cp := *sched
	return &cp, nil
}

func (s *fakeScheduleStore) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Schedule, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeScheduleStore) UpdatePlanTx(ctx context.Context, tx *sql.Tx, id uint64, doc model.PlanDocument, expectedVersion uint64) error {
	sched, ok := s.items[id]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	if sched.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	sched.Plan = doc
	sched.Version++
	return nil
}

func (s *fakeScheduleStore) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string, expectedVersion uint64) error {
	sched, ok := s.items[id]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	if sched.Status != from || sched.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	sched.Status = to
	sched.Version++
	return nil
}

func (s *fakeScheduleStore) PublishTx(ctx context.Context, tx *sql.Tx, id uint64, expectedVersion uint64, publisherID uint64, at time.Time) error {
	sched, ok := s.items[id]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	if sched.Status != model.ScheduleStatusDraft || sched.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	sched.Status = model.ScheduleStatusPublished
	sched.Version++
	sched.PublishedBy = &publisherID
	stamp := at
	sched.PublishedAt = &stamp
	return nil
}

type fakeSnapshotStore struct {
	seq       uint64
	snaps     []model.Snapshot
	lastLimit int
}

func newFakeSnapshotStore() *fakeSnapshotStore { return &fakeSnapshotStore{} }

func (s *fakeSnapshotStore) CreateTx(ctx context.Context, tx *sql.Tx, snap *model.Snapshot) error {
	s.seq++
	snap.ID = s.seq
	s.snaps = append(s.snaps, *snap)
	return nil
}

func (s *fakeSnapshotStore) ListBySchedule(ctx context.Context, scheduleID uint64, limit int) ([]model.Snapshot, error) {
	s.lastLimit = limit
	var out []model.Snapshot
	for i := len(s.snaps) - 1; i >= 0 && len(out) < limit; i-- {
		if s.snaps[i].ScheduleID == scheduleID {
			out = append(out, s.snaps[i])
		}
	}
	return out, nil
}

// allCodesResolver resolves every code it is asked about, so plan documents
// validate without reference data.
type allCodesResolver struct{}

func (allCodesResolver) ResolveCodes(ctx context.Context, kind string, codes []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(codes))
	for i, code := range codes {
		out[code] = uint64(i + 1)
	}
	return out, nil
}

func newTestPlanningService() (*service.PlanningService, *fakeScheduleStore, *fakeSnapshotStore) {
	schedules := newFakeScheduleStore()
	snapshots := newFakeSnapshotStore()
	planning := service.NewPlanningService(passRunner{}, schedules, snapshots,
		planner.NewValidator(allCodesResolver{}))
	return planning, schedules, snapshots
}
