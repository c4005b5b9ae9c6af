package service

import (
	"context"
	"testing"
	"time"

	"github.com/iliyamo/studio-show-scheduling/internal/planner"
)

func newTestBulk(t *testing.T) (*BulkService, *PlanningService, *memScheduleStore) {
	t.Helper()
	schedules := newMemScheduleStore()
	planning := NewPlanningService(passthroughRunner{}, schedules, newMemSnapshotStore(), planner.NewValidator(seededResolver()))
	return NewBulkService(planning), planning, schedules
}

func bulkCreateItem(key string, weeks int) BulkItem {
	start := planBase.Add(time.Duration(weeks) * 7 * 24 * time.Hour)
	return BulkItem{
		Key:        key,
		Name:       "Import " + key,
		ClientID:   1,
		RangeStart: start,
		RangeEnd:   start.Add(7 * 24 * time.Hour),
		Plan:       validPlanDoc(),
	}
}

func TestBulkCreatePartialFailure(t *testing.T) {
	svc, _, _ := newTestBulk(t)

	items := []BulkItem{
		bulkCreateItem("w-1", 0),
		bulkCreateItem("w-2", 1),
		bulkCreateItem("w-3", 2),
		bulkCreateItem("w-4", 3),
		bulkCreateItem("w-5", 4),
	}
	items[2].RangeEnd = items[2].RangeStart // inverted range, must fail

	res := svc.BulkCreate(context.Background(), items, 42)
	if res.Total != 5 || res.Successful != 4 || res.Failed != 1 {
		t.Fatalf("totals = %d/%d/%d, want 5/4/1", res.Total, res.Successful, res.Failed)
	}
	if len(res.Results) != 5 {
		t.Fatalf("results = %d, want one per item", len(res.Results))
	}
	for i, r := range res.Results {
		if r.Key != items[i].Key {
			t.Fatalf("result %d key = %q, want %q", i, r.Key, items[i].Key)
		}
		wantOK := i != 2
		if r.OK != wantOK {
			t.Fatalf("result %d ok = %v, want %v (%s)", i, r.OK, wantOK, r.Error)
		}
		if wantOK && (r.ScheduleID == 0 || r.Version != 1) {
			t.Fatalf("result %d missing id/version: %+v", i, r)
		}
	}
	if res.Results[2].Error == "" {
		t.Fatal("failed item carries no error message")
	}

	// The successful-items list names only the applied schedules.
	if len(res.SuccessfulItems) != 4 {
		t.Fatalf("successful items = %d, want 4", len(res.SuccessfulItems))
	}
	for i, ref := range res.SuccessfulItems {
		if ref.ScheduleID == 0 || ref.Version != 1 {
			t.Fatalf("successful item %d = %+v", i, ref)
		}
	}
}

func TestBulkUpdateStaleItemFailsAlone(t *testing.T) {
	svc, planning, schedules := newTestBulk(t)

	var ids []uint64
	for i := 0; i < 3; i++ {
		sched, err := planning.CreateSchedule(context.Background(), "S", 1,
			planBase, planBase.Add(24*time.Hour), validPlanDoc(), 42)
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		ids = append(ids, sched.ID)
	}

	items := []BulkItem{
		{Key: "a", ScheduleID: ids[0], ExpectedVersion: 1, Plan: validPlanDoc()},
		{Key: "b", ScheduleID: ids[1], ExpectedVersion: 9, Plan: validPlanDoc()}, // stale
		{Key: "c", ScheduleID: ids[2], ExpectedVersion: 1, Plan: validPlanDoc()},
	}
	res := svc.BulkUpdate(context.Background(), items, 7)
	if res.Successful != 2 || res.Failed != 1 {
		t.Fatalf("totals = %d/%d, want 2 ok 1 failed", res.Successful, res.Failed)
	}
	if res.Results[1].OK || res.Results[1].Error == "" {
		t.Fatalf("stale item result = %+v", res.Results[1])
	}
	if len(res.SuccessfulItems) != 2 {
		t.Fatalf("successful items = %d, want 2", len(res.SuccessfulItems))
	}
	for _, ref := range res.SuccessfulItems {
		if ref.ScheduleID == ids[1] {
			t.Fatalf("stale schedule %d listed as successful", ids[1])
		}
		if ref.Version != 2 {
			t.Fatalf("successful item version = %d, want 2", ref.Version)
		}
	}

	// The stale item's schedule stays on version 1; its neighbours moved on.
	for i, want := range []uint64{2, 1, 2} {
		cur, _ := schedules.GetByID(context.Background(), ids[i])
		if cur.Version != want {
			t.Fatalf("schedule %d version = %d, want %d", i, cur.Version, want)
		}
	}
}
