package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
	"github.com/iliyamo/studio-show-scheduling/internal/repository"
)

func snapshotListRequest(t *testing.T, target string, id string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

// Without an explicit ?limit= the handler must page by its configured size,
// not by a hard-coded one.
func TestListSnapshotsUsesConfiguredPageSize(t *testing.T) {
	planning, _, snapshots := newTestPlanningService()
	h := NewScheduleHandler(planning, repository.NewLookupRepo(nil), 7)

	sched, err := planning.CreateSchedule(context.Background(), "Week 1", 1,
		time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC),
		model.PlanDocument{}, 42)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	id := strconv.FormatUint(sched.ID, 10)
	c := snapshotListRequest(t, "/v1/schedules/"+id+"/snapshots", id)
	if err := h.ListSnapshots(c); err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if code := c.Response().Status; code != http.StatusOK {
		t.Fatalf("status = %d, want %d", code, http.StatusOK)
	}
	if snapshots.lastLimit != 7 {
		t.Fatalf("store limit = %d, want configured 7", snapshots.lastLimit)
	}

	// An explicit query parameter still wins over the configured size.
	c = snapshotListRequest(t, "/v1/schedules/"+id+"/snapshots?limit=3", id)
	if err := h.ListSnapshots(c); err != nil {
		t.Fatalf("ListSnapshots with limit: %v", err)
	}
	if snapshots.lastLimit != 3 {
		t.Fatalf("store limit = %d, want 3", snapshots.lastLimit)
	}
}
