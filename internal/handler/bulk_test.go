package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
	"github.com/iliyamo/studio-show-scheduling/internal/service"
)

var bulkBase = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

func bulkRequest(t *testing.T, method string, items []service.BulkItem) echo.Context {
	t.Helper()
	body, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, "/v1/schedules/bulk", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", uint64(42))
	return c
}

func decodeBulkResult(t *testing.T, c echo.Context) *service.BulkResult {
	t.Helper()
	rec := c.Response().Writer.(*httptest.ResponseRecorder)
	var res service.BulkResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &res
}

// Per-item failures belong in the body; the status code stays 201 even when
// some items fail.
func TestBulkCreateReportsFailuresInBody(t *testing.T) {
	planning, _, _ := newTestPlanningService()
	h := NewBulkHandler(service.NewBulkService(planning), 100)

	items := []service.BulkItem{
		{Key: "w-1", Name: "Week 1", ClientID: 1, RangeStart: bulkBase, RangeEnd: bulkBase.Add(24 * time.Hour)},
		{Key: "w-2", Name: "Week 2", ClientID: 1, RangeStart: bulkBase, RangeEnd: bulkBase}, // inverted range
	}
	c := bulkRequest(t, http.MethodPost, items)
	if err := h.BulkCreate(c); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if code := c.Response().Status; code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", code, http.StatusCreated)
	}

	res := decodeBulkResult(t, c)
	if res.Total != 2 || res.Successful != 1 || res.Failed != 1 {
		t.Fatalf("totals = %d/%d/%d, want 2/1/1", res.Total, res.Successful, res.Failed)
	}
	if len(res.SuccessfulItems) != 1 || res.SuccessfulItems[0].ScheduleID == 0 || res.SuccessfulItems[0].Version != 1 {
		t.Fatalf("successful_items = %+v", res.SuccessfulItems)
	}
	if res.Results[1].OK || res.Results[1].Error == "" {
		t.Fatalf("failed item result = %+v", res.Results[1])
	}
}

func TestBulkUpdateKeepsOKStatusOnPartialFailure(t *testing.T) {
	planning, _, _ := newTestPlanningService()
	h := NewBulkHandler(service.NewBulkService(planning), 100)

	sched, err := planning.CreateSchedule(context.Background(), "Week 1", 1,
		bulkBase, bulkBase.Add(24*time.Hour), model.PlanDocument{}, 42)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	items := []service.BulkItem{
		{Key: "ok", ScheduleID: sched.ID, ExpectedVersion: 1},
		{Key: "gone", ScheduleID: 999, ExpectedVersion: 1}, // no such schedule
	}
	c := bulkRequest(t, http.MethodPatch, items)
	if err := h.BulkUpdate(c); err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	if code := c.Response().Status; code != http.StatusOK {
		t.Fatalf("status = %d, want %d", code, http.StatusOK)
	}

	res := decodeBulkResult(t, c)
	if res.Successful != 1 || res.Failed != 1 {
		t.Fatalf("totals = %d ok / %d failed, want 1/1", res.Successful, res.Failed)
	}
	if len(res.SuccessfulItems) != 1 || res.SuccessfulItems[0].Version != 2 {
		t.Fatalf("successful_items = %+v", res.SuccessfulItems)
	}
}
