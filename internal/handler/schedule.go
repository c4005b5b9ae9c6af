package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-show-scheduling/internal/model"
	"github.com/iliyamo/studio-show-scheduling/internal/queue"
	"github.com/iliyamo/studio-show-scheduling/internal/repository"
	"github.com/iliyamo/studio-show-scheduling/internal/service"
)

// ScheduleHandler exposes the schedule lifecycle endpoints: create, read,
// plan updates, validation, snapshots, review, duplication and publishing.
type ScheduleHandler struct {
	Planning      *service.PlanningService
	Lookups       *repository.LookupRepo
	SnapshotLimit int // page size for snapshot history when ?limit= is absent
}

func NewScheduleHandler(planning *service.PlanningService, lookups *repository.LookupRepo, snapshotLimit int) *ScheduleHandler {
	if planning == nil || lookups == nil {
		panic("nil dependency passed to NewScheduleHandler")
	}
	if snapshotLimit <= 0 {
		snapshotLimit = 20
	}
	return &ScheduleHandler{Planning: planning, Lookups: lookups, SnapshotLimit: snapshotLimit}
}

type createScheduleReq struct {
	Name       string             `json:"name"`
	ClientCode string             `json:"client_code"`
	RangeStart time.Time          `json:"range_start"`
	RangeEnd   time.Time          `json:"range_end"`
	Plan       model.PlanDocument `json:"plan_document"`
}

type updatePlanReq struct {
	Plan            model.PlanDocument `json:"plan_document"`
	ExpectedVersion uint64             `json:"expected_version"`
}

type versionReq struct {
	ExpectedVersion uint64 `json:"expected_version"`
}

type duplicateReq struct {
	Name string `json:"name"`
}

// Create persists a new draft schedule.  The owning client is referenced by
// its external code and resolved before the insert.
func (h *ScheduleHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createScheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.ClientCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and client_code required"})
	}

	ctx := c.Request().Context()
	clients, err := h.Lookups.ResolveCodes(ctx, model.KindClient, []string{req.ClientCode})
	if err != nil {
		return writeServiceError(c, err)
	}
	clientID, ok := clients[req.ClientCode]
	if !ok {
		return writeServiceError(c, &service.NotFoundError{Kind: model.KindClient, Code: req.ClientCode})
	}

	sched, err := h.Planning.CreateSchedule(ctx, req.Name, clientID, req.RangeStart, req.RangeEnd, req.Plan, uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, sched)
}

// Get returns a schedule with its embedded plan document.
func (h *ScheduleHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	sched, err := h.Planning.GetSchedule(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sched)
}

// UpdatePlan replaces the plan document under optimistic concurrency.
func (h *ScheduleHandler) UpdatePlan(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	var req updatePlanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ExpectedVersion == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expected_version required"})
	}
	sched, err := h.Planning.UpdatePlanDocument(c.Request().Context(), id, req.Plan, req.ExpectedVersion, uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sched)
}

// Validate runs the plan validator and returns the full defect list without
// changing anything.
func (h *ScheduleHandler) Validate(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	res, err := h.Planning.ValidateSchedule(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Publish performs the gated draft-to-published transition and emits a
// schedule.published event on success.  Event delivery is best-effort; a
// broker outage never fails the publish itself.
func (h *ScheduleHandler) Publish(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	var req versionReq
	if err := c.Bind(&req); err != nil || req.ExpectedVersion == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expected_version required"})
	}

	sched, err := h.Planning.PublishSchedule(c.Request().Context(), id, req.ExpectedVersion, uid)
	if err != nil {
		return writeServiceError(c, err)
	}

	ev := queue.SchedulePublishedEvent{
		ScheduleID:   sched.ID,
		ScheduleName: sched.Name,
		ClientID:     sched.ClientID,
		Version:      sched.Version,
		ShowCount:    len(sched.Plan.Shows),
		RangeStart:   sched.RangeStart.UTC().Format(time.RFC3339),
		RangeEnd:     sched.RangeEnd.UTC().Format(time.RFC3339),
		PublishedBy:  uid,
	}
	if sched.PublishedAt != nil {
		ev.PublishedAt = sched.PublishedAt.UTC().Format(time.RFC3339)
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue.PublishSchedulePublished(ctx, ev)
	}()

	return c.JSON(http.StatusOK, sched)
}

// SubmitReview moves a draft into review.
func (h *ScheduleHandler) SubmitReview(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	var req versionReq
	if err := c.Bind(&req); err != nil || req.ExpectedVersion == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "expected_version required"})
	}
	sched, err := h.Planning.SubmitForReview(c.Request().Context(), id, req.ExpectedVersion)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sched)
}

// Duplicate deep-copies a schedule into a fresh draft.
func (h *ScheduleHandler) Duplicate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	var req duplicateReq
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	dup, err := h.Planning.DuplicateSchedule(c.Request().Context(), id, req.Name, uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dup)
}

// CreateSnapshot records a manual checkpoint of the current document.
func (h *ScheduleHandler) CreateSnapshot(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	snap, err := h.Planning.CreateSnapshot(c.Request().Context(), id, uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, snap)
}

// ListSnapshots returns the snapshot history, newest first.
func (h *ScheduleHandler) ListSnapshots(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	limit := h.SnapshotLimit
	if s := c.QueryParam("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	snaps, err := h.Planning.ListSnapshots(c.Request().Context(), id, limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"snapshots": snaps, "count": len(snaps)})
}
