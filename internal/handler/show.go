package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-show-scheduling/internal/service"
)

// ShowHandler exposes the persisted-show endpoints, including host and
// platform assignment management.
type ShowHandler struct {
	Assignments *service.AssignmentService
}

func NewShowHandler(assignments *service.AssignmentService) *ShowHandler {
	if assignments == nil {
		panic("nil assignment service passed to NewShowHandler")
	}
	return &ShowHandler{Assignments: assignments}
}

type replaceHostsReq struct {
	MCs []service.HostAssignment `json:"mcs"`
}

type replacePlatformsReq struct {
	Platforms []service.PlatformAssignment `json:"platforms"`
}

type removeCodesReq struct {
	Codes []string `json:"codes"`
}

// Create persists a show together with its assignments in one transaction.
func (h *ShowHandler) Create(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in service.ShowInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if in.Name == "" || in.RoomCode == "" || in.ClientCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, room_code and client_code required"})
	}
	sw, err := h.Assignments.CreateShowWithAssignments(c.Request().Context(), in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, sw)
}

// Get returns a show with its active assignments.
func (h *ShowHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	sw, err := h.Assignments.GetShowWithAssignments(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sw)
}

// Update rewrites the show and synchronizes both assignment sets.
func (h *ShowHandler) Update(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var in service.ShowInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sw, err := h.Assignments.UpdateShowWithAssignments(c.Request().Context(), id, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sw)
}

// ReplaceHosts makes the show's host set match the request exactly.
func (h *ShowHandler) ReplaceHosts(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req replaceHostsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sw, err := h.Assignments.ReplaceHostsForShow(c.Request().Context(), id, req.MCs)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sw)
}

// ReplacePlatforms makes the show's platform set match the request exactly.
func (h *ShowHandler) ReplacePlatforms(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req replacePlatformsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	sw, err := h.Assignments.ReplacePlatformsForShow(c.Request().Context(), id, req.Platforms)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sw)
}

// RemoveHosts soft-deletes the named hosts from the show.
func (h *ShowHandler) RemoveHosts(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req removeCodesReq
	if err := c.Bind(&req); err != nil || len(req.Codes) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "codes required"})
	}
	sw, err := h.Assignments.RemoveHostsFromShow(c.Request().Context(), id, req.Codes)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sw)
}

// RemovePlatforms soft-deletes the named platforms from the show.
func (h *ShowHandler) RemovePlatforms(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid show id"})
	}
	var req removeCodesReq
	if err := c.Bind(&req); err != nil || len(req.Codes) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "codes required"})
	}
	sw, err := h.Assignments.RemovePlatformsFromShow(c.Request().Context(), id, req.Codes)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, sw)
}
