package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-show-scheduling/internal/service"
)

// BulkHandler exposes the batch import endpoints.  Each item is applied
// independently; the response reports per-item outcomes in input order.
type BulkHandler struct {
	Bulk     *service.BulkService
	MaxItems int
}

func NewBulkHandler(bulk *service.BulkService, maxItems int) *BulkHandler {
	if bulk == nil {
		panic("nil bulk service passed to NewBulkHandler")
	}
	if maxItems <= 0 {
		maxItems = 100
	}
	return &BulkHandler{Bulk: bulk, MaxItems: maxItems}
}

type bulkReq struct {
	Items []service.BulkItem `json:"items"`
}

func (h *BulkHandler) bind(c echo.Context) ([]service.BulkItem, error) {
	var req bulkReq
	if err := c.Bind(&req); err != nil {
		return nil, fmt.Errorf("invalid body")
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("items required")
	}
	if len(req.Items) > h.MaxItems {
		return nil, fmt.Errorf("too many items (max %d)", h.MaxItems)
	}
	return req.Items, nil
}

// BulkCreate creates one draft schedule per item.
func (h *BulkHandler) BulkCreate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	// Per-item failures are reported in the body, never via the status code.
	res := h.Bulk.BulkCreate(c.Request().Context(), items, uid)
	return c.JSON(http.StatusCreated, res)
}

// BulkUpdate replaces plan documents under per-item expected versions.
func (h *BulkHandler) BulkUpdate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.bind(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	res := h.Bulk.BulkUpdate(c.Request().Context(), items, uid)
	return c.JSON(http.StatusOK, res)
}
