// Package handler defines the HTTP handlers for the scheduling API.
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-show-scheduling/internal/repository"
	"github.com/iliyamo/studio-show-scheduling/internal/service"
)

// getUserID extracts the user_id stored by the JWT middleware and converts
// it to uint64.  JWT numeric claims arrive as float64 after JSON decoding.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// writeServiceError maps service and repository errors onto HTTP responses.
// Validation failures carry the full error list so clients can show every
// defect at once; everything unrecognized becomes a plain 500.
func writeServiceError(c echo.Context, err error) error {
	var (
		vfe *service.ValidationFailedError
		ste *service.InvalidStateTransitionError
		nfe *service.NotFoundError
	)
	switch {
	case errors.Is(err, repository.ErrScheduleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	case errors.Is(err, repository.ErrShowNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "show not found"})
	case errors.As(err, &nfe):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "reference not found",
			"kind":  nfe.Kind,
			"code":  nfe.Code,
		})
	case errors.Is(err, repository.ErrVersionConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "version conflict"})
	case errors.As(err, &ste):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "invalid state transition",
			"from":  ste.From,
			"to":    ste.To,
		})
	case errors.As(err, &vfe):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"errors": vfe.Errors,
		})
	case errors.Is(err, service.ErrInvalidTimeRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end time must be after start time"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate entry"})
	case errors.Is(err, sql.ErrNoRows):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
