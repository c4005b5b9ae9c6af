package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/studio-show-scheduling/internal/repository"
)

// ReferenceHandler serves the read-only lookup-table endpoints used by
// planning UIs to populate code pickers.  Responses sit behind the Redis
// response cache.
type ReferenceHandler struct {
	Lookups *repository.LookupRepo
}

func NewReferenceHandler(lookups *repository.LookupRepo) *ReferenceHandler {
	if lookups == nil {
		panic("nil lookup repo passed to NewReferenceHandler")
	}
	return &ReferenceHandler{Lookups: lookups}
}

// ListKind returns a handler serving all live entities of one reference
// kind.  Each browse route binds its own kind at registration time.
func (h *ReferenceHandler) ListKind(kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := h.Lookups.ListByKind(c.Request().Context(), kind)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"kind": kind, "items": items, "count": len(items)})
	}
}
