package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Refresher asks the prospection agent to run discovery again.
type Refresher interface {
	TriggerRefresh()
}

// AdminHandler exposes operator actions on the running agent.
type AdminHandler struct {
	refresher Refresher
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(refresher Refresher) *AdminHandler {
	return &AdminHandler{refresher: refresher}
}

// Refresh handles POST /admin/refresh requests. The refresh itself
// runs asynchronously in the agent loop.
func (h *AdminHandler) Refresh(c echo.Context) error {
	h.refresher.TriggerRefresh()
	return Success(c, http.StatusAccepted, "refresh scheduled", nil)
}
