package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/prospect-agent/internal/dto"
	"github.com/octobees/prospect-agent/internal/repository"
)

// ProspectsHandler exposes read access to the stored prospects.
type ProspectsHandler struct {
	repo repository.ProspectsRepository
}

// NewProspectsHandler constructs a ProspectsHandler.
func NewProspectsHandler(repo repository.ProspectsRepository) *ProspectsHandler {
	return &ProspectsHandler{repo: repo}
}

// List handles GET /prospects requests.
func (h *ProspectsHandler) List(c echo.Context) error {
	var req dto.ListProspectsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid query parameters")
	}

	prospects, err := h.repo.List(c.Request().Context(), repository.ListFilter{
		Status:   req.Status,
		MinScore: req.MinScore,
		Page:     req.Page,
		PerPage:  req.PerPage,
	})
	if err != nil {
		return Error(c, http.StatusInternalServerError, "unable to list prospects")
	}

	return Success(c, http.StatusOK, "prospects retrieved", map[string]any{
		"prospects": prospects,
		"count":     len(prospects),
	})
}

// Stats handles GET /stats requests.
func (h *ProspectsHandler) Stats(c echo.Context) error {
	stats, err := h.repo.Stats(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "unable to compute stats")
	}
	return Success(c, http.StatusOK, "stats computed", stats)
}
