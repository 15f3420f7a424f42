package backend

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jo-hoe/godiary/internal/common"
	"github.com/jo-hoe/godiary/internal/core"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIService struct {
	coreService *core.CoreService
	gatherer    prometheus.Gatherer
}

type CreateEntryRequest struct {
	Content   string     `json:"content" validate:"required,notblank"`
	CreatedAt *time.Time `json:"createdAt"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func NewAPIService(coreService *core.CoreService, gatherer prometheus.Gatherer) *APIService {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &APIService{
		coreService: coreService,
		gatherer:    gatherer,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	// Set probe route
	e.GET("/probe", s.probeHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.GET("/entries", s.listEntriesHandler)
	api.POST("/entries", s.createEntryHandler)
	api.GET("/entries/:id", s.getEntryHandler)
	api.DELETE("/entries/:id", s.deleteEntryHandler)
}

func (s *APIService) probeHandler(ctx echo.Context) error {
	if !s.coreService.IsHealthy(ctx.Request().Context()) {
		return ctx.String(http.StatusServiceUnavailable, "database unavailable")
	}
	return ctx.String(http.StatusOK, "ok")
}

func (s *APIService) listEntriesHandler(ctx echo.Context) error {
	filter := core.ParseFilter(ctx.QueryParam("filter"), ctx.QueryParam("value"))
	entries, err := s.coreService.ListEntries(ctx.Request().Context(), filter)
	if err != nil {
		slog.Error("listEntriesHandler: failed to list entries",
			"status", http.StatusInternalServerError, "filter", filter.Mode, "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Message: "failed to list entries"})
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (s *APIService) createEntryHandler(ctx echo.Context) error {
	var request CreateEntryRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Message: "malformed request body"})
	}
	if err := ctx.Validate(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Message: "content must not be blank"})
	}

	var createdAt time.Time
	if request.CreatedAt != nil {
		createdAt = *request.CreatedAt
	}

	entry, err := s.coreService.AddEntry(ctx.Request().Context(), request.Content, createdAt)
	if errors.Is(err, common.ErrValidation) {
		return ctx.JSON(http.StatusBadRequest, errorResponse{Message: "content must not be blank"})
	}
	if err != nil {
		slog.Error("createEntryHandler: failed to create entry",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Message: "failed to create entry"})
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (s *APIService) getEntryHandler(ctx echo.Context) error {
	id, ok := parseID(ctx)
	if !ok {
		return ctx.JSON(http.StatusNotFound, errorResponse{Message: "entry not found"})
	}

	entry, err := s.coreService.GetEntryByID(ctx.Request().Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		return ctx.JSON(http.StatusNotFound, errorResponse{Message: "entry not found"})
	}
	if err != nil {
		slog.Error("getEntryHandler: failed to get entry",
			"status", http.StatusInternalServerError, "entry_id", id, "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Message: "failed to get entry"})
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (s *APIService) deleteEntryHandler(ctx echo.Context) error {
	id, ok := parseID(ctx)
	if !ok {
		return ctx.JSON(http.StatusNotFound, errorResponse{Message: "entry not found"})
	}

	err := s.coreService.DeleteEntry(ctx.Request().Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		return ctx.JSON(http.StatusNotFound, errorResponse{Message: "entry not found"})
	}
	if err != nil {
		slog.Error("deleteEntryHandler: failed to delete entry",
			"status", http.StatusInternalServerError, "entry_id", id, "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Message: "failed to delete entry"})
	}
	return ctx.NoContent(http.StatusNoContent)
}

func parseID(ctx echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
