package frontend

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jo-hoe/godiary/internal/backend/database"
	"github.com/jo-hoe/godiary/internal/common"
	"github.com/jo-hoe/godiary/internal/core"
	"github.com/labstack/echo/v4"
)

const (
	MainPageName      = "index.html"
	AddEntryPageName  = "add_entry.html"
	ViewEntryPageName = "view_entry.html"
	NotFoundPageName  = "not_found.html"

	sessionCookieName = "diary_session"
	mimePNG           = "image/png"
)

type FrontendService struct {
	coreService *core.CoreService
	flashStore  FlashStore
}

type pageData struct {
	Title       string
	Flashes     []FlashMessage
	Entries     []*database.Entry
	Entry       *database.Entry
	FilterType  string
	FilterValue string
	CurrentDate time.Time
}

func NewFrontendService(coreService *core.CoreService, flashStore FlashStore) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		flashStore:  flashStore,
	}
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	// Create template renderer
	e.Renderer = newTemplate(service.coreService.Location())

	e.GET("/", service.indexHandler)
	e.GET("/add", service.addEntryFormHandler)
	e.POST("/add", service.addEntryHandler)
	e.GET("/entry/:id", service.viewEntryHandler)
	e.POST("/delete/:id", service.deleteEntryHandler)

	// Favicon routes
	e.GET("/icon.svg", service.iconHandler)
	e.GET("/icon.png", service.iconPNGHandler)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	filterType := ctx.QueryParam("filter")
	if filterType == "" {
		filterType = string(core.FilterAll)
	}
	filterValue := ctx.QueryParam("value")

	filter := core.ParseFilter(filterType, filterValue)
	entries, err := service.coreService.ListEntries(ctx.Request().Context(), filter)
	if err != nil {
		slog.Error("indexHandler: failed to list entries",
			"status", http.StatusInternalServerError, "filter", filterType, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to list entries")
	}

	service.setNoCache(ctx)
	return service.render(ctx, http.StatusOK, MainPageName, pageData{
		Title:       "Entries",
		Entries:     entries,
		FilterType:  filterType,
		FilterValue: filterValue,
		CurrentDate: service.coreService.Today(),
	})
}

func (service *FrontendService) addEntryFormHandler(ctx echo.Context) error {
	return service.render(ctx, http.StatusOK, AddEntryPageName, pageData{Title: "New entry"})
}

func (service *FrontendService) addEntryHandler(ctx echo.Context) error {
	content := strings.TrimSpace(ctx.FormValue("content"))
	if content == "" {
		service.flash(ctx, FlashError, "Please enter the entry content")
		return service.render(ctx, http.StatusOK, AddEntryPageName, pageData{Title: "New entry"})
	}

	_, err := service.coreService.AddEntry(ctx.Request().Context(), content, time.Time{})
	if errors.Is(err, common.ErrValidation) {
		service.flash(ctx, FlashError, "Please enter the entry content")
		return service.render(ctx, http.StatusOK, AddEntryPageName, pageData{Title: "New entry"})
	}
	if err != nil {
		slog.Error("addEntryHandler: failed to save entry",
			"status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to save entry")
	}

	service.flash(ctx, FlashSuccess, "Entry saved successfully!")
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (service *FrontendService) viewEntryHandler(ctx echo.Context) error {
	id, ok := parseEntryID(ctx)
	if !ok {
		return service.renderNotFound(ctx)
	}

	entry, err := service.coreService.GetEntryByID(ctx.Request().Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		slog.Warn("viewEntryHandler: entry not found", "status", http.StatusNotFound, "entry_id", id)
		return service.renderNotFound(ctx)
	}
	if err != nil {
		slog.Error("viewEntryHandler: failed to load entry",
			"status", http.StatusInternalServerError, "entry_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load entry")
	}

	return service.render(ctx, http.StatusOK, ViewEntryPageName, pageData{Title: "Entry", Entry: entry})
}

func (service *FrontendService) deleteEntryHandler(ctx echo.Context) error {
	id, ok := parseEntryID(ctx)
	if !ok {
		return service.renderNotFound(ctx)
	}

	err := service.coreService.DeleteEntry(ctx.Request().Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		slog.Warn("deleteEntryHandler: entry not found", "status", http.StatusNotFound, "entry_id", id)
		return service.renderNotFound(ctx)
	}
	if err != nil {
		slog.Error("deleteEntryHandler: failed to delete entry",
			"status", http.StatusInternalServerError, "entry_id", id, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to delete entry")
	}

	service.flash(ctx, FlashSuccess, "Entry deleted successfully!")
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}

func (service *FrontendService) iconPNGHandler(ctx echo.Context) error {
	size, _ := strconv.Atoi(ctx.QueryParam("size"))
	size = clampIconSize(size)

	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconPNGHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	rendered, err := renderSVGToPNG(data, size)
	if err != nil {
		slog.Error("iconPNGHandler: failed to render icon", "status", http.StatusInternalServerError, "size", size, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to render icon")
	}
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, mimePNG, rendered)
}

// render pops pending flash messages of the session into the page.
func (service *FrontendService) render(ctx echo.Context, status int, name string, data pageData) error {
	if sessionID, ok := service.sessionID(ctx); ok {
		flashes, err := service.flashStore.Pop(ctx.Request().Context(), sessionID)
		if err != nil {
			slog.Warn("render: failed to read flash messages", "error", err)
		}
		data.Flashes = flashes
	}
	return ctx.Render(status, name, data)
}

func (service *FrontendService) renderNotFound(ctx echo.Context) error {
	return service.render(ctx, http.StatusNotFound, NotFoundPageName, pageData{Title: "Not found"})
}

func (service *FrontendService) flash(ctx echo.Context, category, text string) {
	sessionID := service.ensureSessionID(ctx)
	if err := service.flashStore.Add(ctx.Request().Context(), sessionID, FlashMessage{Category: category, Text: text}); err != nil {
		slog.Warn("flash: failed to store flash message", "category", category, "error", err)
	}
}

func (service *FrontendService) sessionID(ctx echo.Context) (string, bool) {
	if id, ok := ctx.Get(sessionCookieName).(string); ok {
		return id, true
	}
	cookie, err := ctx.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", false
	}
	return cookie.Value, true
}

func (service *FrontendService) ensureSessionID(ctx echo.Context) string {
	if id, ok := service.sessionID(ctx); ok {
		return id
	}
	id := uuid.NewString()
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// later reads in this request see the new session
	ctx.Set(sessionCookieName, id)
	return id
}

func (service *FrontendService) setNoCache(ctx echo.Context) {
	ctx.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	ctx.Response().Header().Set("Pragma", "no-cache")
	ctx.Response().Header().Set("Expires", "0")
}

func parseEntryID(ctx echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
