package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"thundergames/backend/internal/auth"
	"thundergames/backend/internal/logger"
	"thundergames/backend/internal/models"
	"thundergames/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable.
type Pinger func(ctx context.Context) error

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
}

type PageHandler struct {
	folders service.FolderService
	games   service.GameService
	ping    Pinger
	log     *zap.Logger
}

func NewPageHandler(folders service.FolderService, games service.GameService, ping Pinger, log *zap.Logger) *PageHandler {
	return &PageHandler{folders: folders, games: games, ping: ping, log: log}
}

// RegisterRoutes mounts the visitor pages on public and the admin pages on admin.
func (h *PageHandler) RegisterRoutes(public, admin gin.IRoutes) {
	public.GET("/", h.Index)
	public.GET("/index.html", h.Index)
	public.GET("/home/", h.Home)
	public.GET("/game/:id/", h.GameDetail)
	public.GET("/health/", h.Health)

	admin.GET("/admin_dashboard/", h.AdminDashboard)
	admin.GET("/admin_panel/", h.AdminPanel)
	admin.GET("/admin_panel/games/new/", h.NewGameForm)
	admin.POST("/admin_panel/games/new/", h.CreateGameForm)
	admin.GET("/admin_panel/games/:id/", h.AdminGameDetail)
	admin.POST("/admin_panel/games/:id/", h.UpdateGameForm)
}

// render adds the signed-in principal to data so the layout can show it.
func render(c *gin.Context, status int, name string, data gin.H) {
	p, _ := auth.Current(c)
	data["Principal"] = p
	c.HTML(status, name, data)
}

func (h *PageHandler) renderError(c *gin.Context, status int, msg string) {
	render(c, status, "error.html", gin.H{"Title": http.StatusText(status), "Status": status, "Message": msg})
}

func (h *PageHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		h.renderError(c, http.StatusNotFound, err.Error())
		return
	}
	h.log.Error("page failed",
		zap.String("request_id", logger.RequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	h.renderError(c, http.StatusInternalServerError, "Something went wrong.")
}

func (h *PageHandler) Index(c *gin.Context) {
	render(c, http.StatusOK, "index.html", gin.H{"Title": "Welcome"})
}

func (h *PageHandler) Home(c *gin.Context) {
	folders, err := h.folders.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	render(c, http.StatusOK, "home.html", gin.H{"Title": "Games", "Folders": folders})
}

func (h *PageHandler) GameDetail(c *gin.Context) {
	game, ok := h.loadGame(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "game.html", gin.H{
		"Title":       game.Name,
		"Game":        newPublicGameResponse(game),
		"FolderNames": game.FolderNames(),
	})
}

func (h *PageHandler) loadGame(c *gin.Context) (models.Game, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, "Game not found")
		return models.Game{}, false
	}
	game, err := h.games.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return models.Game{}, false
	}
	return game, true
}

// Health answers 200 while the database is reachable and 503 otherwise.
func (h *PageHandler) Health(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Database: "unreachable"})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
}

// region --- Admin pages ---

func (h *PageHandler) AdminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	folders, err := h.folders.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	games, err := h.games.Count(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	render(c, http.StatusOK, "admin_dashboard.html", gin.H{
		"Title":       "Dashboard",
		"Folders":     folders,
		"FolderCount": len(folders),
		"GameCount":   games,
	})
}

func (h *PageHandler) AdminPanel(c *gin.Context) {
	folders, err := h.folders.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	render(c, http.StatusOK, "admin_panel.html", gin.H{"Title": "Admin panel", "Folders": folders})
}

func (h *PageHandler) NewGameForm(c *gin.Context) {
	h.renderGameForm(c, http.StatusOK, service.CreateGameRequest{}, "")
}

func (h *PageHandler) CreateGameForm(c *gin.Context) {
	form := service.CreateGameRequest{
		Name:            c.PostForm("name"),
		Description:     c.PostForm("description"),
		Materials:       c.PostForm("materials"),
		NumberOfPlayers: c.PostForm("number_of_players"),
		Time:            c.PostForm("time"),
		VideoLink:       c.PostForm("video_link"),
		FolderIDs:       service.ParseIDs(c.PostFormArray("folder_ids")),
	}

	_, err := h.games.Create(c.Request.Context(), form)
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.renderGameForm(c, http.StatusOK, form, validationErr.Message)
		return
	case err != nil:
		h.fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/admin_panel/")
}

func (h *PageHandler) renderGameForm(c *gin.Context, status int, form service.CreateGameRequest, msg string) {
	folders, err := h.folders.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	render(c, status, "admin_game_form.html", gin.H{
		"Title":             "Add a game",
		"Form":              form,
		"Folders":           folders,
		"SelectedFolderIDs": []uint(form.FolderIDs),
		"Error":             msg,
	})
}

func (h *PageHandler) AdminGameDetail(c *gin.Context) {
	game, ok := h.loadGame(c)
	if !ok {
		return
	}
	h.renderGameDetail(c, game, editFormOf(game), game.FolderIDs(), "")
}

// UpdateGameForm applies the edit form. Fields missing from the form are left
// alone; the checked folders always replace the game's folders.
func (h *PageHandler) UpdateGameForm(c *gin.Context) {
	game, ok := h.loadGame(c)
	if !ok {
		return
	}

	folderIDs := service.ParseIDs(c.PostFormArray("folder_ids"))
	req := service.UpdateGameRequest{
		Name:            postedField(c, "name"),
		Description:     postedField(c, "description"),
		Materials:       postedField(c, "materials"),
		NumberOfPlayers: postedField(c, "number_of_players"),
		Time:            postedField(c, "time"),
		VideoLink:       postedField(c, "video_link"),
		FolderIDs:       service.Some(folderIDs),
	}

	_, err := h.games.Update(c.Request.Context(), game.ID, req)
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		form := editFormOf(game)
		overlay(&form.Name, req.Name)
		overlay(&form.Description, req.Description)
		overlay(&form.Materials, req.Materials)
		overlay(&form.NumberOfPlayers, req.NumberOfPlayers)
		overlay(&form.Time, req.Time)
		overlay(&form.VideoLink, req.VideoLink)
		h.renderGameDetail(c, game, form, folderIDs, validationErr.Message)
		return
	case err != nil:
		h.fail(c, err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/admin_panel/games/%d/", game.ID))
}

func (h *PageHandler) renderGameDetail(c *gin.Context, game models.Game, form service.CreateGameRequest, selected []uint, msg string) {
	folders, err := h.folders.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	render(c, http.StatusOK, "admin_game.html", gin.H{
		"Title":             game.Name,
		"Game":              newGameResponse(game),
		"Folders":           game.Folders,
		"AllFolders":        folders,
		"Form":              form,
		"SelectedFolderIDs": selected,
		"Error":             msg,
	})
}

func editFormOf(game models.Game) service.CreateGameRequest {
	return service.CreateGameRequest{
		Name:            game.Name,
		Description:     game.Description,
		Materials:       stringValue(game.Materials),
		NumberOfPlayers: game.NumberOfPlayers,
		Time:            game.Time,
		VideoLink:       stringValue(game.VideoLink),
	}
}

func postedField(c *gin.Context, key string) service.Field[string] {
	if v, ok := c.GetPostForm(key); ok {
		return service.Some(v)
	}
	return service.Field[string]{}
}

func overlay(dst *string, f service.Field[string]) {
	if f.Set {
		*dst = f.Value
	}
}

// endregion
