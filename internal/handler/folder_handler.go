package handler

import (
	"context"
	"net/http"

	"thundergames/backend/internal/models"
	"thundergames/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FolderResponse is the folder shape returned by every endpoint.
type FolderResponse struct {
	ID   uint   `json:"id" example:"1"`
	Name string `json:"name" example:"Icebreakers"`
}

func newFolderResponse(folder models.Folder) FolderResponse {
	return FolderResponse{ID: folder.ID, Name: folder.Name}
}

type FolderHandler struct {
	folders service.FolderService
	games   service.GameService
	log     *zap.Logger
}

func NewFolderHandler(folders service.FolderService, games service.GameService, log *zap.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, games: games, log: log}
}

func (h *FolderHandler) RegisterRoutes(admin, public *gin.RouterGroup) {
	admin.GET("/folders/", h.List)
	admin.POST("/folders/", h.Create)
	admin.GET("/folders/:id/games/", h.ListGames)
	admin.POST("/folders/:id/games/:game_id/", h.AddGame)
	admin.DELETE("/folders/:id/games/:game_id/", h.RemoveGame)

	public.GET("/folders/:id/games/", h.ListGamesPublic)
}

// List godoc
// @Summary      List all folders
// @Tags         admin-folders
// @Produce      json
// @Security     SessionAuth
// @Success      200 {array}   FolderResponse
// @Failure      401 {object}  ErrorResponse
// @Router       /folders/ [get]
func (h *FolderHandler) List(c *gin.Context) {
	folders, err := h.folders.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	out := make([]FolderResponse, 0, len(folders))
	for _, f := range folders {
		out = append(out, newFolderResponse(f))
	}
	c.JSON(http.StatusOK, out)
}

// Create godoc
// @Summary      Create a folder
// @Description  Returns the existing folder with 200 when the name is already taken, 201 otherwise.
// @Tags         admin-folders
// @Accept       json
// @Produce      json
// @Security     SessionAuth
// @Param        input body      service.CreateFolderRequest true "Folder name"
// @Success      200   {object}  FolderResponse "Already existed"
// @Success      201   {object}  FolderResponse "Created"
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /folders/ [post]
func (h *FolderHandler) Create(c *gin.Context) {
	var input service.CreateFolderRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		abortJSON(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	folder, created, err := h.folders.Create(c.Request.Context(), input.Name)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, newFolderResponse(folder))
}

// ListGames godoc
// @Summary      List the games in a folder
// @Tags         admin-folders
// @Produce      json
// @Security     SessionAuth
// @Param        id  path      int  true  "Folder ID"
// @Success      200 {array}   GameResponse
// @Failure      401 {object}  ErrorResponse
// @Failure      404 {object}  ErrorResponse "Folder not found"
// @Router       /folders/{id}/games/ [get]
func (h *FolderHandler) ListGames(c *gin.Context) {
	games, ok := h.gamesInFolder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newGameResponses(games))
}

// ListGamesPublic godoc
// @Summary      List the games in a folder (public)
// @Description  Same as the admin listing without folder ids.
// @Tags         public
// @Produce      json
// @Param        id  path      int  true  "Folder ID"
// @Success      200 {array}   PublicGameResponse
// @Failure      404 {object}  ErrorResponse "Folder not found"
// @Router       /public/folders/{id}/games/ [get]
func (h *FolderHandler) ListGamesPublic(c *gin.Context) {
	games, ok := h.gamesInFolder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newPublicGameResponses(games))
}

func (h *FolderHandler) gamesInFolder(c *gin.Context) ([]models.Game, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		abortJSON(c, http.StatusNotFound, "Folder not found")
		return nil, false
	}

	games, err := h.games.ListInFolder(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return nil, false
	}
	return games, true
}

// AddGame godoc
// @Summary      Add a game to a folder
// @Tags         admin-folders
// @Produce      json
// @Security     SessionAuth
// @Param        id      path      int  true  "Folder ID"
// @Param        game_id path      int  true  "Game ID"
// @Success      200     {object}  OKResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /folders/{id}/games/{game_id}/ [post]
func (h *FolderHandler) AddGame(c *gin.Context) {
	h.changeMembership(c, h.games.AddFolders)
}

// RemoveGame godoc
// @Summary      Remove a game from a folder
// @Tags         admin-folders
// @Produce      json
// @Security     SessionAuth
// @Param        id      path      int  true  "Folder ID"
// @Param        game_id path      int  true  "Game ID"
// @Success      200     {object}  OKResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /folders/{id}/games/{game_id}/ [delete]
func (h *FolderHandler) RemoveGame(c *gin.Context) {
	h.changeMembership(c, h.games.RemoveFolders)
}

type membershipFunc func(ctx context.Context, gameID uint, folderIDs ...uint) error

func (h *FolderHandler) changeMembership(c *gin.Context, change membershipFunc) {
	folderID, ok := parseIDParam(c, "id")
	if !ok {
		abortJSON(c, http.StatusNotFound, "Folder not found")
		return
	}
	gameID, ok := parseIDParam(c, "game_id")
	if !ok {
		abortJSON(c, http.StatusNotFound, "Game not found")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.folders.Get(ctx, folderID); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if err := change(ctx, gameID, folderID); err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, OKResponse{OK: true})
}
