package handler

import (
	"net/http"
	"strings"

	"thundergames/backend/internal/models"
	"thundergames/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// region --- DTOs ---

// PublicGameResponse is the game shape visitors see. Absent optional text is "".
type PublicGameResponse struct {
	ID              uint   `json:"id" example:"1"`
	Name            string `json:"name" example:"Two Truths and a Lie"`
	Description     string `json:"description"`
	Materials       string `json:"materials"`
	NumberOfPlayers string `json:"number_of_players" example:"5-10 players"`
	Time            string `json:"time" example:"15 minutes"`
	VideoLink       string `json:"video_link"`
}

// GameResponse is the admin game shape, including folder membership.
type GameResponse struct {
	PublicGameResponse
	FolderIDs []uint `json:"folder_ids"`
}

// GameSearchResult is an admin search hit.
type GameSearchResult struct {
	GameResponse
	FolderNames []string `json:"folder_names"`
}

// PublicGameSearchResult is a public search hit; folder ids are withheld.
type PublicGameSearchResult struct {
	PublicGameResponse
	FolderNames []string `json:"folder_names"`
}

// SearchResponse wraps admin search results.
type SearchResponse struct {
	Results []GameSearchResult `json:"results"`
	Query   string             `json:"query" example:"chess"`
	Count   int                `json:"count" example:"1"`
}

// PublicSearchResponse wraps public search results.
type PublicSearchResponse struct {
	Results []PublicGameSearchResult `json:"results"`
	Query   string                   `json:"query" example:"chess"`
	Count   int                      `json:"count" example:"1"`
}

// PaginatedGameResponse defines the structure for a paginated list of games.
type PaginatedGameResponse struct {
	Data []GameResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

func newPublicGameResponse(game models.Game) PublicGameResponse {
	return PublicGameResponse{
		ID:              game.ID,
		Name:            game.Name,
		Description:     game.Description,
		Materials:       stringValue(game.Materials),
		NumberOfPlayers: game.NumberOfPlayers,
		Time:            game.Time,
		VideoLink:       stringValue(game.VideoLink),
	}
}

func newGameResponse(game models.Game) GameResponse {
	return GameResponse{PublicGameResponse: newPublicGameResponse(game), FolderIDs: game.FolderIDs()}
}

func newGameResponses(games []models.Game) []GameResponse {
	out := make([]GameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, newGameResponse(g))
	}
	return out
}

func newPublicGameResponses(games []models.Game) []PublicGameResponse {
	out := make([]PublicGameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, newPublicGameResponse(g))
	}
	return out
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// endregion

type GameHandler struct {
	games service.GameService
	log   *zap.Logger
}

func NewGameHandler(games service.GameService, log *zap.Logger) *GameHandler {
	return &GameHandler{games: games, log: log}
}

// RegisterRoutes mounts the admin-only routes on admin and the visitor routes on public.
func (h *GameHandler) RegisterRoutes(admin, public *gin.RouterGroup) {
	admin.GET("/games/", h.List)
	admin.POST("/games/", h.Create)
	admin.GET("/games/:id/", h.Get)
	admin.PUT("/games/:id/", h.Update)
	admin.PATCH("/games/:id/", h.Update)
	admin.DELETE("/games/:id/", h.Delete)
	admin.GET("/search/", h.Search)

	public.GET("/search/", h.SearchPublic)
}

// region --- Admin Handlers ---

// List godoc
// @Summary      List all games
// @Description  Retrieves a paginated list of every game, sorted by name.
// @Tags         admin-games
// @Produce      json
// @Security     SessionAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(20)
// @Success      200   {object}  PaginatedGameResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /games/ [get]
func (h *GameHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)

	games, total, err := h.games.List(c.Request.Context(), page, limit)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newGameResponses(games), total, page, limit))
}

// Create godoc
// @Summary      Create a new game
// @Description  Creates a game and links it to the given folders. Unknown folder ids are ignored.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     SessionAuth
// @Param        input body      service.CreateGameRequest true "Game Info"
// @Success      201   {object}  GameResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /games/ [post]
func (h *GameHandler) Create(c *gin.Context) {
	var input service.CreateGameRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		abortJSON(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	game, err := h.games.Create(c.Request.Context(), input)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, newGameResponse(game))
}

// Get godoc
// @Summary      Get a single game by ID
// @Tags         admin-games
// @Produce      json
// @Security     SessionAuth
// @Param        id  path      int  true  "Game ID"
// @Success      200 {object}  GameResponse
// @Failure      401 {object}  ErrorResponse
// @Failure      404 {object}  ErrorResponse "Game not found"
// @Router       /games/{id}/ [get]
func (h *GameHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		abortJSON(c, http.StatusNotFound, "Game not found")
		return
	}

	game, err := h.games.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, newGameResponse(game))
}

// Update godoc
// @Summary      Update a game
// @Description  Applies the keys present in the body. Blank name, number_of_players and time keep
// @Description  their value; blank materials and video_link are cleared. folder_ids, when present,
// @Description  replaces the game's folders.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     SessionAuth
// @Param        id    path      int                       true  "Game ID"
// @Param        input body      service.UpdateGameRequest true  "Fields to change"
// @Success      200   {object}  OKResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /games/{id}/ [put]
// @Router       /games/{id}/ [patch]
func (h *GameHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		abortJSON(c, http.StatusNotFound, "Game not found")
		return
	}

	var input service.UpdateGameRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		abortJSON(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.games.Update(c.Request.Context(), id, input); err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, OKResponse{OK: true})
}

// Delete godoc
// @Summary      Delete a game
// @Description  Deletes a game and removes it from every folder.
// @Tags         admin-games
// @Produce      json
// @Security     SessionAuth
// @Param        id  path      int  true  "Game ID"
// @Success      200 {object}  OKResponse
// @Failure      401 {object}  ErrorResponse
// @Failure      404 {object}  ErrorResponse "Game not found"
// @Router       /games/{id}/ [delete]
func (h *GameHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		abortJSON(c, http.StatusNotFound, "Game not found")
		return
	}

	if err := h.games.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, OKResponse{OK: true})
}

// Search godoc
// @Summary      Search games
// @Description  Case-insensitive substring match over name, description, materials, number_of_players and time.
// @Tags         admin-games
// @Produce      json
// @Security     SessionAuth
// @Param        q   query     string  true  "Search text"
// @Success      200 {object}  SearchResponse
// @Failure      400 {object}  ErrorResponse
// @Failure      401 {object}  ErrorResponse
// @Router       /search/ [get]
func (h *GameHandler) Search(c *gin.Context) {
	query := c.Query("q")
	games, err := h.games.Search(c.Request.Context(), query)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	results := make([]GameSearchResult, 0, len(games))
	for _, g := range games {
		results = append(results, GameSearchResult{GameResponse: newGameResponse(g), FolderNames: g.FolderNames()})
	}
	c.JSON(http.StatusOK, SearchResponse{Results: results, Query: strings.TrimSpace(query), Count: len(results)})
}

// endregion

// region --- Public Handlers ---

// SearchPublic godoc
// @Summary      Search games (public)
// @Description  Same matching as the admin search; folder ids are not included.
// @Tags         public
// @Produce      json
// @Param        q   query     string  true  "Search text"
// @Success      200 {object}  PublicSearchResponse
// @Failure      400 {object}  ErrorResponse
// @Router       /public/search/ [get]
func (h *GameHandler) SearchPublic(c *gin.Context) {
	query := c.Query("q")
	games, err := h.games.Search(c.Request.Context(), query)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	results := make([]PublicGameSearchResult, 0, len(games))
	for _, g := range games {
		results = append(results, PublicGameSearchResult{PublicGameResponse: newPublicGameResponse(g), FolderNames: g.FolderNames()})
	}
	c.JSON(http.StatusOK, PublicSearchResponse{Results: results, Query: strings.TrimSpace(query), Count: len(results)})
}

// endregion
