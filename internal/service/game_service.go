package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"thundergames/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*limit well inside an int32 offset.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// searchColumns are matched, OR-ed together, by Search.
var searchColumns = []string{"name", "description", "materials", "number_of_players", "time"}

type GameService interface {
	List(ctx context.Context, page, limit int) ([]models.Game, int64, error)
	ListInFolder(ctx context.Context, folderID uint) ([]models.Game, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, req CreateGameRequest) (models.Game, error)
	Get(ctx context.Context, id uint) (models.Game, error)
	Update(ctx context.Context, id uint, req UpdateGameRequest) (models.Game, error)
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string) ([]models.Game, error)

	AddFolders(ctx context.Context, gameID uint, folderIDs ...uint) error
	RemoveFolders(ctx context.Context, gameID uint, folderIDs ...uint) error
	ReplaceFolders(ctx context.Context, gameID uint, folderIDs []uint) error
}

type gameService struct {
	db *gorm.DB
}

func NewGameService(db *gorm.DB) GameService {
	return &gameService{db: db}
}

func preloadFolders(db *gorm.DB) *gorm.DB {
	return db.Preload("Folders", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("name")
	})
}

func byName(db *gorm.DB) *gorm.DB {
	return db.Order("name").Order("id")
}

func (s *gameService) List(ctx context.Context, page, limit int) ([]models.Game, int64, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return paginate[models.Game](s.db.WithContext(ctx), page, limit, byName, preloadFolders)
}

func (s *gameService) ListInFolder(ctx context.Context, folderID uint) ([]models.Game, error) {
	db := s.db.WithContext(ctx)
	if err := db.First(&models.Folder{}, folderID).Error; err != nil {
		return nil, notFoundOr(err, "Folder")
	}

	members := db.Table("game_folders").Select("game_id").Where("folder_id = ?", folderID)
	games := []models.Game{}
	err := preloadFolders(byName(db)).Where("id IN (?)", members).Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("list games in folder: %w", err)
	}
	return games, nil
}

func (s *gameService) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Game{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

func (s *gameService) Create(ctx context.Context, req CreateGameRequest) (models.Game, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return models.Game{}, err
	}

	game := models.Game{
		Name:            req.Name,
		Description:     req.Description,
		Materials:       nullable(req.Materials),
		NumberOfPlayers: req.NumberOfPlayers,
		Time:            req.Time,
		VideoLink:       nullable(req.VideoLink),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		folders, err := existingFolders(tx, req.FolderIDs)
		if err != nil {
			return err
		}
		game.Folders = folders
		// Link the folders without upserting them.
		if err := tx.Omit("Folders.*").Create(&game).Error; err != nil {
			return fmt.Errorf("create game: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Game{}, err
	}
	return game, nil
}

func (s *gameService) Get(ctx context.Context, id uint) (models.Game, error) {
	var game models.Game
	if err := preloadFolders(s.db.WithContext(ctx)).First(&game, id).Error; err != nil {
		return models.Game{}, notFoundOr(err, "Game")
	}
	return game, nil
}

func (s *gameService) Update(ctx context.Context, id uint, req UpdateGameRequest) (models.Game, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, id).Error; err != nil {
			return notFoundOr(err, "Game")
		}

		applyUpdate(&game, req)
		if err := validateStruct(createRequestOf(game)); err != nil {
			return err
		}

		err := tx.Model(&models.Game{ID: game.ID}).Updates(map[string]any{
			"name":              game.Name,
			"description":       game.Description,
			"materials":         game.Materials,
			"number_of_players": game.NumberOfPlayers,
			"time":              game.Time,
			"video_link":        game.VideoLink,
		}).Error
		if err != nil {
			return fmt.Errorf("update game: %w", err)
		}

		if req.FolderIDs.Set {
			return replaceFolders(tx, &game, req.FolderIDs.Value)
		}
		return nil
	})
	if err != nil {
		return models.Game{}, err
	}
	return s.Get(ctx, id)
}

// applyUpdate copies present fields onto game. Blank name, number_of_players and
// time keep the stored value; blank materials and video_link clear to NULL;
// description is always overwritten.
func applyUpdate(game *models.Game, req UpdateGameRequest) {
	if req.Name.Set {
		game.Name = keepIfBlank(req.Name.Value, game.Name)
	}
	if req.Description.Set {
		game.Description = strings.TrimSpace(req.Description.Value)
	}
	if req.Materials.Set {
		game.Materials = nullable(strings.TrimSpace(req.Materials.Value))
	}
	if req.NumberOfPlayers.Set {
		game.NumberOfPlayers = keepIfBlank(req.NumberOfPlayers.Value, game.NumberOfPlayers)
	}
	if req.Time.Set {
		game.Time = keepIfBlank(req.Time.Value, game.Time)
	}
	if req.VideoLink.Set {
		game.VideoLink = nullable(strings.TrimSpace(req.VideoLink.Value))
	}
}

func keepIfBlank(value, current string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return current
}

func createRequestOf(game models.Game) CreateGameRequest {
	return CreateGameRequest{
		Name:            game.Name,
		Description:     game.Description,
		Materials:       deref(game.Materials),
		NumberOfPlayers: game.NumberOfPlayers,
		Time:            game.Time,
		VideoLink:       deref(game.VideoLink),
	}
}

func (s *gameService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, id).Error; err != nil {
			return notFoundOr(err, "Game")
		}
		// Removes the game_folders rows along with the game.
		if err := tx.Select(clause.Associations).Delete(&game).Error; err != nil {
			return fmt.Errorf("delete game: %w", err)
		}
		return nil
	})
}

func (s *gameService) Search(ctx context.Context, query string) ([]models.Game, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, &ValidationError{Field: "q", Message: "Query parameter 'q' is required"}
	}

	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	conds := make([]string, 0, len(searchColumns))
	args := make([]any, 0, len(searchColumns))
	for _, col := range searchColumns {
		conds = append(conds, fmt.Sprintf(`LOWER(%q) LIKE ? ESCAPE '\'`, col))
		args = append(args, pattern)
	}

	games := []models.Game{}
	err := preloadFolders(byName(s.db.WithContext(ctx))).
		Where(strings.Join(conds, " OR "), args...).
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	return games, nil
}

func (s *gameService) AddFolders(ctx context.Context, gameID uint, folderIDs ...uint) error {
	return s.withGame(ctx, gameID, func(tx *gorm.DB, game *models.Game) error {
		folders, err := existingFolders(tx, folderIDs)
		if err != nil || len(folders) == 0 {
			return err
		}
		if err := tx.Model(game).Omit("Folders.*").Association("Folders").Append(folders); err != nil {
			return fmt.Errorf("add folders: %w", err)
		}
		return nil
	})
}

func (s *gameService) RemoveFolders(ctx context.Context, gameID uint, folderIDs ...uint) error {
	return s.withGame(ctx, gameID, func(tx *gorm.DB, game *models.Game) error {
		if len(folderIDs) == 0 {
			return nil
		}
		folders := make([]*models.Folder, 0, len(folderIDs))
		for _, id := range folderIDs {
			folders = append(folders, &models.Folder{ID: id})
		}
		if err := tx.Model(game).Association("Folders").Delete(folders); err != nil {
			return fmt.Errorf("remove folders: %w", err)
		}
		return nil
	})
}

func (s *gameService) ReplaceFolders(ctx context.Context, gameID uint, folderIDs []uint) error {
	return s.withGame(ctx, gameID, func(tx *gorm.DB, game *models.Game) error {
		return replaceFolders(tx, game, folderIDs)
	})
}

func (s *gameService) withGame(ctx context.Context, gameID uint, fn func(tx *gorm.DB, game *models.Game) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.First(&game, gameID).Error; err != nil {
			return notFoundOr(err, "Game")
		}
		return fn(tx, &game)
	})
}

// replaceFolders sets the game's folders to the existing subset of folderIDs.
func replaceFolders(tx *gorm.DB, game *models.Game, folderIDs []uint) error {
	folders, err := existingFolders(tx, folderIDs)
	if err != nil {
		return err
	}
	association := tx.Model(game).Omit("Folders.*").Association("Folders")
	if len(folders) == 0 {
		err = association.Clear()
	} else {
		err = association.Replace(folders)
	}
	if err != nil {
		return fmt.Errorf("replace folders: %w", err)
	}
	return nil
}

// existingFolders loads the folders whose ids exist; unknown ids are dropped.
func existingFolders(tx *gorm.DB, ids []uint) ([]*models.Folder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var folders []*models.Folder
	if err := tx.Where("id IN ?", ids).Order("name").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("load folders: %w", err)
	}
	return folders, nil
}

// paginate counts every T, then loads one page with scopes applied.
// db must be a fresh session so the two queries do not share a statement.
func paginate[T any](db *gorm.DB, page, limit int, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var total int64
	if err := db.Model(new(T)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", err)
	}

	results := []T{}
	offset := (page - 1) * limit
	if err := db.Scopes(scopes...).Offset(offset).Limit(limit).Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("page: %w", err)
	}
	return results, total, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
