package service_test

import (
	"context"
	"math"
	"testing"

	"thundergames/backend/internal/models"
	"thundergames/backend/internal/service"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type catalog struct {
	db      *gorm.DB
	folders service.FolderService
	games   service.GameService
}

func newCatalog(t *testing.T) catalog {
	db := newTestDB(t)
	return catalog{db: db, folders: service.NewFolderService(db), games: service.NewGameService(db)}
}

func (c catalog) folder(t *testing.T, name string) models.Folder {
	t.Helper()
	f, _, err := c.folders.Create(context.Background(), name)
	require.NoError(t, err)
	return f
}

func (c catalog) game(t *testing.T, req service.CreateGameRequest) models.Game {
	t.Helper()
	if req.NumberOfPlayers == "" {
		req.NumberOfPlayers = "4+ players"
	}
	if req.Time == "" {
		req.Time = "20 minutes"
	}
	g, err := c.games.Create(context.Background(), req)
	require.NoError(t, err)
	return g
}

func TestGameService_Create(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	outdoor := c.folder(t, "Outdoor")

	game, err := c.games.Create(ctx, service.CreateGameRequest{
		Name:            "  Capture the Flag ",
		Description:     " Two teams. ",
		Materials:       "   ",
		NumberOfPlayers: "10-30 players",
		Time:            "45 minutes",
		VideoLink:       "",
		FolderIDs:       service.IDList{outdoor.ID, 999},
	})
	require.NoError(t, err)
	require.NotZero(t, game.ID)
	require.Equal(t, "Capture the Flag", game.Name)
	require.Equal(t, "Two teams.", game.Description)
	require.Nil(t, game.Materials)
	require.Nil(t, game.VideoLink)
	require.Equal(t, []uint{outdoor.ID}, game.FolderIDs())

	stored, err := c.games.Get(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{outdoor.ID}, stored.FolderIDs())
	require.Equal(t, []string{"Outdoor"}, stored.FolderNames())
}

func TestGameService_Create_RequiredFields(t *testing.T) {
	valid := service.CreateGameRequest{Name: "Charades", NumberOfPlayers: "4+", Time: "30 minutes"}

	cases := []struct {
		name  string
		edit  func(*service.CreateGameRequest)
		field string
	}{
		{"empty name", func(r *service.CreateGameRequest) { r.Name = "" }, "name"},
		{"blank name", func(r *service.CreateGameRequest) { r.Name = "   " }, "name"},
		{"empty number_of_players", func(r *service.CreateGameRequest) { r.NumberOfPlayers = "" }, "number_of_players"},
		{"empty time", func(r *service.CreateGameRequest) { r.Time = " \t" }, "time"},
		{"everything empty reports name first", func(r *service.CreateGameRequest) { *r = service.CreateGameRequest{} }, "name"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newCatalog(t)
			ctx := context.Background()

			req := valid
			tc.edit(&req)
			_, err := c.games.Create(ctx, req)
			require.ErrorIs(t, err, service.ErrInvalid)

			var verr *service.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
			require.Equal(t, "'"+tc.field+"' is required", verr.Message)

			n, err := c.games.Count(ctx)
			require.NoError(t, err)
			require.Zero(t, n)
		})
	}
}

func TestGameService_Get_NotFound(t *testing.T) {
	c := newCatalog(t)

	_, err := c.games.Get(context.Background(), 7)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.EqualError(t, err, "Game not found")
}

func TestGameService_Update_PartialFields(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	indoor := c.folder(t, "Indoor")

	game := c.game(t, service.CreateGameRequest{
		Name:        "Mafia",
		Description: "Night falls.",
		Materials:   "Cards",
		VideoLink:   "https://example.com/mafia",
		FolderIDs:   service.IDList{indoor.ID},
	})

	t.Run("absent keys leave everything unchanged", func(t *testing.T) {
		updated, err := c.games.Update(ctx, game.ID, service.UpdateGameRequest{})
		require.NoError(t, err)
		require.Equal(t, "Mafia", updated.Name)
		require.Equal(t, "Night falls.", updated.Description)
		require.Equal(t, stringPtr("Cards"), updated.Materials)
		require.Equal(t, []uint{indoor.ID}, updated.FolderIDs())
	})

	t.Run("blank required fields keep their value", func(t *testing.T) {
		updated, err := c.games.Update(ctx, game.ID, service.UpdateGameRequest{
			Name:            service.Some(""),
			NumberOfPlayers: service.Some("  "),
			Time:            service.Some(""),
		})
		require.NoError(t, err)
		require.Equal(t, "Mafia", updated.Name)
		require.Equal(t, "4+ players", updated.NumberOfPlayers)
		require.Equal(t, "20 minutes", updated.Time)
	})

	t.Run("present values are trimmed and stored", func(t *testing.T) {
		updated, err := c.games.Update(ctx, game.ID, service.UpdateGameRequest{
			Name: service.Some("  Werewolf "),
			Time: service.Some("1 hour"),
		})
		require.NoError(t, err)
		require.Equal(t, "Werewolf", updated.Name)
		require.Equal(t, "1 hour", updated.Time)
	})

	t.Run("blank optional fields clear", func(t *testing.T) {
		updated, err := c.games.Update(ctx, game.ID, service.UpdateGameRequest{
			Description: service.Some(""),
			Materials:   service.Some(""),
			VideoLink:   service.Some("   "),
		})
		require.NoError(t, err)
		require.Equal(t, "", updated.Description)
		require.Nil(t, updated.Materials)
		require.Nil(t, updated.VideoLink)
	})

	t.Run("too long values are rejected", func(t *testing.T) {
		long := make([]byte, 51)
		for i := range long {
			long[i] = 'x'
		}
		_, err := c.games.Update(ctx, game.ID, service.UpdateGameRequest{Time: service.Some(string(long))})
		require.ErrorIs(t, err, service.ErrInvalid)

		stored, err := c.games.Get(ctx, game.ID)
		require.NoError(t, err)
		require.Equal(t, "1 hour", stored.Time)
	})
}

func TestGameService_Update_Folders(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	a := c.folder(t, "A")
	b := c.folder(t, "B")
	game := c.game(t, service.CreateGameRequest{Name: "Tag", FolderIDs: service.IDList{a.ID}})

	updated, err := c.games.Update(ctx, game.ID, service.UpdateGameRequest{
		FolderIDs: service.Some(service.IDList{b.ID, 999}),
	})
	require.NoError(t, err)
	require.Equal(t, []uint{b.ID}, updated.FolderIDs())

	updated, err = c.games.Update(ctx, game.ID, service.UpdateGameRequest{
		FolderIDs: service.Some(service.IDList{}),
	})
	require.NoError(t, err)
	require.Empty(t, updated.FolderIDs())
}

func TestGameService_Update_NotFound(t *testing.T) {
	c := newCatalog(t)

	_, err := c.games.Update(context.Background(), 404, service.UpdateGameRequest{Name: service.Some("x")})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestGameService_Delete(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	a := c.folder(t, "A")
	b := c.folder(t, "B")
	game := c.game(t, service.CreateGameRequest{Name: "Bingo", FolderIDs: service.IDList{a.ID, b.ID}})
	other := c.game(t, service.CreateGameRequest{Name: "Charades", FolderIDs: service.IDList{a.ID}})

	require.NoError(t, c.games.Delete(ctx, game.ID))

	inA, err := c.games.ListInFolder(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, inA, 1)
	require.Equal(t, other.ID, inA[0].ID)

	inB, err := c.games.ListInFolder(ctx, b.ID)
	require.NoError(t, err)
	require.Empty(t, inB)

	var links int64
	require.NoError(t, c.db.Table("game_folders").Where("game_id = ?", game.ID).Count(&links).Error)
	require.Zero(t, links)

	err = c.games.Delete(ctx, game.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestGameService_ListInFolder(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	folder := c.folder(t, "Party")
	c.game(t, service.CreateGameRequest{Name: "Pictionary", FolderIDs: service.IDList{folder.ID}})
	c.game(t, service.CreateGameRequest{Name: "Charades", FolderIDs: service.IDList{folder.ID}})
	c.game(t, service.CreateGameRequest{Name: "Solitaire"})

	games, err := c.games.ListInFolder(ctx, folder.ID)
	require.NoError(t, err)
	require.Len(t, games, 2)
	require.Equal(t, "Charades", games[0].Name)
	require.Equal(t, "Pictionary", games[1].Name)
	require.Equal(t, []uint{folder.ID}, games[0].FolderIDs())

	_, err = c.games.ListInFolder(ctx, 999)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.EqualError(t, err, "Folder not found")
}

func TestGameService_Search(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	c.game(t, service.CreateGameRequest{Name: "Speed Chess"})
	c.game(t, service.CreateGameRequest{Name: "Bughouse", Description: "Team CHESS variant"})
	c.game(t, service.CreateGameRequest{Name: "Alpha", Materials: "Two chessboards"})
	c.game(t, service.CreateGameRequest{Name: "Checkers"})
	c.game(t, service.CreateGameRequest{Name: "Relay", NumberOfPlayers: "10-20 chess fans"})
	c.game(t, service.CreateGameRequest{Name: "Marathon", Time: "as long as chess"})

	games, err := c.games.Search(ctx, "chess")
	require.NoError(t, err)

	var names []string
	for _, g := range games {
		names = append(names, g.Name)
	}
	require.Equal(t, []string{"Alpha", "Bughouse", "Marathon", "Relay", "Speed Chess"}, names)
}

func TestGameService_Search_LiteralWildcards(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	c.game(t, service.CreateGameRequest{Name: "100% Fun"})
	c.game(t, service.CreateGameRequest{Name: "1000 Fun"})
	c.game(t, service.CreateGameRequest{Name: "snake_case"})
	c.game(t, service.CreateGameRequest{Name: "snakeXcase"})

	games, err := c.games.Search(ctx, "0%")
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, "100% Fun", games[0].Name)

	games, err = c.games.Search(ctx, "e_c")
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, "snake_case", games[0].Name)
}

func TestGameService_Search_RequiresQuery(t *testing.T) {
	c := newCatalog(t)

	_, err := c.games.Search(context.Background(), "  ")
	require.ErrorIs(t, err, service.ErrInvalid)
	require.EqualError(t, err, "Query parameter 'q' is required")
}

func TestGameService_List_Paginates(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	for _, name := range []string{"E", "D", "C", "B", "A"} {
		c.game(t, service.CreateGameRequest{Name: name})
	}

	games, total, err := c.games.List(ctx, 2, 2)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, games, 2)
	require.Equal(t, "C", games[0].Name)
	require.Equal(t, "D", games[1].Name)

	games, _, err = c.games.List(ctx, 0, 1000)
	require.NoError(t, err)
	require.Len(t, games, 5)

	// Far-out pages are clamped instead of overflowing the offset.
	games, total, err = c.games.List(ctx, math.MaxInt, 100)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Empty(t, games)
}

func TestGameService_AddRemoveFolders(t *testing.T) {
	c := newCatalog(t)
	ctx := context.Background()
	a := c.folder(t, "A")
	b := c.folder(t, "B")
	game := c.game(t, service.CreateGameRequest{Name: "Jenga"})

	require.NoError(t, c.games.AddFolders(ctx, game.ID, a.ID, b.ID, 999))
	require.NoError(t, c.games.AddFolders(ctx, game.ID, a.ID))
	stored, err := c.games.Get(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{a.ID, b.ID}, stored.FolderIDs())

	require.NoError(t, c.games.RemoveFolders(ctx, game.ID, a.ID))
	require.NoError(t, c.games.RemoveFolders(ctx, game.ID, a.ID))
	stored, err = c.games.Get(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{b.ID}, stored.FolderIDs())

	require.NoError(t, c.games.ReplaceFolders(ctx, game.ID, []uint{a.ID}))
	stored, err = c.games.Get(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{a.ID}, stored.FolderIDs())

	require.ErrorIs(t, c.games.AddFolders(ctx, 999, a.ID), service.ErrNotFound)
	require.ErrorIs(t, c.games.RemoveFolders(ctx, 999, a.ID), service.ErrNotFound)
}
