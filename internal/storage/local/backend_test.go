package local

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/model"
	"sergis-author/internal/storage"
	"sergis-author/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BackendSuite struct {
	suite.Suite
	newStore func(t *testing.T) Store
	store    Store
	backend  *Backend
	ctx      context.Context
	clock    time.Time
}

func (s *BackendSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(s.T())
	s.backend = New(s.store)
	s.clock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.backend.now = func() time.Time { return s.clock }
	s.Require().NoError(s.backend.Init(s.ctx))
}

func (s *BackendSuite) sampleGame(title string) *gamedata.Game {
	g := gamedata.NewGame("", "tester")
	gamedata.AddPrompt(g, gamedata.NewPromptEntry(title))
	return g
}

func (s *BackendSuite) TestSaveListLoad() {
	g := s.sampleGame("Start")
	s.Require().NoError(s.backend.SaveGame(s.ctx, "Flood", g))
	s.Equal(s.clock, g.Modified.Time, "save stamps the document")

	list, err := s.backend.GetGameList(s.ctx)
	s.Require().NoError(err)
	s.Equal(storage.GameList{"Flood": s.clock}, list)

	loaded, err := s.backend.LoadGame(s.ctx, "Flood")
	s.Require().NoError(err)
	s.Require().Len(loaded.PromptList, 1)
	s.Equal("Start", loaded.PromptList[0].Prompt.Title)
	s.NotEmpty(loaded.ID)

	raw, err := s.store.Get(s.ctx, "game_Flood")
	s.Require().NoError(err)
	s.NotContains(raw, `"id"`, "stored document is the exported file format")
}

func (s *BackendSuite) TestLoadMissing() {
	_, err := s.backend.LoadGame(s.ctx, "nothing")
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *BackendSuite) TestSaveRejectsInvalidName() {
	err := s.backend.SaveGame(s.ctx, "My Game!", s.sampleGame("x"))
	s.ErrorIs(err, model.ErrInvalidGameName)
}

func (s *BackendSuite) TestCheckGameName() {
	s.Require().NoError(s.backend.SaveGame(s.ctx, "taken", s.sampleGame("x")))

	s.NoError(s.backend.CheckGameName(s.ctx, `free~$"':;,.-_1`))
	s.ErrorIs(s.backend.CheckGameName(s.ctx, "My Game!"), model.ErrInvalidGameName)
	s.ErrorIs(s.backend.CheckGameName(s.ctx, ""), model.ErrInvalidGameName)
	s.ErrorIs(s.backend.CheckGameName(s.ctx, "taken"), model.ErrGameExists)
}

func (s *BackendSuite) TestRename() {
	s.Require().NoError(s.backend.SaveGame(s.ctx, "a", s.sampleGame("A")))
	s.Require().NoError(s.backend.SaveGame(s.ctx, "b", s.sampleGame("B")))

	s.ErrorIs(s.backend.RenameGame(s.ctx, "a", "b"), model.ErrGameExists)
	s.ErrorIs(s.backend.RenameGame(s.ctx, "zzz", "c"), model.ErrNotFound)
	s.ErrorIs(s.backend.RenameGame(s.ctx, "a", "bad name"), model.ErrInvalidGameName)

	s.Require().NoError(s.backend.RenameGame(s.ctx, "a", "c"))

	list, err := s.backend.GetGameList(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"b", "c"}, list.Names())

	loaded, err := s.backend.LoadGame(s.ctx, "c")
	s.Require().NoError(err)
	s.Equal("A", loaded.PromptList[0].Prompt.Title)

	_, err = s.store.Get(s.ctx, "game_a")
	s.ErrorIs(err, ErrKeyNotFound)

	recent, err := s.backend.RecentFiles(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"b", "c"}, recent)
}

func (s *BackendSuite) TestRemove() {
	s.Require().NoError(s.backend.SaveGame(s.ctx, "gone", s.sampleGame("x")))
	s.Require().NoError(s.backend.RemoveGame(s.ctx, "gone"))

	list, err := s.backend.GetGameList(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)

	recent, err := s.backend.RecentFiles(s.ctx)
	s.Require().NoError(err)
	s.Empty(recent)

	s.ErrorIs(s.backend.RemoveGame(s.ctx, "gone"), model.ErrNotFound)
}

func (s *BackendSuite) TestRecentFilesCapped() {
	for i := 0; i < maxRecentFiles+3; i++ {
		s.Require().NoError(s.backend.SaveGame(s.ctx, fmt.Sprintf("g%02d", i), s.sampleGame("x")))
	}
	_, err := s.backend.LoadGame(s.ctx, "g05")
	s.Require().NoError(err)

	recent, err := s.backend.RecentFiles(s.ctx)
	s.Require().NoError(err)
	s.Len(recent, maxRecentFiles)
	s.Equal("g05", recent[0])
	s.Equal("g12", recent[1])
}

func (s *BackendSuite) TestWithLockedPrompts() {
	other := New(s.store)

	err := storage.WithLockedPrompts(s.ctx, s.backend, "Flood", []int{0, 1}, func() error {
		locked, err := other.LockPrompts(s.ctx, "Flood", []int{1})
		s.Require().NoError(err)
		s.True(locked, "each backend instance has its own memory locker")

		locked, err = s.backend.LockPrompts(s.ctx, "Flood", []int{0})
		s.Require().NoError(err)
		s.True(locked, "owner may re-enter")
		return nil
	})
	s.NoError(err)
}

func TestMemoryBackend(t *testing.T) {
	suite.Run(t, &BackendSuite{newStore: func(*testing.T) Store { return NewMemoryStore() }})
}

func TestSQLiteBackend(t *testing.T) {
	suite.Run(t, &BackendSuite{newStore: func(t *testing.T) Store {
		store, err := OpenSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "games.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	}})
}

func TestRedisBackend(t *testing.T) {
	client := testutil.StartRedis(t)
	suite.Run(t, &BackendSuite{newStore: func(t *testing.T) Store {
		require.NoError(t, client.FlushDB(context.Background()).Err())
		return NewRedisStore(client, "sergis:")
	}})
}

func TestSQLiteStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "games.db")

	store, err := OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "k", "v1"))
	require.NoError(t, store.Set(ctx, "k", "v2"))
	require.NoError(t, store.Close())

	store, err = OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestInitRejectsCorruptedGameList(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), gameListKey, "not json"))

	err := New(store).Init(context.Background())
	assert.ErrorContains(t, err, "corrupted gameList")
}
