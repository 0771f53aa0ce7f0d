package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"jdlmedia/core/ident"
	"jdlmedia/db"
	"jdlmedia/model"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "jdl.db")), db.GormConfig(false))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateModels(gdb, model.AllModels()...))
	return gdb
}

func strPtr(s string) *string { return &s }

func TestIsDuplicateKey(t *testing.T) {
	require.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	require.True(t, isDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	require.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1045}))
	require.False(t, isDuplicateKey(gorm.ErrRecordNotFound))
	require.Nil(t, translate(nil))
	require.ErrorIs(t, translate(gorm.ErrDuplicatedKey), ErrDuplicate)
}

func TestFolderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormFolderRepository(newTestDB(t))
	owner, other := ident.New(), ident.New()

	music := &model.Folder{ID: ident.New(), Name: "Music", OwnerID: owner}
	require.NoError(t, repo.Create(ctx, music))

	t.Run("root level names are unique per owner", func(t *testing.T) {
		err := repo.Create(ctx, &model.Folder{ID: ident.New(), Name: "Music", OwnerID: owner})
		require.ErrorIs(t, err, ErrDuplicate)

		require.NoError(t, repo.Create(ctx, &model.Folder{ID: ident.New(), Name: "Music", OwnerID: other}))
	})

	rock := &model.Folder{ID: ident.New(), Name: "Rock", OwnerID: owner, ParentFolderID: strPtr(music.ID)}
	require.NoError(t, repo.Create(ctx, rock))
	jazz := &model.Folder{ID: ident.New(), Name: "Jazz", OwnerID: owner, ParentFolderID: strPtr(music.ID)}
	require.NoError(t, repo.Create(ctx, jazz))

	t.Run("same name under another parent is allowed", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &model.Folder{ID: ident.New(), Name: "Rock", OwnerID: owner}))
	})

	t.Run("get owned is owner scoped", func(t *testing.T) {
		got, err := repo.GetOwned(ctx, owner, rock.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, "Rock", got.Name)
		require.Equal(t, music.ID, *got.ParentFolderID)

		got, err = repo.GetOwned(ctx, other, rock.ID)
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("list children", func(t *testing.T) {
		children, err := repo.ListChildren(ctx, owner, strPtr(music.ID))
		require.NoError(t, err)
		require.Len(t, children, 2)
		require.Equal(t, "Jazz", children[0].Name)
		require.Equal(t, "Rock", children[1].Name)

		roots, err := repo.ListChildren(ctx, owner, nil)
		require.NoError(t, err)
		require.Len(t, roots, 2)
	})

	t.Run("batch get ignores foreign ids", func(t *testing.T) {
		folders, err := repo.GetOwnedByIDs(ctx, owner, []string{music.ID, rock.ID, ident.New()})
		require.NoError(t, err)
		require.Len(t, folders, 2)
		ids := []string{folders[0].ID, folders[1].ID}
		sort.Strings(ids)
		want := []string{music.ID, rock.ID}
		sort.Strings(want)
		require.Equal(t, want, ids)

		empty, err := repo.GetOwnedByIDs(ctx, owner, nil)
		require.NoError(t, err)
		require.Empty(t, empty)
	})

	t.Run("rename collision", func(t *testing.T) {
		require.ErrorIs(t, repo.UpdateName(ctx, owner, jazz.ID, "Rock"), ErrDuplicate)
		require.NoError(t, repo.UpdateName(ctx, owner, jazz.ID, "Blues"))
		got, err := repo.GetOwned(ctx, owner, jazz.ID)
		require.NoError(t, err)
		require.Equal(t, "Blues", got.Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, owner, jazz.ID))
		got, err := repo.GetOwned(ctx, owner, jazz.ID)
		require.NoError(t, err)
		require.Nil(t, got)
	})

	all, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestAudioRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormAudioRepository(newTestDB(t))
	owner, other := ident.New(), ident.New()
	folderID := ident.New()

	a1 := &model.Audio{ID: ident.New(), OwnerID: owner, Title: "one"}
	a2 := &model.Audio{ID: ident.New(), OwnerID: owner, Title: "two", FolderID: strPtr(folderID)}
	foreign := &model.Audio{ID: ident.New(), OwnerID: other, Title: "foreign"}
	for _, a := range []*model.Audio{a1, a2, foreign} {
		require.NoError(t, repo.Create(ctx, a))
	}

	root, err := repo.ListInFolder(ctx, owner, nil)
	require.NoError(t, err)
	require.Len(t, root, 1)
	require.Equal(t, a1.ID, root[0].ID)

	inFolder, err := repo.ListInFolder(ctx, owner, strPtr(folderID))
	require.NoError(t, err)
	require.Len(t, inFolder, 1)
	require.Equal(t, a2.ID, inFolder[0].ID)

	count, err := repo.CountOwnedDistinct(ctx, owner, []string{a1.ID, a1.ID, a2.ID, foreign.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	count, err = repo.CountOwnedDistinct(ctx, owner, nil)
	require.NoError(t, err)
	require.Zero(t, count)

	audios, err := repo.GetOwnedByIDs(ctx, owner, []string{a1.ID, a1.ID, foreign.ID})
	require.NoError(t, err)
	require.Len(t, audios, 1)

	all, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, all, 2)

	got, err := repo.GetOwned(ctx, other, a1.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, repo.UpdateTitle(ctx, owner, a1.ID, "renamed"))
	require.NoError(t, repo.UpdateTitle(ctx, owner, foreign.ID, "hijacked"))
	require.NoError(t, repo.SetBookmark(ctx, owner, a1.ID, true))

	got, err = repo.GetOwned(ctx, owner, a1.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Title)
	require.True(t, got.IsBookmark)

	require.NoError(t, repo.SetBookmark(ctx, owner, a1.ID, false))
	got, err = repo.GetOwned(ctx, owner, a1.ID)
	require.NoError(t, err)
	require.False(t, got.IsBookmark)

	got, err = repo.GetOwned(ctx, other, foreign.ID)
	require.NoError(t, err)
	require.Equal(t, "foreign", got.Title)
}

func TestPlaylistRepositoryCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPlaylistRepository(newTestDB(t))
	owner := ident.New()

	p := &model.Playlist{ID: ident.New(), Name: "Favs", OwnerID: owner}
	require.NoError(t, repo.Create(ctx, p))

	loaded, err := repo.GetOwned(ctx, owner, p.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Content)
	require.Empty(t, loaded.Content)
	require.Zero(t, loaded.Version)

	stale := *loaded

	content := model.Content{{Type: model.MediaTypeAudio, ID: "a1"}, {Type: model.MediaTypeAudio, ID: "a1"}}
	ok, err := repo.CompareAndSwapContent(ctx, loaded, content)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(1), loaded.Version)

	ok, err = repo.CompareAndSwapContent(ctx, &stale, model.Content{})
	require.NoError(t, err)
	require.False(t, ok)
	require.Zero(t, stale.Version)

	reloaded, err := repo.GetOwned(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Equal(t, content, reloaded.Content)
	require.Equal(t, int64(1), reloaded.Version)

	_, err = repo.GetOwned(ctx, ident.New(), p.ID)
	require.NoError(t, err)
}

func TestPlaylistRepositoryConcurrentWritersOneWins(t *testing.T) {
	ctx := context.Background()
	gdb := newTestDB(t)
	repo := NewGormPlaylistRepository(gdb)
	owner := ident.New()

	p := &model.Playlist{ID: ident.New(), Name: "Race", OwnerID: owner}
	require.NoError(t, repo.Create(ctx, p))

	const writers = 4
	results := make([]bool, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		i := i
		snapshot := *p
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.CompareAndSwapContent(ctx, &snapshot, model.Content{{Type: model.MediaTypeAudio, ID: fmt.Sprint(i)}})
			if err == nil {
				results[i] = ok
			}
		}()
	}
	wg.Wait()

	wins := 0
	for _, ok := range results {
		if ok {
			wins++
		}
	}
	require.LessOrEqual(t, wins, 1)
}

func TestPlaylistRepositoryUpdateFieldsAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPlaylistRepository(newTestDB(t))
	owner := ident.New()

	p := &model.Playlist{ID: ident.New(), Name: "Old", OwnerID: owner}
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.Create(ctx, &model.Playlist{ID: ident.New(), Name: "Other", OwnerID: ident.New()}))

	require.NoError(t, repo.UpdateFields(ctx, owner, p.ID, map[string]interface{}{"name": "New", "description": "d"}))
	require.NoError(t, repo.UpdateFields(ctx, owner, p.ID, nil))

	list, err := repo.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "New", list[0].Name)
	require.Equal(t, "d", list[0].Description)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormUserRepository(newTestDB(t))

	u := &model.User{ID: ident.New(), Login: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, u))
	require.ErrorIs(t, repo.Create(ctx, &model.User{ID: ident.New(), Login: "alice", Email: "other@example.com", PasswordHash: "x"}), ErrDuplicate)

	got, err := repo.GetByLogin(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got.Email)

	got, err = repo.GetByLogin(ctx, "bob")
	require.NoError(t, err)
	require.Nil(t, got)
}
