package playlist_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"jdlmedia/core/apperr"
	"jdlmedia/core/ident"
	"jdlmedia/core/playlist"
	"jdlmedia/model"
	"jdlmedia/repository/mock"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	owner     string
	playlists *mock.MockPlaylistRepository
	audios    *mock.MockAudioRepository
	svc       *playlist.Service
}

type fakeCovers struct{ err error }

func (c fakeCovers) CoverURL(_ context.Context, key string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return "https://covers.example/" + key + "?sig=1", nil
}

// memoryCache 进程内的歌单缓存，代数语义与 Redis 实现一致
type memoryCache struct {
	items       map[string]model.Playlist
	gens        map[string]int
	invalidated []string
	// beforeSet 在写回之前执行，用来插入并发的修改
	beforeSet func()
}

func (c *memoryCache) GetPlaylist(_ context.Context, ownerID, id string) (*model.Playlist, error) {
	p, ok := c.items[ownerID+id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *memoryCache) PlaylistGeneration(_ context.Context, ownerID, id string) (string, error) {
	return strconv.Itoa(c.gens[ownerID+id]), nil
}

func (c *memoryCache) SetPlaylist(_ context.Context, p *model.Playlist, generation string) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	if strconv.Itoa(c.gens[p.OwnerID+p.ID]) != generation {
		return nil
	}
	c.items[p.OwnerID+p.ID] = *p
	return nil
}

func (c *memoryCache) InvalidatePlaylist(_ context.Context, ownerID, id string) error {
	if c.gens == nil {
		c.gens = make(map[string]int)
	}
	c.gens[ownerID+id]++
	delete(c.items, ownerID+id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func newFixture(t *testing.T, cache playlist.Cache, covers playlist.CoverStore) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		owner:     ident.New(),
		playlists: mock.NewMockPlaylistRepository(ctrl),
		audios:    mock.NewMockAudioRepository(ctrl),
	}
	f.svc = playlist.NewService(f.playlists, f.audios, model.NewMediaTypeSet(nil), cache, covers)
	return f
}

// stored 模拟数据库中的一条歌单，CAS 行为与真实仓库一致
func (f *fixture) stored(content model.Content) *model.Playlist {
	p := &model.Playlist{ID: ident.New(), Name: "Mix", OwnerID: f.owner, Content: content, Version: 1}
	f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, p.ID).DoAndReturn(
		func(context.Context, string, string) (*model.Playlist, error) {
			cp := *p
			cp.Content = p.Content.Clone()
			return &cp, nil
		},
	).AnyTimes()
	f.playlists.EXPECT().CompareAndSwapContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, loaded *model.Playlist, next model.Content) (bool, error) {
			if loaded.Version != p.Version {
				return false, nil
			}
			p.Content = next.Clone()
			p.Version++
			loaded.Content = next
			loaded.Version = p.Version
			return true, nil
		},
	).AnyTimes()
	return p
}

func items(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperr.HasCode(err, code), "want %s, got %v", code, err)
}

func a(id string) model.ContentItem { return model.ContentItem{Type: model.MediaTypeAudio, ID: id} }

func TestAddItemsAppendsWithoutDedup(t *testing.T) {
	f := newFixture(t, nil, nil)
	a1, a2, a3 := ident.New(), ident.New(), ident.New()
	p := f.stored(model.Content{a(a1), a(a2)})

	f.audios.EXPECT().CountOwnedDistinct(gomock.Any(), f.owner, []string{a3}).Return(int64(1), nil)
	got, err := f.svc.AddItems(context.Background(), f.owner, playlist.ItemsInput{
		ID:    p.ID,
		Items: items(t, []map[string]string{{"id": a3, "type": "AUDIO"}}),
	})
	require.NoError(t, err)
	require.Equal(t, model.Content{a(a1), a(a2), a(a3)}, got.Content)
	require.Equal(t, int64(2), got.Version)

	f.audios.EXPECT().CountOwnedDistinct(gomock.Any(), f.owner, []string{a1}).Return(int64(1), nil)
	got, err = f.svc.AddItems(context.Background(), f.owner, playlist.ItemsInput{
		ID:    p.ID,
		Items: items(t, []map[string]string{{"id": a1, "type": "AUDIO"}, {"id": a1, "type": "AUDIO"}}),
	})
	require.NoError(t, err)
	require.Equal(t, model.Content{a(a1), a(a2), a(a3), a(a1), a(a1)}, got.Content)
}

func TestAddItemsValidation(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	id := ident.New()

	tests := []struct {
		name  string
		in    playlist.ItemsInput
		codes []string
	}{
		{"missing items", playlist.ItemsInput{ID: id}, []string{"fields/required"}},
		{"null items", playlist.ItemsInput{ID: id, Items: json.RawMessage("null")}, []string{"fields/required"}},
		{"not an array", playlist.ItemsInput{ID: id, Items: json.RawMessage(`{"id":"x"}`)}, []string{"playlists/invalid-items-structure"}},
		{"empty", playlist.ItemsInput{ID: id, Items: json.RawMessage(`[]`)}, []string{"playlists/empty-items"}},
		{"missing type", playlist.ItemsInput{ID: id, Items: json.RawMessage(`[{"id":"x"}]`)}, []string{"playlists/invalid-items-structure"}},
		{"unknown type", playlist.ItemsInput{ID: id, Items: json.RawMessage(`[{"id":"x","type":"IMAGE"}]`)}, []string{"playlists/invalid-items-structure"}},
		{"numeric id", playlist.ItemsInput{ID: id, Items: json.RawMessage(`[{"id":5,"type":"AUDIO"}]`)}, []string{"playlists/invalid-items-structure"}},
		{"empty video id", playlist.ItemsInput{ID: id, Items: json.RawMessage(`[{"id":"","type":"VIDEO"}]`)}, []string{"playlists/invalid-items-structure"}},
		{"empty audio id", playlist.ItemsInput{ID: id, Items: json.RawMessage(`[{"id":"","type":"AUDIO"}]`)}, []string{"playlists/invalid-items-structure"}},
		{"scalar element", playlist.ItemsInput{ID: id, Items: json.RawMessage(`["x"]`)}, []string{"playlists/invalid-items-structure"}},
		{"bad playlist id and items", playlist.ItemsInput{ID: "nope", Items: json.RawMessage(`[]`)}, []string{"playlists/unknown-playlist", "playlists/empty-items"}},
		{"malformed audio id", playlist.ItemsInput{ID: id, Items: json.RawMessage(`[{"id":"x","type":"AUDIO"}]`)}, []string{"playlists/invalid-items"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.AddItems(ctx, f.owner, tt.in)
			l, ok := apperr.As(err)
			require.True(t, ok, "%v", err)
			require.Len(t, l, len(tt.codes))
			for _, code := range tt.codes {
				require.True(t, l.Has(code), code)
			}
		})
	}
}

func TestAddItemsUnknownAudio(t *testing.T) {
	f := newFixture(t, nil, nil)
	known, unknown := ident.New(), ident.New()

	f.audios.EXPECT().CountOwnedDistinct(gomock.Any(), f.owner, []string{known, unknown}).Return(int64(1), nil)
	_, err := f.svc.AddItems(context.Background(), f.owner, playlist.ItemsInput{
		ID: ident.New(),
		Items: items(t, []map[string]string{
			{"id": known, "type": "AUDIO"},
			{"id": "any-video-id", "type": "VIDEO"},
			{"id": unknown, "type": "AUDIO"},
			{"id": known, "type": "AUDIO"},
		}),
	})
	requireCode(t, err, "playlists/invalid-items")
}

func TestAddItemsVideoIsNotExistenceChecked(t *testing.T) {
	f := newFixture(t, nil, nil)
	p := f.stored(model.Content{})

	got, err := f.svc.AddItems(context.Background(), f.owner, playlist.ItemsInput{
		ID:    p.ID,
		Items: items(t, []map[string]string{{"id": "some-video", "type": "VIDEO"}}),
	})
	require.NoError(t, err)
	require.Equal(t, model.Content{{Type: model.MediaTypeVideo, ID: "some-video"}}, got.Content)
}

func TestAddItemsUnknownPlaylist(t *testing.T) {
	f := newFixture(t, nil, nil)
	id, audioID := ident.New(), ident.New()
	f.audios.EXPECT().CountOwnedDistinct(gomock.Any(), f.owner, []string{audioID}).Return(int64(1), nil)
	f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, id).Return(nil, nil)

	_, err := f.svc.AddItems(context.Background(), f.owner, playlist.ItemsInput{
		ID:    id,
		Items: items(t, []map[string]string{{"id": audioID, "type": "AUDIO"}}),
	})
	requireCode(t, err, "playlists/unknown-playlist")
}

func TestRemoveContent(t *testing.T) {
	ctx := context.Background()

	t.Run("by id regardless of type", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		p := f.stored(model.Content{a("a1"), a("a2"), a("a1"), {Type: model.MediaTypeVideo, ID: "a2"}})

		got, err := f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{
			ID:    p.ID,
			Items: json.RawMessage(`[{"id":"a1"}]`),
		})
		require.NoError(t, err)
		require.Equal(t, model.Content{a("a2"), {Type: model.MediaTypeVideo, ID: "a2"}}, got.Content)

		got, err = f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{
			ID:    p.ID,
			Items: json.RawMessage(`[{"id":"a2","type":"AUDIO"}]`),
		})
		require.NoError(t, err)
		require.Equal(t, model.Content{}, got.Content)
	})

	t.Run("all ignores items", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		p := f.stored(model.Content{a("a1"), a("a2")})

		got, err := f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{
			ID:    p.ID,
			All:   true,
			Items: json.RawMessage(`"garbage"`),
		})
		require.NoError(t, err)
		require.Empty(t, got.Content)

		got, err = f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{ID: p.ID, All: true})
		require.NoError(t, err)
		require.Empty(t, got.Content)
	})

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		_, err := f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{ID: ident.New()})
		requireCode(t, err, "fields/required")

		_, err = f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{ID: ident.New(), Items: json.RawMessage(`[{"type":"AUDIO"}]`)})
		requireCode(t, err, "playlists/invalid-items-structure")

		_, err = f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{ID: ident.New(), Items: json.RawMessage(`[{"id":""}]`)})
		requireCode(t, err, "playlists/invalid-items-structure")

		_, err = f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{ID: "x", All: true})
		requireCode(t, err, "playlists/unknown-playlist")
	})
}

func TestReorderContent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	original := model.Content{a("a1"), a("a2"), {Type: model.MediaTypeVideo, ID: "v1"}, a("a1")}
	p := f.stored(original.Clone())

	reordered := model.Content{{Type: model.MediaTypeVideo, ID: "v1"}, a("a1"), a("a2"), a("a1")}
	got, err := f.svc.ReorderContent(ctx, f.owner, playlist.ItemsInput{ID: p.ID, Items: items(t, reordered)})
	require.NoError(t, err)
	require.Equal(t, reordered, got.Content)

	rejected := []model.Content{
		{a("a1"), a("a2"), {Type: model.MediaTypeVideo, ID: "v1"}},
		{a("a1"), a("a2"), {Type: model.MediaTypeVideo, ID: "v1"}, a("a1"), a("a3")},
		{a("a1"), a("a2"), a("v1"), a("a1")},
		{a("a2"), a("a2"), {Type: model.MediaTypeVideo, ID: "v1"}, a("a1")},
	}
	for _, q := range rejected {
		_, err := f.svc.ReorderContent(ctx, f.owner, playlist.ItemsInput{ID: p.ID, Items: items(t, q)})
		requireCode(t, err, "playlists/content-not-identical")
	}
	require.Equal(t, reordered, p.Content)
}

func TestMutateRetriesLostRaces(t *testing.T) {
	ctx := context.Background()

	t.Run("re-applies on the fresh content", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		id := ident.New()
		versions := []model.Playlist{
			{ID: id, OwnerID: f.owner, Content: model.Content{a("a1")}, Version: 1},
			{ID: id, OwnerID: f.owner, Content: model.Content{a("a1"), a("b1")}, Version: 2},
		}
		gomock.InOrder(
			f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, id).Return(&versions[0], nil),
			f.playlists.EXPECT().CompareAndSwapContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil),
			f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, id).Return(&versions[1], nil),
			f.playlists.EXPECT().CompareAndSwapContent(gomock.Any(), &versions[1], model.Content{a("a1"), a("b1")}).
				DoAndReturn(func(_ context.Context, p *model.Playlist, next model.Content) (bool, error) {
					p.Content = next
					p.Version++
					return true, nil
				}),
		)

		got, err := f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{ID: id, Items: json.RawMessage(`[{"id":"zz"}]`)})
		require.NoError(t, err)
		require.Equal(t, int64(3), got.Version)
		require.Equal(t, model.Content{a("a1"), a("b1")}, got.Content)
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		id := ident.New()
		f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, id).DoAndReturn(
			func(context.Context, string, string) (*model.Playlist, error) {
				return &model.Playlist{ID: id, OwnerID: f.owner, Content: model.Content{}}, nil
			},
		).Times(3)
		f.playlists.EXPECT().CompareAndSwapContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil).Times(3)

		_, err := f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{ID: id, All: true})
		requireCode(t, err, "playlists/concurrent-modification")
	})

	t.Run("infrastructure error is not retried", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		id := ident.New()
		f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, id).Return(&model.Playlist{ID: id, OwnerID: f.owner}, nil)
		f.playlists.EXPECT().CompareAndSwapContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("deadlock"))

		_, err := f.svc.RemoveContent(ctx, f.owner, playlist.RemoveInput{ID: id, All: true})
		require.Error(t, err)
		_, isDomain := apperr.As(err)
		require.False(t, isDomain)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("name required", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		_, err := f.svc.Create(ctx, f.owner, playlist.CreateInput{})
		requireCode(t, err, "fields/required")
	})

	t.Run("empty content", func(t *testing.T) {
		f := newFixture(t, nil, fakeCovers{})
		f.playlists.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)

		for _, content := range []json.RawMessage{nil, json.RawMessage(`[]`)} {
			got, err := f.svc.Create(ctx, f.owner, playlist.CreateInput{Name: "Mix", Cover: "covers/1.jpg", Content: content})
			require.NoError(t, err)
			require.True(t, ident.IsValid(got.ID))
			require.Equal(t, f.owner, got.OwnerID)
			require.Equal(t, model.Content{}, got.Content)
			require.Equal(t, "https://covers.example/covers/1.jpg?sig=1", got.CoverURL)
		}
	})

	t.Run("initial content validated like add", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		audioID := ident.New()

		_, err := f.svc.Create(ctx, f.owner, playlist.CreateInput{Name: "Mix", Content: json.RawMessage(`[{"id":"x"}]`)})
		requireCode(t, err, "playlists/invalid-items-structure")

		f.audios.EXPECT().CountOwnedDistinct(gomock.Any(), f.owner, []string{audioID}).Return(int64(0), nil)
		_, err = f.svc.Create(ctx, f.owner, playlist.CreateInput{Name: "Mix", Content: items(t, model.Content{a(audioID)})})
		requireCode(t, err, "playlists/invalid-items")

		f.audios.EXPECT().CountOwnedDistinct(gomock.Any(), f.owner, []string{audioID}).Return(int64(1), nil)
		f.playlists.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		got, err := f.svc.Create(ctx, f.owner, playlist.CreateInput{Name: "Mix", Content: items(t, model.Content{a(audioID), a(audioID)})})
		require.NoError(t, err)
		require.Equal(t, model.Content{a(audioID), a(audioID)}, got.Content)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	name, empty := "Renamed", ""

	t.Run("validation", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		_, err := f.svc.Update(ctx, f.owner, playlist.UpdateInput{ID: "bad", Name: &empty, Description: &empty})
		l, ok := apperr.As(err)
		require.True(t, ok)
		require.Len(t, l, 3)
		require.True(t, l.Has("playlists/unknown-playlist"))
		require.True(t, l.Has("fields/invalid"))
	})

	t.Run("unknown playlist", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		id := ident.New()
		f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, id).Return(nil, nil)
		_, err := f.svc.Update(ctx, f.owner, playlist.UpdateInput{ID: id, Name: &name})
		requireCode(t, err, "playlists/unknown-playlist")
	})

	t.Run("updates given fields only", func(t *testing.T) {
		cache := &memoryCache{items: map[string]model.Playlist{}}
		f := newFixture(t, cache, nil)
		id := ident.New()
		f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, id).
			Return(&model.Playlist{ID: id, OwnerID: f.owner, Name: "Old", Description: "keep"}, nil)
		f.playlists.EXPECT().UpdateFields(gomock.Any(), f.owner, id, map[string]interface{}{"name": name}).Return(nil)

		before := time.Now()
		got, err := f.svc.Update(ctx, f.owner, playlist.UpdateInput{ID: id, Name: &name})
		require.NoError(t, err)
		require.Equal(t, "Renamed", got.Name)
		require.Equal(t, "keep", got.Description)
		require.False(t, got.UpdatedAt.Before(before))
		require.Contains(t, cache.invalidated, id)
	})
}

func TestGetHydratesAndCaches(t *testing.T) {
	ctx := context.Background()
	cache := &memoryCache{items: map[string]model.Playlist{}}
	f := newFixture(t, cache, fakeCovers{err: errors.New("minio down")})
	id := ident.New()
	stored := &model.Playlist{
		ID:      id,
		OwnerID: f.owner,
		Name:    "Mix",
		Cover:   "covers/x.jpg",
		Content: model.Content{a("a1"), a("dangling"), a("a1")},
	}

	f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, id).Return(stored, nil).Times(1)
	f.audios.EXPECT().GetOwnedByIDs(gomock.Any(), f.owner, []string{"a1", "dangling"}).
		Return([]model.Audio{{ID: "a1", Title: "one"}}, nil).Times(2)

	for i := 0; i < 2; i++ {
		got, err := f.svc.Get(ctx, f.owner, id)
		require.NoError(t, err)
		require.Len(t, got.Content, 3)
		require.NotNil(t, got.Content[0])
		require.Nil(t, got.Content[1])
		require.Empty(t, got.CoverURL)

		raw, err := json.Marshal(got)
		require.NoError(t, err)
		var decoded struct {
			Name    string            `json:"name"`
			Content []json.RawMessage `json:"content"`
		}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		require.Equal(t, "Mix", decoded.Name)
		require.Len(t, decoded.Content, 3)
		require.Equal(t, "null", string(decoded.Content[1]))
	}

	_, err := f.svc.Get(ctx, f.owner, "not-an-id")
	requireCode(t, err, "playlists/unknown-playlist")
}

func TestGetDoesNotCacheOverConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	cache := &memoryCache{items: map[string]model.Playlist{}}
	f := newFixture(t, cache, nil)
	a1, a2 := ident.New(), ident.New()
	p := f.stored(model.Content{a(a1)})

	f.audios.EXPECT().CountOwnedDistinct(gomock.Any(), f.owner, []string{a2}).Return(int64(1), nil)
	f.audios.EXPECT().GetOwnedByIDs(gomock.Any(), f.owner, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, ids []string) ([]model.Audio, error) {
			out := make([]model.Audio, 0, len(ids))
			for _, id := range ids {
				out = append(out, model.Audio{ID: id, OwnerID: f.owner})
			}
			return out, nil
		},
	).AnyTimes()

	// 读方查完库、写回缓存之前，另一个请求追加了内容
	cache.beforeSet = func() {
		cache.beforeSet = nil
		_, err := f.svc.AddItems(ctx, f.owner, playlist.ItemsInput{
			ID:    p.ID,
			Items: items(t, []map[string]string{{"id": a2, "type": "AUDIO"}}),
		})
		require.NoError(t, err)
	}

	got, err := f.svc.Get(ctx, f.owner, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Content, 1)
	require.Empty(t, cache.items)

	got, err = f.svc.Get(ctx, f.owner, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Content, 2)
	require.Equal(t, int64(2), got.Version)

	// 第二次读取的结果已写入缓存
	cached, err := cache.GetPlaylist(ctx, f.owner, p.ID)
	require.NoError(t, err)
	require.Equal(t, model.Content{a(a1), a(a2)}, cached.Content)
}

func TestGetUnknownAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil, nil)
	id := ident.New()
	f.playlists.EXPECT().GetOwned(gomock.Any(), f.owner, id).Return(nil, nil)
	_, err := f.svc.Get(ctx, f.owner, id)
	requireCode(t, err, "playlists/unknown-playlist")

	f.playlists.EXPECT().ListByOwner(gomock.Any(), f.owner).Return([]model.Playlist{{ID: id}}, nil)
	list, err := f.svc.List(ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
