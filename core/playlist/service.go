package playlist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jdlmedia/core/apperr"
	"jdlmedia/core/ident"
	"jdlmedia/logger"
	"jdlmedia/metrics"
	"jdlmedia/model"
	"jdlmedia/repository"
)

// maxWriteAttempts 条件更新最多尝试次数
const maxWriteAttempts = 3

// Cache 歌单记录缓存，未命中返回 nil, nil。
// PlaylistGeneration 在查库之前读取，InvalidatePlaylist 会改变它；
// SetPlaylist 发现代数已变化时不写入，查库期间发生的修改不会被旧记录覆盖。
type Cache interface {
	GetPlaylist(ctx context.Context, ownerID, id string) (*model.Playlist, error)
	PlaylistGeneration(ctx context.Context, ownerID, id string) (string, error)
	SetPlaylist(ctx context.Context, playlist *model.Playlist, generation string) error
	InvalidatePlaylist(ctx context.Context, ownerID, id string) error
}

// CoverStore 封面对象存储
type CoverStore interface {
	CoverURL(ctx context.Context, key string) (string, error)
}

// CreateInput 创建歌单参数
type CreateInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Cover       string          `json:"cover"`
	Content     json.RawMessage `json:"content"`
}

// UpdateInput 修改名称/描述，nil 表示不修改
type UpdateInput struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ItemsInput 追加或重排
type ItemsInput struct {
	ID    string          `json:"id"`
	Items json.RawMessage `json:"items"`
}

// RemoveInput All 为 true 时清空内容，忽略 Items
type RemoveInput struct {
	ID    string          `json:"id"`
	Items json.RawMessage `json:"items"`
	All   bool            `json:"all"`
}

// Detailed 带填充内容的歌单，content 中无法解析的位置为 null
type Detailed struct {
	model.Playlist
	Content []model.Media `json:"content"`
}

// Service 歌单服务
type Service struct {
	playlists repository.PlaylistRepository
	audios    repository.AudioRepository
	hydrator  *Hydrator
	types     model.MediaTypeSet
	cache     Cache
	covers    CoverStore
}

// NewService cache 和 covers 可以为 nil
func NewService(
	playlists repository.PlaylistRepository,
	audios repository.AudioRepository,
	types model.MediaTypeSet,
	cache Cache,
	covers CoverStore,
) *Service {
	if types == nil {
		types = model.NewMediaTypeSet(nil)
	}
	return &Service{
		playlists: playlists,
		audios:    audios,
		hydrator:  NewHydrator(audios),
		types:     types,
		cache:     cache,
		covers:    covers,
	}
}

// Create 创建歌单，初始内容可选，校验方式与追加相同
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*model.Playlist, error) {
	if in.Name == "" {
		return nil, apperr.Of(apperr.FieldRequired.WithField("name"))
	}

	content := model.Content{}
	if !isAbsent(in.Content) {
		items, structErr := parseItems(in.Content, s.types, withType)
		switch {
		case structErr != nil && structErr.Code == apperr.EmptyItems.Code:
			// 空数组即空歌单
		case structErr != nil:
			return nil, apperr.Of(structErr.WithField("content"))
		default:
			refErr, err := s.checkAudioItems(ctx, ownerID, items)
			if err != nil {
				return nil, err
			}
			if refErr != nil {
				return nil, apperr.Of(refErr.WithField("content"))
			}
			content = items
		}
	}

	playlist := &model.Playlist{
		ID:          ident.New(),
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     ownerID,
		Cover:       in.Cover,
		Content:     content,
	}
	if err := s.playlists.Create(ctx, playlist); err != nil {
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	s.decorate(ctx, playlist)
	return playlist, nil
}

// Update 修改名称/描述
func (s *Service) Update(ctx context.Context, ownerID string, in UpdateInput) (*model.Playlist, error) {
	if err := validateUpdate(in); err != nil {
		return nil, err
	}

	playlist, err := s.playlists.GetOwned(ctx, ownerID, in.ID)
	if err != nil {
		return nil, fmt.Errorf("load playlist %s: %w", in.ID, err)
	}
	if playlist == nil {
		return nil, apperr.Of(apperr.UnknownPlaylist.WithField("id"))
	}

	fields := make(map[string]interface{}, 2)
	if in.Name != nil {
		fields["name"] = *in.Name
		playlist.Name = *in.Name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
		playlist.Description = *in.Description
	}
	if err := s.playlists.UpdateFields(ctx, ownerID, in.ID, fields); err != nil {
		return nil, fmt.Errorf("update playlist %s: %w", in.ID, err)
	}
	playlist.UpdatedAt = time.Now()

	s.invalidate(ctx, ownerID, in.ID)
	s.decorate(ctx, playlist)
	return playlist, nil
}

// Get 歌单及按顺序填充的内容
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Detailed, error) {
	if !ident.IsValid(id) {
		return nil, apperr.Of(apperr.UnknownPlaylist.WithField("id"))
	}

	playlist, err := s.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	content, err := s.hydrator.Hydrate(ctx, ownerID, playlist.Content)
	if err != nil {
		return nil, fmt.Errorf("hydrate playlist %s: %w", id, err)
	}
	s.decorate(ctx, playlist)
	return &Detailed{Playlist: *playlist, Content: content}, nil
}

// List 用户的全部歌单
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Playlist, error) {
	playlists, err := s.playlists.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	for i := range playlists {
		s.decorate(ctx, &playlists[i])
	}
	return playlists, nil
}

// AddItems 追加到末尾，AUDIO 引用必须存在
func (s *Service) AddItems(ctx context.Context, ownerID string, in ItemsInput) (*model.Playlist, error) {
	items, err := s.validateItems(ctx, ownerID, in.ID, in.Items, true)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, in.ID, func(current model.Content) (model.Content, error) {
		return Append(current, items), nil
	})
}

// RemoveContent 按ID删除（不看类型），或 all 清空
func (s *Service) RemoveContent(ctx context.Context, ownerID string, in RemoveInput) (*model.Playlist, error) {
	var errs apperr.List
	if !ident.IsValid(in.ID) {
		errs.Add(apperr.UnknownPlaylist.WithField("id"))
	}

	var ids []string
	if !in.All {
		items, structErr := parseItems(in.Items, s.types, idOnly)
		if structErr != nil {
			errs.Add(*structErr)
		} else {
			ids = IDs(items)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	return s.mutate(ctx, ownerID, in.ID, func(current model.Content) (model.Content, error) {
		if in.All {
			return model.Content{}, nil
		}
		return RemoveIDs(current, ids), nil
	})
}

// ReorderContent 用完整的新顺序替换内容，必须是当前内容的排列
func (s *Service) ReorderContent(ctx context.Context, ownerID string, in ItemsInput) (*model.Playlist, error) {
	items, err := s.validateItems(ctx, ownerID, in.ID, in.Items, false)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, ownerID, in.ID, func(current model.Content) (model.Content, error) {
		if !IsPermutation(current, items) {
			return nil, apperr.Of(apperr.ContentNotIdentical)
		}
		return items.Clone(), nil
	})
}

// mutate 读取 → 修改 → 按版本条件写入，版本冲突时重新读取并重放 apply
func (s *Service) mutate(ctx context.Context, ownerID, id string, apply func(model.Content) (model.Content, error)) (*model.Playlist, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		// 写路径不读缓存，版本必须来自数据库
		playlist, err := s.playlists.GetOwned(ctx, ownerID, id)
		if err != nil {
			return nil, fmt.Errorf("load playlist %s: %w", id, err)
		}
		if playlist == nil {
			return nil, apperr.Of(apperr.UnknownPlaylist.WithField("id"))
		}

		next, err := apply(playlist.Content.Clone())
		if err != nil {
			return nil, err
		}

		swapped, err := s.playlists.CompareAndSwapContent(ctx, playlist, next)
		if err != nil {
			return nil, fmt.Errorf("write playlist %s content: %w", id, err)
		}
		if swapped {
			s.invalidate(ctx, ownerID, id)
			s.decorate(ctx, playlist)
			return playlist, nil
		}

		metrics.PlaylistWriteConflicts.Inc()
		logger.Debug("playlist version changed, re-applying",
			logger.String("playlist", id),
			logger.Int64("version", playlist.Version),
			logger.Int("attempt", attempt))
	}
	return nil, apperr.Of(apperr.ConcurrentModification)
}

// load 先查缓存再查库
func (s *Service) load(ctx context.Context, ownerID, id string) (*model.Playlist, error) {
	var (
		generation string
		cacheable  bool
	)
	if s.cache != nil {
		cached, err := s.cache.GetPlaylist(ctx, ownerID, id)
		if err != nil {
			logger.Warn("read playlist cache failed", logger.String("playlist", id), logger.ErrorField(err))
		} else if cached != nil {
			return cached, nil
		}
		if generation, err = s.cache.PlaylistGeneration(ctx, ownerID, id); err != nil {
			logger.Warn("read playlist cache generation failed", logger.String("playlist", id), logger.ErrorField(err))
		} else {
			cacheable = true
		}
	}

	playlist, err := s.playlists.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("load playlist %s: %w", id, err)
	}
	if playlist == nil {
		return nil, apperr.Of(apperr.UnknownPlaylist.WithField("id"))
	}

	if cacheable {
		if err := s.cache.SetPlaylist(ctx, playlist, generation); err != nil {
			logger.Warn("write playlist cache failed", logger.String("playlist", id), logger.ErrorField(err))
		}
	}
	return playlist, nil
}

func (s *Service) invalidate(ctx context.Context, ownerID, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePlaylist(ctx, ownerID, id); err != nil {
		logger.Warn("invalidate playlist cache failed", logger.String("playlist", id), logger.ErrorField(err))
	}
}

// decorate 为封面生成临时访问地址，失败时不返回地址
func (s *Service) decorate(ctx context.Context, playlist *model.Playlist) {
	if s.covers == nil || playlist.Cover == "" {
		return
	}
	url, err := s.covers.CoverURL(ctx, playlist.Cover)
	if err != nil {
		logger.Warn("presign playlist cover failed",
			logger.String("playlist", playlist.ID),
			logger.String("cover", playlist.Cover),
			logger.ErrorField(err))
		return
	}
	playlist.CoverURL = url
}
