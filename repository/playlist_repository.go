package repository

import (
	"context"
	"errors"

	"jdlmedia/model"

	"gorm.io/gorm"
)

// PlaylistRepository 歌单数据访问接口
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetOwned(ctx context.Context, ownerID, id string) (*model.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Playlist, error)
	UpdateFields(ctx context.Context, ownerID, id string, fields map[string]interface{}) error
	// CompareAndSwapContent 仅当库中版本仍等于 playlist.Version 时写入内容。
	// 返回 false 表示版本已被其他请求修改，playlist 不变。
	CompareAndSwapContent(ctx context.Context, playlist *model.Playlist, content model.Content) (bool, error)
}

// gormPlaylistRepository GORM 实现
type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository 创建 GORM 歌单仓库
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

// Create 创建歌单
func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	if playlist.Content == nil {
		playlist.Content = model.Content{}
	}
	return translate(r.db.WithContext(ctx).Create(playlist).Error)
}

// GetOwned 获取用户的歌单，不存在返回 nil, nil
func (r *gormPlaylistRepository) GetOwned(ctx context.Context, ownerID, id string) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&playlist).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

// ListByOwner 用户的全部歌单
func (r *gormPlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Playlist, error) {
	playlists := make([]model.Playlist, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&playlists).Error
	return playlists, err
}

// UpdateFields 更新名称/描述等非内容字段
func (r *gormPlaylistRepository) UpdateFields(ctx context.Context, ownerID, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Playlist{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields).Error
}

// CompareAndSwapContent 条件更新内容并递增版本
func (r *gormPlaylistRepository) CompareAndSwapContent(ctx context.Context, playlist *model.Playlist, content model.Content) (bool, error) {
	if content == nil {
		content = model.Content{}
	}
	next := playlist.Version + 1
	res := r.db.WithContext(ctx).Model(&model.Playlist{}).
		Where("id = ? AND owner_id = ? AND version = ?", playlist.ID, playlist.OwnerID, playlist.Version).
		Updates(map[string]interface{}{
			"content": content,
			"version": next,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	playlist.Content = content
	playlist.Version = next
	return true, nil
}
