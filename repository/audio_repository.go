package repository

import (
	"context"
	"errors"

	"jdlmedia/model"

	"gorm.io/gorm"
)

// AudioRepository 音频数据访问接口
type AudioRepository interface {
	Create(ctx context.Context, audio *model.Audio) error
	ListInFolder(ctx context.Context, ownerID string, folderID *string) ([]model.Audio, error)
	GetOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]model.Audio, error)
	CountOwnedDistinct(ctx context.Context, ownerID string, ids []string) (int64, error)
	GetOwned(ctx context.Context, ownerID, id string) (*model.Audio, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Audio, error)
	UpdateTitle(ctx context.Context, ownerID, id, title string) error
	SetBookmark(ctx context.Context, ownerID, id string, bookmarked bool) error
}

// gormAudioRepository GORM 实现
type gormAudioRepository struct {
	db *gorm.DB
}

// NewGormAudioRepository 创建 GORM 音频仓库
func NewGormAudioRepository(db *gorm.DB) AudioRepository {
	return &gormAudioRepository{db: db}
}

// Create 创建音频记录
func (r *gormAudioRepository) Create(ctx context.Context, audio *model.Audio) error {
	return translate(r.db.WithContext(ctx).Create(audio).Error)
}

// ListInFolder 文件夹中的音频，folderID 为 nil 时返回根目录音频
func (r *gormAudioRepository) ListInFolder(ctx context.Context, ownerID string, folderID *string) ([]model.Audio, error) {
	audios := make([]model.Audio, 0)
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if folderID == nil {
		query = query.Where("folder_id IS NULL")
	} else {
		query = query.Where("folder_id = ?", *folderID)
	}
	err := query.Order("created_at ASC").Find(&audios).Error
	return audios, err
}

// GetOwnedByIDs 批量获取，结果顺序不保证，重复ID只返回一条
func (r *gormAudioRepository) GetOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]model.Audio, error) {
	audios := make([]model.Audio, 0, len(ids))
	if len(ids) == 0 {
		return audios, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND owner_id = ?", ids, ownerID).
		Find(&audios).Error
	return audios, err
}

// CountOwnedDistinct 统计 ids 中属于该用户的音频数量（按不同ID计）
func (r *gormAudioRepository) CountOwnedDistinct(ctx context.Context, ownerID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Audio{}).
		Where("id IN ? AND owner_id = ?", ids, ownerID).
		Count(&count).Error
	return count, err
}

// GetOwned 获取用户的音频，不存在返回 nil, nil
func (r *gormAudioRepository) GetOwned(ctx context.Context, ownerID, id string) (*model.Audio, error) {
	var audio model.Audio
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&audio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &audio, nil
}

// ListByOwner 用户的全部音频
func (r *gormAudioRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Audio, error) {
	audios := make([]model.Audio, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&audios).Error
	return audios, err
}

// UpdateTitle 修改标题
func (r *gormAudioRepository) UpdateTitle(ctx context.Context, ownerID, id, title string) error {
	return r.db.WithContext(ctx).Model(&model.Audio{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("title", title).Error
}

// SetBookmark 设置收藏状态，false 也会写入
func (r *gormAudioRepository) SetBookmark(ctx context.Context, ownerID, id string, bookmarked bool) error {
	return r.db.WithContext(ctx).Model(&model.Audio{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("is_bookmark", bookmarked).Error
}
