package repository

import (
	"context"
	"errors"

	"jdlmedia/model"

	"gorm.io/gorm"
)

// FolderRepository 文件夹数据访问接口，所有查询都限定 owner
type FolderRepository interface {
	Create(ctx context.Context, folder *model.Folder) error
	Delete(ctx context.Context, ownerID, id string) error
	GetOwned(ctx context.Context, ownerID, id string) (*model.Folder, error)
	GetOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]model.Folder, error)
	ListChildren(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Folder, error)
	UpdateName(ctx context.Context, ownerID, id, name string) error
}

// gormFolderRepository GORM 实现
type gormFolderRepository struct {
	db *gorm.DB
}

// NewGormFolderRepository 创建 GORM 文件夹仓库
func NewGormFolderRepository(db *gorm.DB) FolderRepository {
	return &gormFolderRepository{db: db}
}

// Create 创建文件夹，同级重名返回 ErrDuplicate
func (r *gormFolderRepository) Create(ctx context.Context, folder *model.Folder) error {
	return translate(r.db.WithContext(ctx).Create(folder).Error)
}

// Delete 删除文件夹记录（仅用于创建失败时的补偿）
func (r *gormFolderRepository) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Folder{}).Error
}

// GetOwned 获取用户的文件夹，不存在返回 nil, nil
func (r *gormFolderRepository) GetOwned(ctx context.Context, ownerID, id string) (*model.Folder, error) {
	var folder model.Folder
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &folder, nil
}

// GetOwnedByIDs 批量获取，结果顺序不保证
func (r *gormFolderRepository) GetOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]model.Folder, error) {
	folders := make([]model.Folder, 0, len(ids))
	if len(ids) == 0 {
		return folders, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND owner_id = ?", ids, ownerID).
		Find(&folders).Error
	return folders, err
}

// ListChildren 直接子文件夹，parentID 为 nil 时返回根级文件夹
func (r *gormFolderRepository) ListChildren(ctx context.Context, ownerID string, parentID *string) ([]model.Folder, error) {
	folders := make([]model.Folder, 0)
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if parentID == nil {
		query = query.Where("parent_folder_id IS NULL")
	} else {
		query = query.Where("parent_folder_id = ?", *parentID)
	}
	err := query.Order("name ASC").Find(&folders).Error
	return folders, err
}

// ListByOwner 用户的全部文件夹
func (r *gormFolderRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Folder, error) {
	folders := make([]model.Folder, 0)
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&folders).Error
	return folders, err
}

// UpdateName 重命名，同级重名返回 ErrDuplicate
func (r *gormFolderRepository) UpdateName(ctx context.Context, ownerID, id, name string) error {
	err := r.db.WithContext(ctx).Model(&model.Folder{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("name", name).Error
	return translate(err)
}
