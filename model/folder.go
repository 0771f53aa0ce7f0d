package model

import (
	"time"

	"gorm.io/gorm"
)

// Folder 用户文件夹，磁盘目录名即文件夹ID
type Folder struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	Name           string    `json:"name" gorm:"size:255;not null;uniqueIndex:uniq_folders_sibling_name,priority:3"`
	Description    string    `json:"description" gorm:"size:1024"`
	OwnerID        string    `json:"ownerId" gorm:"size:36;not null;index;uniqueIndex:uniq_folders_sibling_name,priority:1"`
	ParentFolderID *string   `json:"parentFolderId" gorm:"size:36;index"`
	ParentKey      string    `json:"-" gorm:"size:36;not null;default:'';uniqueIndex:uniq_folders_sibling_name,priority:2"` // 根目录为空串，保证根级同名冲突也能被唯一索引捕获
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Folder) TableName() string {
	return "folders"
}

// BeforeSave 同步 ParentKey
func (f *Folder) BeforeSave(tx *gorm.DB) error {
	if f.ParentFolderID != nil {
		f.ParentKey = *f.ParentFolderID
	} else {
		f.ParentKey = ""
	}
	return nil
}

// IsRoot 是否位于用户根目录
func (f *Folder) IsRoot() bool {
	return f.ParentFolderID == nil
}
