package model

import "time"

// User represents a user in the system. Owner of folders, audios and playlists.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Login        string    `json:"login" gorm:"size:64;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Not exposed in API responses
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// AllModels 需要迁移的全部模型
func AllModels() []interface{} {
	return []interface{}{&User{}, &Folder{}, &Audio{}, &Playlist{}}
}
