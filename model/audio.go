package model

import "time"

// Audio 音频记录，元数据对文件夹/歌单逻辑不透明
type Audio struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	OwnerID       string    `json:"ownerId" gorm:"size:36;not null;index"`
	FolderID      *string   `json:"folderId" gorm:"size:36;index"` // nil 表示位于根目录
	Artist        string    `json:"artist" gorm:"size:255"`
	Album         string    `json:"album" gorm:"size:255"`
	Title         string    `json:"title" gorm:"size:255"`
	OriginalTitle string    `json:"originalTitle" gorm:"size:255"`
	Cover         string    `json:"cover" gorm:"size:512"`
	Duration      float64   `json:"duration"`
	Bitrate       int64     `json:"bitrate"`
	Size          int64     `json:"size"`
	Year          int       `json:"year"`
	Source        string    `json:"source" gorm:"size:32"`
	IsBookmark    bool      `json:"isBookmark" gorm:"default:false"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Audio) TableName() string {
	return "audios"
}

func (a *Audio) MediaID() string {
	return a.ID
}

func (a *Audio) MediaType() MediaType {
	return MediaTypeAudio
}
