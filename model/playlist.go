package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ContentItem 歌单内容引用 {type, id}，只是弱引用
type ContentItem struct {
	Type MediaType `json:"type"`
	ID   string    `json:"id"`
}

// Content 有序的内容引用序列，允许重复
type Content []ContentItem

// Scan 实现 sql.Scanner 接口
func (c *Content) Scan(value interface{}) error {
	if value == nil {
		*c = Content{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported content column type %T", value)
	}
	if len(bytes) == 0 || string(bytes) == "null" {
		*c = Content{}
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// Value 实现 driver.Valuer 接口。
// 以字符串写入，MySQL 的 JSON 列不接受 binary 字符集的参数。
func (c Content) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Clone 返回独立副本
func (c Content) Clone() Content {
	out := make(Content, len(c))
	copy(out, c)
	return out
}

// Playlist 歌单
type Playlist struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"size:1024"`
	OwnerID     string    `json:"ownerId" gorm:"size:36;not null;index"`
	Cover       string    `json:"cover" gorm:"size:512"`             // 对象存储中的封面 key
	CoverURL    string    `json:"coverUrl,omitempty" gorm:"-"`       // 预签名地址，不落库
	Content     Content   `json:"content" gorm:"type:json"`          // 有序内容(JSON)
	Version     int64     `json:"version" gorm:"not null;default:0"` // 每次写内容递增，用于条件更新
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName 指定表名
func (Playlist) TableName() string {
	return "playlists"
}
