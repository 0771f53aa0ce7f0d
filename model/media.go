package model

// MediaType 媒体类型（封闭枚举，可由 MEDIA_TYPES 配置）
type MediaType string

const (
	MediaTypeAudio MediaType = "AUDIO"
	MediaTypeVideo MediaType = "VIDEO"
)

// Media 可以被歌单内容引用的媒体记录
type Media interface {
	MediaID() string
	MediaType() MediaType
}

// MediaTypeSet 已配置的媒体类型集合
type MediaTypeSet map[MediaType]struct{}

// NewMediaTypeSet 由配置项构造集合，空配置时回退到 AUDIO/VIDEO
func NewMediaTypeSet(types []string) MediaTypeSet {
	set := make(MediaTypeSet, len(types))
	for _, t := range types {
		set[MediaType(t)] = struct{}{}
	}
	if len(set) == 0 {
		set[MediaTypeAudio] = struct{}{}
		set[MediaTypeVideo] = struct{}{}
	}
	return set
}

// Contains 是否是已配置的类型
func (s MediaTypeSet) Contains(t MediaType) bool {
	_, ok := s[t]
	return ok
}
