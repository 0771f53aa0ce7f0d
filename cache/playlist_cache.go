package cache

import (
	"context"
	"fmt"

	"jdlmedia/model"
)

// PlaylistKey 歌单记录的键
func PlaylistKey(ownerID, id string) string {
	return fmt.Sprintf("playlist:%s:%s", ownerID, id)
}

// playlistGenKey 歌单记录的代数键
func playlistGenKey(ownerID, id string) string {
	return fmt.Sprintf("playlist:gen:%s:%s", ownerID, id)
}

// GetPlaylist 未命中返回 nil, nil
func (c *RedisCache) GetPlaylist(ctx context.Context, ownerID, id string) (*model.Playlist, error) {
	var playlist model.Playlist
	ok, err := c.getJSON(ctx, "playlist", PlaylistKey(ownerID, id), &playlist)
	if err != nil || !ok {
		return nil, err
	}
	if playlist.Content == nil {
		playlist.Content = model.Content{}
	}
	return &playlist, nil
}

// PlaylistGeneration 查库之前读取，写回时作为 SetPlaylist 的条件
func (c *RedisCache) PlaylistGeneration(ctx context.Context, ownerID, id string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("Redis client not initialized")
	}
	return c.generation(ctx, c.client, playlistGenKey(ownerID, id))
}

// SetPlaylist 代数未变时写入，缓存不含预签名封面地址
func (c *RedisCache) SetPlaylist(ctx context.Context, playlist *model.Playlist, generation string) error {
	cp := *playlist
	cp.CoverURL = ""
	return c.setJSONAt(ctx, "playlist", PlaylistKey(playlist.OwnerID, playlist.ID), &cp,
		generation, playlistGenKey(playlist.OwnerID, playlist.ID))
}

// InvalidatePlaylist 内容或字段变化后调用
func (c *RedisCache) InvalidatePlaylist(ctx context.Context, ownerID, id string) error {
	return c.bump(ctx, []string{playlistGenKey(ownerID, id)}, []string{PlaylistKey(ownerID, id)})
}
