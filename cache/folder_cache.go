package cache

import (
	"context"
	"fmt"

	"jdlmedia/core/folder"
)

// FolderDetailsKey 文件夹详情的键
func FolderDetailsKey(ownerID, folderID string) string {
	return fmt.Sprintf("folder:details:%s:%s", ownerID, folderID)
}

// 详情的代数由用户级和文件夹级两部分组成，整个用户目录失效时只需递增用户级代数
func ownerDetailsGenKey(ownerID string) string {
	return fmt.Sprintf("folder:gen:%s", ownerID)
}

func folderDetailsGenKey(ownerID, folderID string) string {
	return fmt.Sprintf("folder:gen:%s:%s", ownerID, folderID)
}

// GetDetails 未命中返回 nil, nil
func (c *RedisCache) GetDetails(ctx context.Context, ownerID, folderID string) (*folder.Details, error) {
	var details folder.Details
	ok, err := c.getJSON(ctx, "folder_details", FolderDetailsKey(ownerID, folderID), &details)
	if err != nil || !ok {
		return nil, err
	}
	return &details, nil
}

// DetailsGeneration 遍历磁盘之前读取
func (c *RedisCache) DetailsGeneration(ctx context.Context, ownerID, folderID string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("Redis client not initialized")
	}
	return c.generation(ctx, c.client, ownerDetailsGenKey(ownerID), folderDetailsGenKey(ownerID, folderID))
}

// SetDetails 代数未变时写入
func (c *RedisCache) SetDetails(ctx context.Context, ownerID, folderID string, details *folder.Details, generation string) error {
	return c.setJSONAt(ctx, "folder_details", FolderDetailsKey(ownerID, folderID), details,
		generation, ownerDetailsGenKey(ownerID), folderDetailsGenKey(ownerID, folderID))
}

// InvalidateDetails 删除若干文件夹的详情
func (c *RedisCache) InvalidateDetails(ctx context.Context, ownerID string, folderIDs ...string) error {
	if len(folderIDs) == 0 {
		return nil
	}
	genKeys := make([]string, 0, len(folderIDs))
	keys := make([]string, 0, len(folderIDs))
	for _, id := range folderIDs {
		genKeys = append(genKeys, folderDetailsGenKey(ownerID, id))
		keys = append(keys, FolderDetailsKey(ownerID, id))
	}
	return c.bump(ctx, genKeys, keys)
}

// InvalidateOwnerDetails 删除用户的全部文件夹详情
func (c *RedisCache) InvalidateOwnerDetails(ctx context.Context, ownerID string) error {
	if err := c.bump(ctx, []string{ownerDetailsGenKey(ownerID)}, nil); err != nil {
		return err
	}
	return c.delPattern(ctx, FolderDetailsKey(ownerID, "*"))
}
