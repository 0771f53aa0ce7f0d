package playlist

import (
	"context"
	"fmt"
	"sync"

	"jdlmedia/model"
	"jdlmedia/repository"

	"golang.org/x/sync/errgroup"
)

// MediaFetcher 按类型批量获取媒体记录，找不到的ID直接缺席
type MediaFetcher interface {
	Fetch(ctx context.Context, ownerID string, ids []string) ([]model.Media, error)
}

// MediaFetcherFunc 函数适配器
type MediaFetcherFunc func(ctx context.Context, ownerID string, ids []string) ([]model.Media, error)

func (f MediaFetcherFunc) Fetch(ctx context.Context, ownerID string, ids []string) ([]model.Media, error) {
	return f(ctx, ownerID, ids)
}

// AudioFetcher 从音频仓库批量读取
func AudioFetcher(audios repository.AudioRepository) MediaFetcher {
	return MediaFetcherFunc(func(ctx context.Context, ownerID string, ids []string) ([]model.Media, error) {
		found, err := audios.GetOwnedByIDs(ctx, ownerID, ids)
		if err != nil {
			return nil, err
		}
		out := make([]model.Media, 0, len(found))
		for i := range found {
			out = append(out, &found[i])
		}
		return out, nil
	})
}

// noMedia 视频暂无存储，引用全部视为悬空
var noMedia = MediaFetcherFunc(func(context.Context, string, []string) ([]model.Media, error) {
	return nil, nil
})

// Hydrator 把内容引用还原为媒体记录
type Hydrator struct {
	fetchers map[model.MediaType]MediaFetcher
}

// NewHydrator AUDIO 走音频仓库，VIDEO 为空实现
func NewHydrator(audios repository.AudioRepository) *Hydrator {
	return &Hydrator{
		fetchers: map[model.MediaType]MediaFetcher{
			model.MediaTypeAudio: AudioFetcher(audios),
			model.MediaTypeVideo: noMedia,
		},
	}
}

// Register 替换某个类型的获取方式
func (h *Hydrator) Register(t model.MediaType, f MediaFetcher) {
	h.fetchers[t] = f
}

// Hydrate 结果与 content 等长且顺序一致，无法解析的位置为 nil
func (h *Hydrator) Hydrate(ctx context.Context, ownerID string, content model.Content) ([]model.Media, error) {
	result := make([]model.Media, len(content))
	if len(content) == 0 {
		return result, nil
	}

	// 按类型分组，每组只查一次
	byType := make(map[model.MediaType][]string)
	seen := make(map[model.ContentItem]struct{}, len(content))
	for _, item := range content {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		byType[item.Type] = append(byType[item.Type], item.ID)
	}

	var (
		mu    sync.Mutex
		found = make(map[model.ContentItem]model.Media, len(seen))
	)
	g, gctx := errgroup.WithContext(ctx)
	for t, ids := range byType {
		fetcher, ok := h.fetchers[t]
		if !ok {
			continue
		}
		t, ids := t, ids
		g.Go(func() error {
			media, err := fetcher.Fetch(gctx, ownerID, ids)
			if err != nil {
				return fmt.Errorf("fetch %s media: %w", t, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, m := range media {
				found[model.ContentItem{Type: t, ID: m.MediaID()}] = m
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, item := range content {
		if m, ok := found[item]; ok {
			result[i] = m
		}
	}
	return result, nil
}
