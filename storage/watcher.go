package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"jdlmedia/core/folder"
	"jdlmedia/core/ident"
	"jdlmedia/logger"

	"github.com/fsnotify/fsnotify"
)

// DetailsInvalidator 文件夹详情缓存的失效接口
type DetailsInvalidator interface {
	InvalidateDetails(ctx context.Context, ownerID string, folderIDs ...string) error
	InvalidateOwnerDetails(ctx context.Context, ownerID string) error
}

// Watcher 监听存储根目录，磁盘变化时清理受影响文件夹的详情缓存和路径缓存
type Watcher struct {
	root     string
	fsw      *fsnotify.Watcher
	resolver *folder.Resolver
	cache    DetailsInvalidator
}

// NewWatcher 递归监听 resolver 的根目录
func NewWatcher(resolver *folder.Resolver, cache DetailsInvalidator) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		root:     resolver.Root(),
		fsw:      fsw,
		resolver: resolver,
		cache:    cache,
	}
	if err := w.addTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree fsnotify 不递归，每个目录单独添加
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// 遍历过程中被删除的目录忽略
			if errors.Is(err, fs.ErrNotExist) && path != dir {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run 处理事件直到 ctx 结束
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("storage watcher started", logger.String("root", w.root))
	for {
		select {
		case <-ctx.Done():
			return w.fsw.Close()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("storage watcher error", logger.ErrorField(err))
			// 丢失了事件，无法判断哪些路径失效
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.resolver.Purge()
			}
		}
	}
}

// Close 停止监听
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				logger.Warn("watch new directory failed", logger.String("dir", event.Name), logger.ErrorField(err))
			}
		}
	}

	ownerID, folderIDs, ok := Affected(w.root, event.Name)
	if !ok {
		return
	}

	// 删除或移走的目录，缓存的路径已失效
	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		n := len(folderIDs)
		if n > 0 {
			w.resolver.Forget(ownerID, folderIDs[n-1])
		} else if event.Name == w.resolver.OwnerRoot(ownerID) {
			w.resolver.Purge()
			if w.cache != nil {
				if err := w.cache.InvalidateOwnerDetails(ctx, ownerID); err != nil {
					logger.Warn("invalidate owner folder details failed", logger.Owner(ownerID), logger.ErrorField(err))
				}
			}
			return
		}
	}

	if len(folderIDs) == 0 || w.cache == nil {
		return
	}
	if err := w.cache.InvalidateDetails(ctx, ownerID, folderIDs...); err != nil {
		logger.Warn("invalidate folder details failed",
			logger.Owner(ownerID),
			logger.String("path", event.Name),
			logger.ErrorField(err))
		return
	}
	logger.Debug("folder details invalidated",
		logger.Owner(ownerID),
		logger.String("path", event.Name),
		logger.Int("folders", len(folderIDs)))
}

// Affected 解析 {root}/{owner}/{id...}/[file]，返回路径上所有文件夹ID（由外到内）
func Affected(root, path string) (string, []string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", nil, false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	ownerID := parts[0]
	if !ident.IsValid(ownerID) {
		return "", nil, false
	}

	folderIDs := make([]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		if !ident.IsValid(part) {
			break
		}
		folderIDs = append(folderIDs, part)
	}
	return ownerID, folderIDs, true
}
