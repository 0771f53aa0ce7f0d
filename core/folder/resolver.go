package folder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"jdlmedia/core/ident"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrPathResolution 找不到文件夹对应的磁盘目录
var ErrPathResolution = errors.New("folder path resolution failed")

// Resolver 把 (owner, folderID) 映射到磁盘路径。
//
// 目录名就是文件夹ID，祖先链决定嵌套关系，因此需要在用户目录下查找，
// 找到的路径放进 LRU 缓存，使用前重新校验。
type Resolver struct {
	root  string
	cache *lru.Cache[string, string]
}

// NewResolver root 为所有用户目录的父目录
func NewResolver(root string, cacheSize int) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create path cache: %w", err)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %s: %w", root, err)
	}
	return &Resolver{root: abs, cache: cache}, nil
}

// Root 存储根目录
func (r *Resolver) Root() string {
	return r.root
}

// OwnerRoot 用户根目录 {root}/{ownerID}
func (r *Resolver) OwnerRoot(ownerID string) string {
	return filepath.Join(r.root, ownerID)
}

// EnsureOwnerRoot 创建用户根目录（已存在时不报错）
func (r *Resolver) EnsureOwnerRoot(ownerID string) (string, error) {
	if !ident.IsValid(ownerID) {
		return "", fmt.Errorf("%w: invalid owner id %q", ErrPathResolution, ownerID)
	}
	dir := r.OwnerRoot(ownerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create owner root %s: %w", dir, err)
	}
	return dir, nil
}

func cacheKey(ownerID, folderID string) string {
	return ownerID + "/" + folderID
}

// ResolvePath folderID 为 nil 时返回用户根目录，否则返回名为 folderID 的目录。
// 找不到时返回 ErrPathResolution，绝不回退到根目录。
func (r *Resolver) ResolvePath(ownerID string, folderID *string) (string, error) {
	if !ident.IsValid(ownerID) {
		return "", fmt.Errorf("%w: invalid owner id %q", ErrPathResolution, ownerID)
	}
	ownerRoot := r.OwnerRoot(ownerID)
	if folderID == nil {
		return ownerRoot, nil
	}

	id := *folderID
	if !ident.IsValid(id) {
		return "", fmt.Errorf("%w: invalid folder id %q", ErrPathResolution, id)
	}

	key := cacheKey(ownerID, id)
	if cached, ok := r.cache.Get(key); ok {
		if r.stillValid(ownerRoot, id, cached) {
			return cached, nil
		}
		r.cache.Remove(key)
	}

	found, err := r.walk(ownerRoot, id)
	if err != nil {
		return "", err
	}
	r.cache.Add(key, found)
	return found, nil
}

// Forget 移除缓存项，目录变化时调用
func (r *Resolver) Forget(ownerID, folderID string) {
	r.cache.Remove(cacheKey(ownerID, folderID))
}

// Purge 清空缓存
func (r *Resolver) Purge() {
	r.cache.Purge()
}

func (r *Resolver) stillValid(ownerRoot, folderID, path string) bool {
	if filepath.Base(path) != folderID || !strings.HasPrefix(path, ownerRoot+string(filepath.Separator)) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (r *Resolver) walk(ownerRoot, folderID string) (string, error) {
	var found string
	err := filepath.WalkDir(ownerRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == ownerRoot {
				return err
			}
			// 子目录不可读时跳过
			return nil
		}
		if path != ownerRoot && d.IsDir() && d.Name() == folderID {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: walk %s: %v", ErrPathResolution, ownerRoot, err)
	}
	if found == "" {
		return "", fmt.Errorf("%w: folder %s not found on disk", ErrPathResolution, folderID)
	}
	return found, nil
}

// Segments 把用户目录下的路径拆成祖先ID序列（含自身）
func (r *Resolver) Segments(ownerID, path string) ([]string, error) {
	rel, err := filepath.Rel(r.OwnerRoot(ownerID), path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathResolution, err)
	}
	if rel == "." {
		return []string{}, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s is outside owner root", ErrPathResolution, path)
	}
	return strings.Split(rel, string(filepath.Separator)), nil
}
