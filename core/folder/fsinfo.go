package folder

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"jdlmedia/core/media"
	"jdlmedia/logger"

	"golang.org/x/sync/errgroup"
)

const (
	kb = 1024
	mb = 1024 * kb
	gb = 1024 * mb
)

// Size 目录大小
type Size struct {
	OriginalSize  int64  `json:"originalSize"`
	FormattedSize string `json:"formattedSize"`
}

// Counts 子树统计，Files = Audios + Videos
type Counts struct {
	Folders int `json:"folders"`
	Audios  int `json:"audios"`
	Videos  int `json:"videos"`
	Files   int `json:"files"`
}

// Classifier 判定单个文件的媒体类型
type Classifier interface {
	Classify(ctx context.Context, file string) (media.Kind, error)
}

// round2 保留两位小数
func round2(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// FormatSize 阈值为严格大于 1024^n
func FormatSize(size int64) string {
	switch {
	case size > gb:
		return round2(float64(size)/gb) + " GB"
	case size > mb:
		return round2(float64(size)/mb) + " MB"
	case size > kb:
		return round2(float64(size)/kb) + " KB"
	default:
		return strconv.FormatInt(size, 10) + " Bytes"
	}
}

// DirSize 递归累加普通文件大小
func DirSize(ctx context.Context, dir string) (Size, error) {
	var total int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return Size{}, fmt.Errorf("compute size of %s: %w", dir, err)
	}
	return Size{OriginalSize: total, FormattedSize: FormatSize(total)}, nil
}

// Times 目录的访问/修改时间（毫秒时间戳）
type Times struct {
	LastAccessed int64
	LastModified int64
}

// DirTimes lstat 目录本身
func DirTimes(dir string) (Times, error) {
	info, err := os.Lstat(dir)
	if err != nil {
		return Times{}, fmt.Errorf("lstat %s: %w", dir, err)
	}
	return Times{
		LastAccessed: accessTime(info).UnixMilli(),
		LastModified: info.ModTime().UnixMilli(),
	}, nil
}

// CountEntries 统计子目录数量，并对每个文件做内容识别。
// 探测失败的文件被跳过，探测并发度由 limit 限制。
func CountEntries(ctx context.Context, dir string, classifier Classifier, limit int) (Counts, error) {
	var (
		counts  Counts
		folders int
		mu      sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		if d.IsDir() {
			folders++
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if gctx.Err() != nil {
			return gctx.Err()
		}

		g.Go(func() error {
			kind, err := classifier.Classify(gctx, path)
			if err != nil {
				logger.Debug("skip unreadable media file",
					logger.String("file", path),
					logger.ErrorField(err))
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			switch kind {
			case media.KindAudio:
				counts.Audios++
			case media.KindVideo:
				counts.Videos++
			}
			return nil
		})
		return nil
	})

	// 等待已提交的探测结束后再返回
	waitErr := g.Wait()
	if err != nil {
		return Counts{}, fmt.Errorf("walk %s: %w", dir, err)
	}
	if waitErr != nil {
		return Counts{}, waitErr
	}

	counts.Folders = folders
	counts.Files = counts.Audios + counts.Videos
	return counts, nil
}

// timeFromSpec 供各平台 accessTime 使用
func timeFromSpec(sec, nsec int64) time.Time {
	return time.Unix(sec, nsec)
}
