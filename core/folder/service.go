// Package folder 文件夹层级管理：创建、重命名、内容、详情与面包屑。
//
// 每个文件夹在磁盘上对应 {storageRoot}/{ownerId}/{祖先ID...}/{id} 目录，
// 数据库记录与目录分两步写入，目录创建失败时补偿删除记录。
package folder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jdlmedia/core/apperr"
	"jdlmedia/core/ident"
	"jdlmedia/logger"
	"jdlmedia/metrics"
	"jdlmedia/model"
	"jdlmedia/repository"

	"golang.org/x/sync/errgroup"
)

// compensationTimeout 补偿操作使用独立的超时，不受请求取消影响
const compensationTimeout = 5 * time.Second

// DetailsCache 详情缓存，未命中返回 nil, nil。
// DetailsGeneration 在遍历磁盘之前读取，失效会改变它，SetDetails 发现代数已变化时不写入。
type DetailsCache interface {
	GetDetails(ctx context.Context, ownerID, folderID string) (*Details, error)
	DetailsGeneration(ctx context.Context, ownerID, folderID string) (string, error)
	SetDetails(ctx context.Context, ownerID, folderID string, details *Details, generation string) error
	InvalidateDetails(ctx context.Context, ownerID string, folderIDs ...string) error
}

// CreateInput 创建文件夹参数
type CreateInput struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	ParentFolderID *string `json:"parentFolderId"`
}

// RenameInput 重命名参数
type RenameInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// rootRef 根目录占位 {id: null}
type rootRef struct {
	ID *string `json:"id"`
}

// ContentResult 文件夹直接内容
type ContentResult struct {
	Folders []model.Folder `json:"folders"`
	Audios  []model.Audio  `json:"audios"`
	Folder  interface{}    `json:"folder"`
}

// Details 文件夹详情，文件夹字段平铺输出
type Details struct {
	model.Folder
	Size             Size   `json:"size"`
	Type             string `json:"type"`
	LastAccessedDate int64  `json:"lastAccessedDate"`
	LastModifiedDate int64  `json:"lastModifiedDate"`
	NumberOf         Counts `json:"numberOf"`
}

// Service 文件夹服务
type Service struct {
	folders    repository.FolderRepository
	audios     repository.AudioRepository
	resolver   *Resolver
	classifier Classifier
	cache      DetailsCache
	probeLimit int
}

// NewService cache 可以为 nil
func NewService(
	folders repository.FolderRepository,
	audios repository.AudioRepository,
	resolver *Resolver,
	classifier Classifier,
	cache DetailsCache,
	probeLimit int,
) *Service {
	return &Service{
		folders:    folders,
		audios:     audios,
		resolver:   resolver,
		classifier: classifier,
		cache:      cache,
		probeLimit: probeLimit,
	}
}

// Create 创建文件夹：先写记录，再建目录
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*model.Folder, error) {
	if in.Name == "" {
		return nil, apperr.Of(apperr.FieldRequired.WithField("name"))
	}

	parentID := in.ParentFolderID
	if parentID != nil && *parentID == "" {
		parentID = nil
	}

	var parentPath string
	if parentID != nil {
		if !ident.IsValid(*parentID) {
			return nil, apperr.Of(apperr.UnknownParentFolder)
		}
		parent, err := s.folders.GetOwned(ctx, ownerID, *parentID)
		if err != nil {
			return nil, fmt.Errorf("load parent folder %s: %w", *parentID, err)
		}
		if parent == nil {
			return nil, apperr.Of(apperr.UnknownParentFolder)
		}
		parentPath, err = s.resolver.ResolvePath(ownerID, parentID)
		if err != nil {
			return nil, s.resolutionError(ownerID, *parentID, err)
		}
	} else {
		var err error
		parentPath, err = s.resolver.EnsureOwnerRoot(ownerID)
		if err != nil {
			return nil, err
		}
	}

	folder := &model.Folder{
		ID:             ident.New(),
		Name:           in.Name,
		Description:    in.Description,
		OwnerID:        ownerID,
		ParentFolderID: parentID,
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Of(apperr.FolderNameAlreadyExists)
		}
		return nil, fmt.Errorf("insert folder: %w", err)
	}

	dir := filepath.Join(parentPath, folder.ID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		s.compensateCreate(folder, dir)
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	s.invalidateAncestors(ctx, ownerID, parentPath)
	return folder, nil
}

// compensateCreate 尽力删除记录和目录，失败只记录日志
func (s *Service) compensateCreate(folder *model.Folder, dir string) {
	ctx, cancel := context.WithTimeout(context.Background(), compensationTimeout)
	defer cancel()

	if err := s.folders.Delete(ctx, folder.OwnerID, folder.ID); err != nil {
		logger.Warn("compensating folder delete failed",
			logger.String("folder", folder.ID),
			logger.Owner(folder.OwnerID),
			logger.ErrorField(err))
	}
	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		logger.Warn("compensating directory removal failed",
			logger.String("dir", dir),
			logger.ErrorField(err))
	}
}

// Rename 只修改名称
func (s *Service) Rename(ctx context.Context, ownerID string, in RenameInput) (*model.Folder, error) {
	var errs apperr.List
	if in.Name == "" {
		errs.Add(apperr.FieldRequired.WithField("name"))
	}
	if !ident.IsValid(in.ID) {
		errs.Add(apperr.UnknownFolder.WithField("id"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	folder, err := s.folders.GetOwned(ctx, ownerID, in.ID)
	if err != nil {
		return nil, fmt.Errorf("load folder %s: %w", in.ID, err)
	}
	if folder == nil {
		return nil, apperr.Of(apperr.UnknownFolder.WithField("id"))
	}
	if folder.Name == in.Name {
		return folder, nil
	}

	if err := s.folders.UpdateName(ctx, ownerID, in.ID, in.Name); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Of(apperr.FolderNameAlreadyExists)
		}
		return nil, fmt.Errorf("rename folder %s: %w", in.ID, err)
	}
	folder.Name = in.Name
	folder.UpdatedAt = time.Now()

	if s.cache != nil {
		if err := s.cache.InvalidateDetails(ctx, ownerID, folder.ID); err != nil {
			logger.Warn("invalidate folder details failed", logger.String("folder", folder.ID), logger.ErrorField(err))
		}
	}
	return folder, nil
}

// Content 子文件夹与音频，folderID 为 nil 时为根目录
func (s *Service) Content(ctx context.Context, ownerID string, folderID *string) (*ContentResult, error) {
	var current interface{} = rootRef{}
	if folderID != nil {
		if !ident.IsValid(*folderID) {
			return nil, apperr.Of(apperr.UnknownFolder)
		}
		folder, err := s.folders.GetOwned(ctx, ownerID, *folderID)
		if err != nil {
			return nil, fmt.Errorf("load folder %s: %w", *folderID, err)
		}
		if folder == nil {
			return nil, apperr.Of(apperr.UnknownFolder)
		}
		current = folder
	}

	result := &ContentResult{Folder: current}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		folders, err := s.folders.ListChildren(gctx, ownerID, folderID)
		if err != nil {
			return fmt.Errorf("list child folders: %w", err)
		}
		result.Folders = folders
		return nil
	})
	g.Go(func() error {
		audios, err := s.audios.ListInFolder(gctx, ownerID, folderID)
		if err != nil {
			return fmt.Errorf("list folder audios: %w", err)
		}
		result.Audios = audios
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Details 大小、时间戳与子树统计
func (s *Service) Details(ctx context.Context, ownerID, folderID string) (*Details, error) {
	if folderID == "" {
		return nil, apperr.Of(apperr.FieldRequired.WithField("folderId"))
	}
	if !ident.IsValid(folderID) {
		return nil, apperr.Of(apperr.UnknownFolder)
	}

	folder, err := s.folders.GetOwned(ctx, ownerID, folderID)
	if err != nil {
		return nil, fmt.Errorf("load folder %s: %w", folderID, err)
	}
	if folder == nil {
		return nil, apperr.Of(apperr.UnknownFolder)
	}

	var (
		generation string
		cacheable  bool
	)
	if s.cache != nil {
		cached, err := s.cache.GetDetails(ctx, ownerID, folderID)
		if err != nil {
			logger.Warn("read folder details cache failed", logger.String("folder", folderID), logger.ErrorField(err))
		} else if cached != nil {
			// 名称等字段以数据库为准
			cached.Folder = *folder
			return cached, nil
		}
		if generation, err = s.cache.DetailsGeneration(ctx, ownerID, folderID); err != nil {
			logger.Warn("read folder details generation failed", logger.String("folder", folderID), logger.ErrorField(err))
		} else {
			cacheable = true
		}
	}

	dir, err := s.resolver.ResolvePath(ownerID, &folderID)
	if err != nil {
		return nil, s.resolutionError(ownerID, folderID, err)
	}

	start := time.Now()
	details := &Details{Folder: *folder, Type: "folder"}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		size, err := DirSize(gctx, dir)
		if err != nil {
			return err
		}
		details.Size = size
		return nil
	})
	g.Go(func() error {
		times, err := DirTimes(dir)
		if err != nil {
			return err
		}
		details.LastAccessedDate = times.LastAccessed
		details.LastModifiedDate = times.LastModified
		return nil
	})
	g.Go(func() error {
		counts, err := CountEntries(gctx, dir, s.classifier, s.probeLimit)
		if err != nil {
			return err
		}
		details.NumberOf = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("folder details %s: %w", folderID, err)
	}
	metrics.FolderDetailsDuration.Observe(time.Since(start).Seconds())

	if cacheable {
		if err := s.cache.SetDetails(ctx, ownerID, folderID, details, generation); err != nil {
			logger.Warn("write folder details cache failed", logger.String("folder", folderID), logger.ErrorField(err))
		}
	}
	return details, nil
}

// Breadcrumbs 从用户根目录到该文件夹的祖先链（含自身），nil 返回空
func (s *Service) Breadcrumbs(ctx context.Context, ownerID string, folderID *string) ([]model.Folder, error) {
	if folderID == nil || *folderID == "" {
		return []model.Folder{}, nil
	}
	if !ident.IsValid(*folderID) {
		return nil, apperr.Of(apperr.UnknownFolder)
	}

	dir, err := s.resolver.ResolvePath(ownerID, folderID)
	if err != nil {
		folder, getErr := s.folders.GetOwned(ctx, ownerID, *folderID)
		if getErr != nil {
			return nil, fmt.Errorf("load folder %s: %w", *folderID, getErr)
		}
		if folder == nil {
			return nil, apperr.Of(apperr.UnknownFolder)
		}
		return nil, s.resolutionError(ownerID, *folderID, err)
	}

	segments, err := s.resolver.Segments(ownerID, dir)
	if err != nil {
		return nil, err
	}

	found, err := s.folders.GetOwnedByIDs(ctx, ownerID, segments)
	if err != nil {
		return nil, fmt.Errorf("load breadcrumb folders: %w", err)
	}
	byID := make(map[string]model.Folder, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}

	chain := make([]model.Folder, 0, len(segments))
	for _, id := range segments {
		f, ok := byID[id]
		if !ok {
			logger.Warn("directory without folder record",
				logger.Owner(ownerID),
				logger.String("folder", *folderID),
				logger.String("segment", id),
				logger.String("dir", dir))
			return nil, apperr.Of(apperr.FolderInconsistentHierarchy)
		}
		chain = append(chain, f)
	}
	return chain, nil
}

// List 用户的全部文件夹
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Folder, error) {
	folders, err := s.folders.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

// resolutionError 记录存在但磁盘目录缺失，属于层级不一致
func (s *Service) resolutionError(ownerID, folderID string, err error) error {
	if errors.Is(err, ErrPathResolution) {
		logger.Warn("folder record without directory",
			logger.Owner(ownerID),
			logger.String("folder", folderID),
			logger.ErrorField(err))
		return apperr.Of(apperr.FolderInconsistentHierarchy)
	}
	return err
}

// invalidateAncestors 目录内容变化后清理祖先的详情缓存
func (s *Service) invalidateAncestors(ctx context.Context, ownerID, dir string) {
	if s.cache == nil {
		return
	}
	segments, err := s.resolver.Segments(ownerID, dir)
	if err != nil || len(segments) == 0 {
		return
	}
	if err := s.cache.InvalidateDetails(ctx, ownerID, segments...); err != nil {
		logger.Warn("invalidate folder details failed", logger.Owner(ownerID), logger.ErrorField(err))
	}
}
