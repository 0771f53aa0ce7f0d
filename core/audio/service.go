// Package audio 音频记录的查询、重命名与收藏。上传与元数据提取不在这里。
package audio

import (
	"context"
	"fmt"
	"time"

	"jdlmedia/core/apperr"
	"jdlmedia/core/ident"
	"jdlmedia/model"
	"jdlmedia/repository"
)

// RenameInput 修改标题
type RenameInput struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// BookmarkInput 设置收藏，IsBookmarked 必须给出
type BookmarkInput struct {
	ID           string `json:"id"`
	IsBookmarked *bool  `json:"isBookmarked"`
}

// Service 音频服务
type Service struct {
	audios repository.AudioRepository
}

// NewService 创建音频服务
func NewService(audios repository.AudioRepository) *Service {
	return &Service{audios: audios}
}

// List 用户的全部音频
func (s *Service) List(ctx context.Context, ownerID string) ([]model.Audio, error) {
	audios, err := s.audios.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list audios: %w", err)
	}
	return audios, nil
}

// Get 按ID获取
func (s *Service) Get(ctx context.Context, ownerID, id string) (*model.Audio, error) {
	if !ident.IsValid(id) {
		return nil, apperr.Of(apperr.UnknownAudio.WithField("id"))
	}
	return s.load(ctx, ownerID, id)
}

// Rename 修改标题，标题不能为空
func (s *Service) Rename(ctx context.Context, ownerID string, in RenameInput) (*model.Audio, error) {
	var errs apperr.List
	if in.Title == "" {
		errs.Add(apperr.FieldRequired.WithField("title"))
	}
	if !ident.IsValid(in.ID) {
		errs.Add(apperr.UnknownAudio.WithField("id"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	audio, err := s.load(ctx, ownerID, in.ID)
	if err != nil {
		return nil, err
	}
	if audio.Title == in.Title {
		return audio, nil
	}
	if err := s.audios.UpdateTitle(ctx, ownerID, in.ID, in.Title); err != nil {
		return nil, fmt.Errorf("rename audio %s: %w", in.ID, err)
	}
	audio.Title = in.Title
	audio.UpdatedAt = time.Now()
	return audio, nil
}

// SetBookmark 设置收藏状态
func (s *Service) SetBookmark(ctx context.Context, ownerID string, in BookmarkInput) (*model.Audio, error) {
	var errs apperr.List
	if in.IsBookmarked == nil {
		errs.Add(apperr.FieldRequired.WithField("isBookmarked"))
	}
	if !ident.IsValid(in.ID) {
		errs.Add(apperr.UnknownAudio.WithField("id"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	audio, err := s.load(ctx, ownerID, in.ID)
	if err != nil {
		return nil, err
	}
	if audio.IsBookmark == *in.IsBookmarked {
		return audio, nil
	}
	if err := s.audios.SetBookmark(ctx, ownerID, in.ID, *in.IsBookmarked); err != nil {
		return nil, fmt.Errorf("bookmark audio %s: %w", in.ID, err)
	}
	audio.IsBookmark = *in.IsBookmarked
	audio.UpdatedAt = time.Now()
	return audio, nil
}

func (s *Service) load(ctx context.Context, ownerID, id string) (*model.Audio, error) {
	audio, err := s.audios.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("load audio %s: %w", id, err)
	}
	if audio == nil {
		return nil, apperr.Of(apperr.UnknownAudio.WithField("id"))
	}
	return audio, nil
}
