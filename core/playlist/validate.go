package playlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"jdlmedia/core/apperr"
	"jdlmedia/core/ident"
	"jdlmedia/model"
)

// itemMode 条目校验方式
type itemMode int

const (
	// withType 需要 {id, type}，type 必须是已配置的媒体类型
	withType itemMode = iota
	// idOnly 只需要 id，用于按ID删除
	idOnly
)

// isAbsent 字段缺失或为 null
func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseItems 将原始 items 解析为内容序列，结构问题以 apperr.Error 返回
func parseItems(raw json.RawMessage, types model.MediaTypeSet, mode itemMode) (model.Content, *apperr.Error) {
	if isAbsent(raw) {
		e := apperr.FieldRequired.WithField("items")
		return nil, &e
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		e := apperr.InvalidItemsStructure
		return nil, &e
	}
	if len(elements) == 0 {
		e := apperr.EmptyItems
		return nil, &e
	}

	items := make(model.Content, 0, len(elements))
	for _, element := range elements {
		item, ok := parseItem(element, types, mode)
		if !ok {
			e := apperr.InvalidItemsStructure
			return nil, &e
		}
		items = append(items, item)
	}
	return items, nil
}

func parseItem(raw json.RawMessage, types model.MediaTypeSet, mode itemMode) (model.ContentItem, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return model.ContentItem{}, false
	}

	var item model.ContentItem
	idRaw, ok := fields["id"]
	if !ok || json.Unmarshal(idRaw, &item.ID) != nil || isAbsent(idRaw) || item.ID == "" {
		return model.ContentItem{}, false
	}

	typeRaw, hasType := fields["type"]
	if mode == idOnly {
		// 删除时类型可有可无，给了也不参与匹配
		if hasType {
			var t string
			if json.Unmarshal(typeRaw, &t) == nil {
				item.Type = model.MediaType(t)
			}
		}
		return item, true
	}

	var t string
	if !hasType || json.Unmarshal(typeRaw, &t) != nil || isAbsent(typeRaw) {
		return model.ContentItem{}, false
	}
	item.Type = model.MediaType(t)
	if !types.Contains(item.Type) {
		return model.ContentItem{}, false
	}
	return item, true
}

// checkAudioItems 所有 AUDIO 引用必须是该用户已有的音频。VIDEO 不做存在性校验。
func (s *Service) checkAudioItems(ctx context.Context, ownerID string, items model.Content) (*apperr.Error, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != model.MediaTypeAudio {
			continue
		}
		if !ident.IsValid(item.ID) {
			e := apperr.InvalidItems
			return &e, nil
		}
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		ids = append(ids, item.ID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	count, err := s.audios.CountOwnedDistinct(ctx, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("count referenced audios: %w", err)
	}
	if count != int64(len(ids)) {
		e := apperr.InvalidItems
		return &e, nil
	}
	return nil, nil
}

// validateItems id + items 的通用校验，结构正确时再检查引用是否存在
func (s *Service) validateItems(ctx context.Context, ownerID, id string, raw json.RawMessage, checkRefs bool) (model.Content, error) {
	var errs apperr.List
	if !ident.IsValid(id) {
		errs.Add(apperr.UnknownPlaylist.WithField("id"))
	}
	items, structErr := parseItems(raw, s.types, withType)
	if structErr != nil {
		errs.Add(*structErr)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if checkRefs {
		refErr, err := s.checkAudioItems(ctx, ownerID, items)
		if err != nil {
			return nil, err
		}
		if refErr != nil {
			return nil, apperr.Of(*refErr)
		}
	}
	return items, nil
}

// validateUpdate 给出的字段必须是非空字符串
func validateUpdate(in UpdateInput) error {
	var errs apperr.List
	if !ident.IsValid(in.ID) {
		errs.Add(apperr.UnknownPlaylist.WithField("id"))
	}
	if in.Name != nil && *in.Name == "" {
		errs.Add(apperr.FieldInvalid.WithField("name"))
	}
	if in.Description != nil && *in.Description == "" {
		errs.Add(apperr.FieldInvalid.WithField("description"))
	}
	return errs.Err()
}
