// Package playlist 歌单内容的有序维护：追加、按ID删除、重排校验与内容填充。
//
// 内容是 {type, id} 引用的有序序列，允许重复。每次写内容都基于读取时的版本做条件更新，
// 版本冲突时重新读取并重放同一修改。
package playlist

import "jdlmedia/model"

// Append 追加到末尾，保持原有顺序，不去重
func Append(content model.Content, items model.Content) model.Content {
	out := make(model.Content, 0, len(content)+len(items))
	out = append(out, content...)
	out = append(out, items...)
	return out
}

// RemoveIDs 删除所有 id 命中的条目，不比较类型，剩余条目相对顺序不变
func RemoveIDs(content model.Content, ids []string) model.Content {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make(model.Content, 0, len(content))
	for _, item := range content {
		if _, ok := drop[item.ID]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}

// IsPermutation a 与 b 是否是同一组 {id, type} 的不同排列（多重集合相等）
func IsPermutation(a, b model.Content) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[model.ContentItem]int, len(a))
	for _, item := range a {
		seen[item]++
	}
	for _, item := range b {
		n := seen[item]
		if n == 0 {
			return false
		}
		seen[item] = n - 1
	}
	return true
}

// IDs 内容中的全部 id（保持顺序，含重复）
func IDs(content model.Content) []string {
	ids := make([]string, len(content))
	for i, item := range content {
		ids[i] = item.ID
	}
	return ids
}
