// Package apperr 客户端可见的错误目录。
//
// 校验错误和领域错误以 List 的形式返回给调用方，基础设施错误统一映射为 Internal。
package apperr

import (
	"errors"
	"strings"
)

// Error 单条错误 {code, message, field?}
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WithField 返回带字段名的副本
func (e Error) WithField(field string) Error {
	e.Field = field
	return e
}

func (e Error) Error() string {
	if e.Field != "" {
		return e.Code + " (" + e.Field + ")"
	}
	return e.Code
}

// 错误目录
var (
	FieldRequired = Error{Code: "fields/required", Message: "This field is required"}
	FieldInvalid  = Error{Code: "fields/invalid", Message: "This field is invalid"}

	NoDataSent   = Error{Code: "server/no-data-sent", Message: "No data found!"}
	Internal     = Error{Code: "server/internal-server-error", Message: "Internal server error"}
	UnknownEvent = Error{Code: "server/unknown-event", Message: "Unknown event"}

	BadToken = Error{Code: "auth/bad-token", Message: "Missing or invalid access token"}

	FolderNameAlreadyExists     = Error{Code: "folders/name-already-exists", Message: "The name specified is already in use"}
	UnknownFolder               = Error{Code: "folders/unknown-folder", Message: "Unknown folder id"}
	UnknownParentFolder         = Error{Code: "folders/unknown-parent-folder", Message: "Unknown parent folder id"}
	FolderInconsistentHierarchy = Error{Code: "folders/inconsistent-hierarchy", Message: "The folder hierarchy on disk does not match the stored folders"}

	UnknownAudio = Error{Code: "audios/unknown-audio", Message: "Unknown audio id"}

	UnknownPlaylist        = Error{Code: "playlists/unknown-playlist", Message: "Unknown playlist id"}
	InvalidItemsStructure  = Error{Code: "playlists/invalid-items-structure", Message: "Items must be a list of {id, type} with a known media type"}
	EmptyItems             = Error{Code: "playlists/empty-items", Message: "Empty items given"}
	InvalidItems           = Error{Code: "playlists/invalid-items", Message: "Some items reference unknown media"}
	ContentNotIdentical    = Error{Code: "playlists/content-not-identical", Message: "The given items are not a reordering of the playlist content"}
	ConcurrentModification = Error{Code: "playlists/concurrent-modification", Message: "The playlist was modified concurrently, please retry"}
)

// List 一次请求中收集到的全部校验/领域错误
type List []Error

func (l List) Error() string {
	codes := make([]string, 0, len(l))
	for _, e := range l {
		codes = append(codes, e.Error())
	}
	return strings.Join(codes, ", ")
}

// Add 追加一条错误
func (l *List) Add(e Error) {
	*l = append(*l, e)
}

// Err 空列表返回 nil，方便 `return errs.Err()`
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Has 列表中是否包含指定 code
func (l List) Has(code string) bool {
	for _, e := range l {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Of 用单条错误构造 error
func Of(e ...Error) error {
	return List(e)
}

// As 取出 err 链上的 List。单条 Error 也会被包装成 List。
func As(err error) (List, bool) {
	var l List
	if errors.As(err, &l) {
		return l, true
	}
	var e Error
	if errors.As(err, &e) {
		return List{e}, true
	}
	return nil, false
}

// HasCode err 是否是包含指定 code 的领域错误
func HasCode(err error, code string) bool {
	l, ok := As(err)
	return ok && l.Has(code)
}
