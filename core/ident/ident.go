// Package ident 实体标识符的生成与校验
package ident

import (
	"github.com/google/uuid"
)

// canonicalLen 规范形式 xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
const canonicalLen = 36

// New 生成一个新的实体ID（UUID v4，规范36位形式）
func New() string {
	return uuid.NewString()
}

// IsValid 判断字符串是否是规范形式的实体ID。
// 只接受带连字符的36位形式，uuid.Parse 额外接受的 urn/花括号/无连字符形式一律拒绝，
// 这样ID可以安全地作为目录名使用。
func IsValid(v string) bool {
	if len(v) != canonicalLen {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}
