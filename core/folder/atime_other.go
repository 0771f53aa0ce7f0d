//go:build !linux && !darwin

package folder

import (
	"os"
	"time"
)

// 其他平台没有统一的 atime 字段，退回到修改时间
func accessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
