//go:build linux

package folder

import (
	"os"
	"syscall"
	"time"
)

func accessTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return timeFromSpec(int64(st.Atim.Sec), int64(st.Atim.Nsec))
	}
	return info.ModTime()
}
