//go:build linux

package filemanager

import (
	"os"
	"syscall"
	"time"
)

// statTimes extracts change and access times from the platform stat data.
// Linux has no true creation time; the inode change time is the closest
// available equivalent.
func statTimes(info os.FileInfo) (created, accessed time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}
	created = time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
	accessed = time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))
	return created, accessed
}
