//go:build !linux && !darwin

package filemanager

import (
	"os"
	"time"
)

// statTimes falls back to the modification time where the platform stat
// data is not exposed through syscall.Stat_t.
func statTimes(info os.FileInfo) (created, accessed time.Time) {
	return info.ModTime(), info.ModTime()
}
