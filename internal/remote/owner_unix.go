//go:build unix

package remote

import (
	"os"
	"strconv"
	"syscall"
)

// ownerOf extracts numeric uid/gid from syscall.Stat_t when the filesystem
// exposes one. In-memory filesystems do not.
func ownerOf(info os.FileInfo) (string, string) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", ""
	}
	return strconv.FormatUint(uint64(st.Uid), 10), strconv.FormatUint(uint64(st.Gid), 10)
}
