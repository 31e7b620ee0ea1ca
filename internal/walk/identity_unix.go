//go:build unix

package walk

import (
	"os"
	"path/filepath"
	"syscall"
)

type devIno struct {
	dev, ino uint64
}

// identity returns a key that is equal for two paths naming the same
// directory: device and inode when the filesystem exposes them.
func identity(path string, info os.FileInfo) any {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return devIno{dev: uint64(st.Dev), ino: uint64(st.Ino)}
	}
	return filepath.Clean(path)
}
