//go:build !unix

package walk

import (
	"os"
	"path/filepath"
)

func identity(path string, info os.FileInfo) any {
	return filepath.Clean(path)
}
