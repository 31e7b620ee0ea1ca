package placement

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// RemoveEmptyDirs removes every directory under root, root included, that is
// empty once its empty subdirectories are gone. Files are never removed and
// every error is ignored: the cleanup never fails a run.
func RemoveEmptyDirs(fs afero.Fs, root string, log logrus.FieldLogger) int {
	var dirs []string
	_ = afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})

	// Deepest first, so children go before their parents.
	sep := string(filepath.Separator)
	sort.SliceStable(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], sep) > strings.Count(dirs[j], sep)
	})

	removed := 0
	for _, dir := range dirs {
		empty, err := afero.IsEmpty(fs, dir)
		if err != nil || !empty {
			continue
		}
		if err := fs.Remove(dir); err != nil {
			log.WithError(err).WithField("path", dir).Debug("cannot remove empty directory")
			continue
		}
		removed++
	}
	return removed
}
