// Package walk lists the files of a directory tree lazily, one at a time,
// without recursion.
package walk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Unlimited disables the depth limit.
const Unlimited = -1

// Options controls a walk.
type Options struct {
	// FollowSymlinks descends into symlinked directories. Symlinks to
	// regular files are always yielded.
	FollowSymlinks bool
	// MaxDepth is the deepest directory level listed; the root is level 0.
	// Unlimited (or any negative value) lists every level.
	MaxDepth int
	Logger   logrus.FieldLogger
}

// Entry is one regular file found by the walk.
type Entry struct {
	Dir   string
	Name  string
	Depth int // Depth of Dir
}

// Path returns the full path of the file.
func (e Entry) Path() string {
	return filepath.Join(e.Dir, e.Name)
}

type frame struct {
	dir   string
	depth int
}

// Walker iterates over the regular files under a root.
//
//	w := walk.New(fs, root, opts)
//	for w.Next() {
//		e := w.Entry()
//	}
//	if err := w.Err(); err != nil { ... }
//
// Files of a directory come out in name order before any of its
// subdirectories are listed. Subdirectories are listed in name order too.
// A Walker cannot be restarted; create a new one instead.
type Walker struct {
	fs   afero.Fs
	root string
	opts Options
	log  logrus.FieldLogger

	started bool
	stack   []frame
	pending []Entry
	cur     Entry
	visited map[any]bool
	err     error
}

// New returns a Walker over root. Nothing is read until the first Next.
func New(fs afero.Fs, root string, opts Options) *Walker {
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Walker{
		fs:      fs,
		root:    filepath.Clean(root),
		opts:    opts,
		log:     log,
		visited: make(map[any]bool),
	}
}

// Next advances to the next file. It returns false when the walk is over
// or the root could not be read.
func (w *Walker) Next() bool {
	if !w.started {
		w.started = true
		if !w.start() {
			return false
		}
	}
	for {
		if len(w.pending) > 0 {
			w.cur = w.pending[0]
			w.pending = w.pending[1:]
			return true
		}
		if len(w.stack) == 0 {
			return false
		}
		top := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		w.expand(top)
		if w.err != nil {
			return false
		}
	}
}

// Entry returns the file Next moved to.
func (w *Walker) Entry() Entry {
	return w.cur
}

// Err returns the error that stopped the walk, if any. Problems below the
// root are logged and skipped instead.
func (w *Walker) Err() error {
	return w.err
}

// start checks the root and pushes it on the stack.
func (w *Walker) start() bool {
	info, err := w.fs.Stat(w.root)
	if err != nil {
		w.err = fmt.Errorf("walk %s: %w", w.root, err)
		return false
	}
	if !info.IsDir() {
		w.err = fmt.Errorf("walk %s: not a directory", w.root)
		return false
	}
	w.visited[identity(w.root, info)] = true
	w.stack = append(w.stack, frame{dir: w.root, depth: 0})
	return true
}

// descend reports whether directories at depth are listed.
func (w *Walker) descend(depth int) bool {
	return w.opts.MaxDepth < 0 || depth <= w.opts.MaxDepth
}

// firstVisit records the directory and reports whether it was new.
func (w *Walker) firstVisit(path string, info os.FileInfo) bool {
	key := identity(path, info)
	if w.visited[key] {
		w.log.WithField("path", path).Info("directory already visited, skipping")
		return false
	}
	w.visited[key] = true
	return true
}

// expand lists fr, queueing its files and pushing its subdirectories.
func (w *Walker) expand(fr frame) {
	infos, err := afero.ReadDir(w.fs, fr.dir)
	if err != nil {
		if fr.depth == 0 {
			w.err = fmt.Errorf("walk %s: %w", fr.dir, err)
			return
		}
		w.log.WithError(err).WithField("path", fr.dir).Warn("cannot read directory, skipping")
		return
	}

	type candidate struct {
		path string
		info os.FileInfo
	}
	var dirs, links []candidate
	next := fr.depth + 1
	for _, info := range infos {
		path := filepath.Join(fr.dir, info.Name())
		mode := info.Mode()

		switch {
		case mode.IsRegular():
			w.pending = append(w.pending, Entry{Dir: fr.dir, Name: info.Name(), Depth: fr.depth})

		case mode.IsDir():
			if w.descend(next) {
				dirs = append(dirs, candidate{path, info})
			}

		case mode&os.ModeSymlink != 0:
			target, err := w.fs.Stat(path)
			if err != nil {
				w.log.WithError(err).WithField("path", path).Info("skipping broken symlink")
				continue
			}
			switch {
			case target.Mode().IsRegular():
				w.pending = append(w.pending, Entry{Dir: fr.dir, Name: info.Name(), Depth: fr.depth})
			case target.IsDir() && !w.opts.FollowSymlinks:
				w.log.WithField("path", path).Debug("not following symlinked directory")
			case target.IsDir():
				if w.descend(next) {
					links = append(links, candidate{path, target})
				}
			default:
				w.log.WithField("path", path).Info("skipping symlink to special file")
			}

		default:
			w.log.WithField("path", path).Info("skipping special file")
		}
	}

	// Real directories claim their identity before symlinks to them, so a
	// directory reachable both ways is listed under its real name.
	var subdirs []string
	for _, c := range append(dirs, links...) {
		if w.firstVisit(c.path, c.info) {
			subdirs = append(subdirs, c.path)
		}
	}
	sort.Strings(subdirs)

	// Reverse order so the first subdirectory by name is popped first.
	for i := len(subdirs) - 1; i >= 0; i-- {
		w.stack = append(w.stack, frame{dir: subdirs[i], depth: next})
	}
}
