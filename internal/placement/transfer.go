package placement

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// ErrDestinationExists is returned instead of overwriting an existing file.
var ErrDestinationExists = errors.New("destination already exists")

// Mode selects whether the source survives a transfer.
type Mode int

const (
	Copy Mode = iota
	Move
)

func (m Mode) String() string {
	if m == Move {
		return "move"
	}
	return "copy"
}

// Transfer copies or moves files into place.
type Transfer struct {
	fs  afero.Fs
	log logrus.FieldLogger

	// rename is swapped in tests to simulate cross-device moves.
	rename func(oldname, newname string) error
}

// NewTransfer returns a Transfer working on fs.
func NewTransfer(fs afero.Fs, log logrus.FieldLogger) *Transfer {
	return &Transfer{fs: fs, log: log, rename: fs.Rename}
}

// Place puts src at dst, creating missing parent directories first.
// It never overwrites dst. In Move mode the source is removed only once dst
// is completely written.
func (t *Transfer) Place(src, dst string, mode Mode) error {
	dir := filepath.Dir(dst)
	if err := t.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	if mode == Copy {
		return t.copyFile(src, dst)
	}

	if _, err := lstat(t.fs, dst); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	// Renaming a symlink would move the link, not the photo.
	info, err := lstat(t.fs, src)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		t.log.WithField("path", src).Debug("source is a symlink, copying its target")
		return t.copyThenRemove(src, dst)
	}

	err = t.rename(src, dst)
	if err == nil {
		return nil
	}
	if !IsCrossDevice(err) {
		return fmt.Errorf("move %s: %w", src, err)
	}

	t.log.WithField("path", src).Debug("cross-device move, copying instead")
	return t.copyThenRemove(src, dst)
}

// copyThenRemove copies the content behind src to dst and then removes src.
// For a symlink only the link is removed.
func (t *Transfer) copyThenRemove(src, dst string) error {
	if err := t.copyFile(src, dst); err != nil {
		return err
	}
	if err := t.fs.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return nil
}

// copyFile writes a new dst with the content, permission bits and
// modification time of src. A partial dst is removed on failure.
func (t *Transfer) copyFile(src, dst string) (err error) {
	in, err := t.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := t.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return err
	}
	defer func() {
		if err != nil {
			_ = t.fs.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err = out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	if err := t.fs.Chmod(dst, info.Mode().Perm()); err != nil {
		t.log.WithError(err).WithField("path", dst).Debug("cannot copy permissions")
	}
	if err := t.fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		t.log.WithError(err).WithField("path", dst).Debug("cannot copy modification time")
	}
	return nil
}
