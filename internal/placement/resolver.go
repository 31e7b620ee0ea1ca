package placement

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"photo-organiser/internal/capture"
	"photo-organiser/internal/photo"
)

// ErrPlacementExhausted is returned when no free destination name was found
// within the configured number of bumps.
var ErrPlacementExhausted = errors.New("placement attempts exhausted")

// Resolver picks the destination of a dated photo.
//
// Destinations are addressed by capture time. An occupied name holding the
// same content makes the photo a duplicate; an occupied name holding other
// content bumps the capture date by one microsecond and tries again.
// Undated photos keep their name and get a numeric suffix instead.
//
// Resolver is not safe for concurrent use: the existence check and the
// later write are only race free because files are handled one at a time.
type Resolver struct {
	fs          afero.Fs
	cmp         Comparer
	maxAttempts int
	log         logrus.FieldLogger

	// reserved maps destinations claimed without a write (dry runs) to the
	// source that claimed them.
	reserved map[string]string
}

// NewResolver returns a Resolver trying at most maxAttempts candidate names
// per photo. maxAttempts <= 0 selects capture.MaxBumps, which keeps every
// candidate within the photo's original second.
func NewResolver(fs afero.Fs, cmp Comparer, maxAttempts int, log logrus.FieldLogger) *Resolver {
	if maxAttempts <= 0 {
		maxAttempts = capture.MaxBumps
	}
	return &Resolver{
		fs:          fs,
		cmp:         cmp,
		maxAttempts: maxAttempts,
		log:         log,
		reserved:    make(map[string]string),
	}
}

// Resolve decides where f goes under root and records the result in
// f.Destination. It may bump f.Date.
func (r *Resolver) Resolve(f *photo.File, root string) (photo.Decision, error) {
	if !f.Dated() {
		return photo.Decision{Kind: photo.Undated}, nil
	}
	return r.search(f, func(attempt int) string {
		if attempt > 1 {
			f.Date.Bump()
		}
		y, m, d := f.Date.PathSegments()
		return filepath.Join(root, y, m, d, f.Date.FileName(f.Ext))
	})
}

// ResolveUndated decides where f goes inside dir, keeping its own name.
// An occupied name holding other content is retried as name_1.ext,
// name_2.ext and so on.
func (r *Resolver) ResolveUndated(f *photo.File, dir string) (photo.Decision, error) {
	name := f.Name()
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return r.search(f, func(attempt int) string {
		if attempt == 1 {
			return filepath.Join(dir, name)
		}
		return filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, attempt-1, ext))
	})
}

// search tries up to maxAttempts candidate paths for f.
func (r *Resolver) search(f *photo.File, candidate func(attempt int) string) (photo.Decision, error) {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		path := candidate(attempt)

		occupant, taken, err := r.occupant(path)
		if err != nil {
			return photo.Decision{}, err
		}
		if !taken {
			f.Destination = path
			return photo.Decision{Kind: photo.Place, Path: path}, nil
		}

		same, err := r.cmp.IsExactDuplicate(f.Path, occupant)
		if err != nil {
			r.log.WithError(err).WithFields(logrus.Fields{
				"path":     f.Path,
				"existing": path,
			}).Warn("cannot confirm duplicate, choosing another name")
			continue
		}
		if same {
			f.Destination = path
			return photo.Decision{Kind: photo.Duplicate, Path: path}, nil
		}
	}
	return photo.Decision{}, fmt.Errorf("%w: %s after %d candidates", ErrPlacementExhausted, f.Path, r.maxAttempts)
}

// Reserve marks dest as claimed by src without anything being written.
func (r *Resolver) Reserve(dest, src string) {
	r.reserved[dest] = src
}

// occupant returns the file whose content currently stands for path, and
// whether path is taken at all.
func (r *Resolver) occupant(path string) (string, bool, error) {
	if src, ok := r.reserved[path]; ok {
		return src, true, nil
	}
	_, err := lstat(r.fs, path)
	if err == nil {
		return path, true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	return "", false, err
}

// lstat stats path without following a final symlink when fs allows it.
func lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}
