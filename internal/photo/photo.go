// Package photo holds the types shared by every stage of the organiser:
// the candidate file, the placement decision made for it and the error
// kinds a single file can fail with.
package photo

import (
	"path/filepath"
	"strings"

	"photo-organiser/internal/capture"
)

// photoExts contains the supported photo file extensions, lower-cased.
var photoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// IsPhoto reports whether path carries a supported photo extension.
// The comparison is case-insensitive.
func IsPhoto(path string) bool {
	return photoExts[strings.ToLower(filepath.Ext(path))]
}

// File is one candidate photo found under the source tree.
type File struct {
	Path string // Source path
	Ext  string // Extension as found on disk, including the dot
	Date *capture.Date

	// Destination is filled in once the resolver has decided where the
	// file goes.
	Destination string
}

// NewFile returns a File for path with no capture date yet.
func NewFile(path string) *File {
	return &File{Path: path, Ext: filepath.Ext(path)}
}

// Name returns the base name of the source file.
func (f *File) Name() string {
	return filepath.Base(f.Path)
}

// Dated reports whether a capture date is known for f.
func (f *File) Dated() bool {
	return f.Date != nil
}

// DecisionKind enumerates the possible placement decisions.
type DecisionKind int

const (
	Place DecisionKind = iota
	Duplicate
	Undated
)

func (k DecisionKind) String() string {
	switch k {
	case Place:
		return "place"
	case Duplicate:
		return "duplicate"
	case Undated:
		return "undated"
	default:
		return "unknown"
	}
}

// Decision is the resolver's verdict for one File. Path is only set for
// Place, and for Duplicate where it names the file already holding the
// same content.
type Decision struct {
	Kind DecisionKind
	Path string
}
