// Package exifdate reads the raw capture timestamp (EXIF DateTimeOriginal)
// from a photo file.
//
// Two outcomes must stay distinct: a file that is not a decodable image at
// all (InvalidImageError) and a valid image that simply carries no usable
// date (ErrNoDate).
package exifdate

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"strings"

	exifv3 "github.com/dsoprea/go-exif/v3"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"github.com/spf13/afero"
)

// ErrNoDate is returned for a valid image without a DateTimeOriginal value.
var ErrNoDate = errors.New("no DateTimeOriginal in metadata")

// errNoExifBlock means goexif found no EXIF block it could decode.
var errNoExifBlock = errors.New("no exif block")

// InvalidImageError reports a file that cannot be opened as a supported image.
type InvalidImageError struct {
	Path string
	Err  error
}

func (e *InvalidImageError) Error() string {
	return fmt.Sprintf("invalid image file %q: %v", e.Path, e.Err)
}

func (e *InvalidImageError) Unwrap() error { return e.Err }

// IsInvalidImage reports whether err is an *InvalidImageError.
func IsInvalidImage(err error) bool {
	var e *InvalidImageError
	return errors.As(err, &e)
}

// Reader extracts the raw capture timestamp of the file at path.
type Reader interface {
	Read(path string) (string, error)
}

// ExifReader implements Reader on top of goexif, with a raw-byte EXIF scan
// as fallback for containers goexif does not understand (PNG eXIf chunks).
type ExifReader struct {
	fs afero.Fs
}

// NewReader returns an ExifReader reading from fs.
func NewReader(fs afero.Fs) *ExifReader {
	return &ExifReader{fs: fs}
}

// Read returns the DateTimeOriginal value of path, trimmed of NUL padding.
func (r *ExifReader) Read(path string) (string, error) {
	f, err := r.fs.Open(path)
	if err != nil {
		return "", &InvalidImageError{Path: path, Err: err}
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return "", &InvalidImageError{Path: path, Err: err}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", &InvalidImageError{Path: path, Err: err}
	}

	raw, err := decodeGoexif(f)
	if !errors.Is(err, errNoExifBlock) {
		return raw, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", &InvalidImageError{Path: path, Err: err}
	}
	return searchRawExif(f)
}

// decodeGoexif reads DateTimeOriginal with goexif.
func decodeGoexif(r io.Reader) (string, error) {
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return "", fmt.Errorf("%w: %v", errNoExifBlock, err)
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return "", ErrNoDate
	}
	if tag.Format() != tiff.StringVal {
		return "", fmt.Errorf("%w: DateTimeOriginal not in string format", ErrNoDate)
	}
	val, err := tag.StringVal()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDate, err)
	}
	return trim(val), nil
}

// searchRawExif finds an EXIF block anywhere in r and reads DateTimeOriginal from it.
func searchRawExif(r io.Reader) (string, error) {
	b, err := exifv3.SearchAndExtractExifWithReader(r)
	if err != nil {
		if errors.Is(err, exifv3.ErrNoExif) {
			return "", ErrNoDate
		}
		return "", fmt.Errorf("%w: %v", ErrNoDate, err)
	}

	entries, _, err := exifv3.GetFlatExifDataUniversalSearch(b, nil, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDate, err)
	}
	for _, e := range entries {
		if e.TagName != "DateTimeOriginal" {
			continue
		}
		if s, ok := e.Value.(string); ok {
			return trim(s), nil
		}
		return "", fmt.Errorf("%w: DateTimeOriginal not in string format", ErrNoDate)
	}
	return "", ErrNoDate
}

// trim drops the NUL padding and spaces around a tag value.
func trim(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
