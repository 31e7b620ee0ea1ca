// Package capture turns the raw EXIF capture timestamp into destination
// paths and file names.
package capture

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout is the EXIF DateTimeOriginal format, in Go's reference time.
const Layout = "2006:01:02 15:04:05"

// MaxBumps bounds how many times a Date may be bumped while looking for a
// free destination name: one full second worth of microseconds.
const MaxBumps = 1_000_000

// ParseError reports a raw value that does not match Layout.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("capture date %q: %v", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Date is a photo's capture time with microsecond resolution.
// Only Bump changes it after Parse.
type Date struct {
	t time.Time
}

// Parse reads a timestamp in Layout. Surrounding whitespace and trailing
// NUL padding, as written by many cameras, are ignored.
func Parse(raw string) (*Date, error) {
	s := strings.TrimSpace(strings.TrimRight(raw, "\x00"))
	t, err := time.Parse(Layout, s)
	if err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return &Date{t: t}, nil
}

// PathSegments returns year, month and day as unpadded decimal strings.
func (d *Date) PathSegments() (year, month, day string) {
	return strconv.Itoa(d.t.Year()), strconv.Itoa(int(d.t.Month())), strconv.Itoa(d.t.Day())
}

// FileName formats d as YYYY_MM_DD-HH_MM_SS_ffffff followed by ext.
func (d *Date) FileName(ext string) string {
	return fmt.Sprintf("%04d_%02d_%02d-%02d_%02d_%02d_%06d%s",
		d.t.Year(), d.t.Month(), d.t.Day(),
		d.t.Hour(), d.t.Minute(), d.t.Second(),
		d.t.Nanosecond()/int(time.Microsecond),
		ext)
}

// Bump advances d by one microsecond.
func (d *Date) Bump() {
	d.t = d.t.Add(time.Microsecond)
}

func (d *Date) String() string {
	return d.t.Format(Layout)
}
