package organiser

import (
	"time"

	"photo-organiser/internal/photo"
)

// Outcome is what happened to one photo.
type Outcome int

const (
	Placed    Outcome = iota // Written under its capture date
	Duplicate                // Same content already at the destination
	Undated                  // Written to the undated directory
	Ignored                  // Undated and left alone
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Placed:
		return "placed"
	case Duplicate:
		return "duplicate"
	case Undated:
		return "undated"
	case Ignored:
		return "ignored"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes the handling of one photo.
type Result struct {
	Source      string
	Destination string
	Outcome     Outcome
	CaptureDate string // Empty for undated photos
	Err         error  // *photo.Error when Outcome is Failed
}

// Kind returns the failure kind of r, and false unless r failed.
func (r Result) Kind() (photo.Kind, bool) {
	if r.Outcome != Failed {
		return 0, false
	}
	return photo.KindOf(r.Err)
}

// Summary counts results by outcome.
type Summary struct {
	Placed     int
	Duplicates int
	Undated    int
	Ignored    int
	Failed     int

	// RemovedDirs is the number of emptied source directories removed
	// after a move.
	RemovedDirs int
}

// Total returns the number of photos handled.
func (s Summary) Total() int {
	return s.Placed + s.Duplicates + s.Undated + s.Ignored + s.Failed
}

// Report is the outcome of a whole run.
type Report struct {
	Source      string
	Destination string
	DryRun      bool
	StartedAt   time.Time
	FinishedAt  time.Time

	Results []Result
	Summary Summary
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case Placed:
		r.Summary.Placed++
	case Duplicate:
		r.Summary.Duplicates++
	case Undated:
		r.Summary.Undated++
	case Ignored:
		r.Summary.Ignored++
	case Failed:
		r.Summary.Failed++
	}
}
