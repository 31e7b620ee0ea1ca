// Package organiser runs the whole pipeline: walk the source tree, read each
// photo's capture date, pick its destination and copy or move it there.
package organiser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"photo-organiser/internal/capture"
	"photo-organiser/internal/exifdate"
	"photo-organiser/internal/photo"
	"photo-organiser/internal/placement"
	"photo-organiser/internal/walk"
)

// Options configures one run.
type Options struct {
	Source      string
	Destination string
	Mode        placement.Mode

	FollowSymlinks bool
	MaxDepth       int // walk.Unlimited for no limit

	// IgnoreUndated leaves photos without a capture date where they are.
	// Otherwise they go to Destination/UndatedDir under their own name.
	IgnoreUndated bool
	UndatedDir    string

	Hash        string // placement.HashBlake3 or placement.HashSHA256
	MaxAttempts int    // Candidate names per photo, 0 for capture.MaxBumps

	// DryRun decides and logs everything but writes nothing.
	DryRun bool
	// Manifest, if set, is the path of a CSV listing every handled photo.
	Manifest string
}

// Organiser processes one source tree. It handles a single file at a time
// and must not be used concurrently.
type Organiser struct {
	opts Options
	fs   afero.Fs
	log  logrus.FieldLogger

	reader   exifdate.Reader
	detector *placement.Detector
	resolver *placement.Resolver
	transfer *placement.Transfer

	onResult func(Result)
}

// New wires an Organiser working on fs.
func New(fs afero.Fs, opts Options, log logrus.FieldLogger) (*Organiser, error) {
	if opts.UndatedDir == "" && !opts.IgnoreUndated {
		return nil, errors.New("undated directory must be set when undated photos are processed")
	}
	if opts.Hash == "" {
		opts.Hash = placement.HashBlake3
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = capture.MaxBumps
	}

	detector, err := placement.NewDetector(fs, opts.Hash)
	if err != nil {
		return nil, err
	}

	return &Organiser{
		opts:     opts,
		fs:       fs,
		log:      log,
		reader:   exifdate.NewReader(fs),
		detector: detector,
		resolver: placement.NewResolver(fs, detector, opts.MaxAttempts, log),
		transfer: placement.NewTransfer(fs, log),
	}, nil
}

// OnResult registers fn to be called after each photo is handled.
func (o *Organiser) OnResult(fn func(Result)) {
	o.onResult = fn
}

// Run walks the source tree and handles every photo in it. A failing photo
// is recorded in the report and never stops the run; the returned error is
// reserved for an unreadable source root, cancellation and manifest output.
func (o *Organiser) Run(ctx context.Context) (*Report, error) {
	rep := &Report{
		Source:      o.opts.Source,
		Destination: o.opts.Destination,
		DryRun:      o.opts.DryRun,
		StartedAt:   time.Now(),
	}
	defer func() { rep.FinishedAt = time.Now() }()

	o.log.WithFields(logrus.Fields{
		"source":      o.opts.Source,
		"destination": o.opts.Destination,
		"mode":        o.opts.Mode,
		"dry_run":     o.opts.DryRun,
	}).Debug("starting")

	w := walk.New(o.fs, o.opts.Source, walk.Options{
		FollowSymlinks: o.opts.FollowSymlinks,
		MaxDepth:       o.opts.MaxDepth,
		Logger:         o.log,
	})
	for w.Next() {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		path := w.Entry().Path()
		if !photo.IsPhoto(path) {
			o.log.WithField("path", path).Debug("not a photo, skipping")
			continue
		}

		res := o.Process(path)
		rep.add(res)
		if o.onResult != nil {
			o.onResult(res)
		}
	}
	if err := w.Err(); err != nil {
		return rep, err
	}

	if o.opts.Mode == placement.Move && !o.opts.DryRun {
		rep.Summary.RemovedDirs = placement.RemoveEmptyDirs(o.fs, o.opts.Source, o.log)
	}

	if o.opts.Manifest != "" {
		if o.opts.DryRun {
			o.log.WithField("path", o.opts.Manifest).Info("dry run, manifest not written")
		} else if err := o.writeManifest(rep); err != nil {
			return rep, fmt.Errorf("write manifest: %w", err)
		}
	}
	return rep, nil
}

// Process handles a single photo.
func (o *Organiser) Process(path string) Result {
	log := o.log.WithField("path", path)
	log.Debug("processing")

	f := photo.NewFile(path)
	res := Result{Source: path}

	raw, err := o.reader.Read(path)
	switch {
	case err == nil:
		d, err := capture.Parse(raw)
		if err != nil {
			log.WithError(err).Debug("unusable capture date")
			break
		}
		f.Date = d
	case exifdate.IsInvalidImage(err):
		log.WithError(err).Error("not a valid image, skipping")
		return o.fail(res, photo.KindInvalidImage, err)
	case errors.Is(err, exifdate.ErrNoDate):
		log.WithError(err).Debug("no capture date")
	default:
		log.WithError(err).Error("cannot read metadata, skipping")
		return o.fail(res, photo.KindIO, err)
	}

	if f.Dated() {
		res.CaptureDate = f.Date.String()
		log.WithField("date", res.CaptureDate).Debug("photo has a date")
	}

	dec, err := o.resolver.Resolve(f, o.opts.Destination)
	if err != nil {
		return o.resolveFailed(log, res, err)
	}

	if dec.Kind == photo.Undated {
		log.Warn("photo has no known date")
		if o.opts.IgnoreUndated {
			res.Outcome = Ignored
			return res
		}
		dec, err = o.resolver.ResolveUndated(f, filepath.Join(o.opts.Destination, o.opts.UndatedDir))
		if err != nil {
			return o.resolveFailed(log, res, err)
		}
		res.Outcome = Undated
	} else {
		res.Outcome = Placed
	}
	res.Destination = dec.Path

	if dec.Kind == photo.Duplicate {
		if filepath.Clean(dec.Path) == filepath.Clean(path) {
			log.Debug("already in place")
		} else {
			log.WithField("existing", dec.Path).Debug("exact duplicate, skipping")
		}
		res.Outcome = Duplicate
		return res
	}

	if err := o.place(f.Path, res.Destination); err != nil {
		log.WithError(err).WithField("destination", res.Destination).Error("transfer failed")
		return o.fail(res, photo.KindIO, err)
	}
	return res
}

// place transfers src to dst, or only reserves dst in a dry run.
func (o *Organiser) place(src, dst string) error {
	log := o.log.WithFields(logrus.Fields{"path": src, "destination": dst})
	if o.opts.DryRun {
		o.resolver.Reserve(dst, src)
		log.Infof("would %s", o.opts.Mode)
		return nil
	}

	if err := o.transfer.Place(src, dst, o.opts.Mode); err != nil {
		return err
	}
	log.Infof("%s done", o.opts.Mode)
	return nil
}

// resolveFailed turns a resolver error into a failed Result.
func (o *Organiser) resolveFailed(log logrus.FieldLogger, res Result, err error) Result {
	if errors.Is(err, placement.ErrPlacementExhausted) {
		log.WithError(err).Warn("no free destination name, skipping")
		return o.fail(res, photo.KindPlacementExhausted, err)
	}
	log.WithError(err).Error("cannot resolve destination, skipping")
	return o.fail(res, photo.KindIO, err)
}

// fail marks res as failed with the given kind.
func (o *Organiser) fail(res Result, kind photo.Kind, err error) Result {
	res.Outcome = Failed
	res.Err = &photo.Error{Kind: kind, Path: res.Source, Err: err}
	return res
}
