package organiser

import (
	"encoding/csv"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// manifestHeaders are the columns of the manifest CSV.
var manifestHeaders = []string{
	"filename",        // Base name at the destination
	"relative_path",   // Destination relative to the destination root
	"source",          // Original path
	"outcome",         // placed, duplicate or undated
	"capture_date",    // EXIF DateTimeOriginal, empty when undated
	"file_size_bytes", // Size in bytes
	"file_hash",       // Digest used for duplicate detection
	"extension",       // Lower-cased extension
	"organized_date",  // When the run finished
}

// writeManifest writes one row per photo that ended up at a destination,
// sorted by relative path. Failed and ignored photos are left out.
func (o *Organiser) writeManifest(rep *Report) error {
	now := time.Now().Format("2006-01-02 15:04:05")

	var rows [][]string
	for _, res := range rep.Results {
		if res.Outcome != Placed && res.Outcome != Duplicate && res.Outcome != Undated {
			continue
		}

		rel, err := filepath.Rel(o.opts.Destination, res.Destination)
		if err != nil {
			rel = res.Destination
		}

		// After a move only the destination is left.
		content := res.Source
		info, err := o.fs.Stat(content)
		if err != nil {
			content = res.Destination
			if info, err = o.fs.Stat(content); err != nil {
				o.log.WithError(err).WithField("path", res.Destination).Warn("not in manifest")
				continue
			}
		}
		sum, err := o.detector.Digest(content)
		if err != nil {
			o.log.WithError(err).WithField("path", content).Warn("not in manifest")
			continue
		}

		rows = append(rows, []string{
			filepath.Base(res.Destination),
			rel,
			res.Source,
			res.Outcome.String(),
			res.CaptureDate,
			fmt.Sprintf("%d", info.Size()),
			fmt.Sprintf("%x", sum),
			strings.ToLower(filepath.Ext(res.Destination)),
			now,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i][1] < rows[j][1] })

	if err := o.fs.MkdirAll(filepath.Dir(o.opts.Manifest), 0o755); err != nil {
		return err
	}
	f, err := o.fs.Create(o.opts.Manifest)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(manifestHeaders); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	o.log.WithField("path", o.opts.Manifest).Infof("wrote %d manifest entries", len(rows))
	return f.Close()
}
