// Photo Organiser - A tool to organise photos by capture date
//
// This tool walks a SOURCE directory for JPEG and PNG photos, reads their
// capture date from the EXIF DateTimeOriginal tag, and copies or moves them
// into a date hierarchy under DESTINATION:
//
//	DESTINATION/YYYY/M/D/YYYY_MM_DD-HH_MM_SS_UUUUUU.ext
//
// Features:
//   - EXIF date extraction from JPEG and PNG
//   - Collision-free names, bumping the capture time by a microsecond
//   - Duplicate detection via content digest (BLAKE3 or SHA-256)
//   - Optional handling of photos without a capture date
//   - Cross-device moves and empty folder cleanup
//   - Dry runs and a manifest CSV of everything organised
//
// Usage:
//
//	photo-organiser ~/Incoming ~/Photos        # Copy photos into ~/Photos
//	photo-organiser -m ~/Incoming ~/Photos     # Move them instead
//	photo-organiser -n -m ~/Incoming ~/Photos  # Preview a move
//	photo-organiser ~/Photos                   # Reorganise in place
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"photo-organiser/internal/config"
	"photo-organiser/internal/organiser"
)

const version = "1.0.0"

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(afero.NewOsFs()).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command line. Every flag can also be given as a
// PHOTO_ORGANISER_* environment variable.
func newRootCmd(fs afero.Fs) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "photo-organiser [flags] SOURCE [DESTINATION]",
		Short: "Organise photos by capture date",
		Long: `Photo Organiser copies or moves the JPEG and PNG photos found in SOURCE
into DESTINATION/YYYY/M/D/, naming each one after its EXIF capture date.
DESTINATION defaults to SOURCE. Exact duplicates are skipped.`,
		Example: `  photo-organiser ~/Incoming ~/Photos        # Copy photos into ~/Photos
  photo-organiser -m ~/Incoming ~/Photos     # Move them instead
  photo-organiser -n -m ~/Incoming ~/Photos  # Preview a move
  photo-organiser -p nodate ~/Incoming ~/Photos
                                             # Also organise undated photos`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, args)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				if errors.Is(err, config.ErrInvalidArguments) {
					fmt.Fprintln(cmd.ErrOrStderr())
					fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
				}
				return err
			}
			if err := run(cmd.Context(), fs, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}
			return nil
		},
	}
	config.Register(cmd.Flags())
	if err := config.Bind(v, cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

// =============================================================================
// Run
// =============================================================================

// run organises one SOURCE into its DESTINATION. Per-photo failures are
// logged and counted; only whole-run failures are returned.
func run(ctx context.Context, fs afero.Fs, cfg config.Config, stdout, stderr io.Writer) error {
	log, closeLog, err := newLogger(fs, cfg, stdout, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	org, err := organiser.New(fs, cfg.Organiser(), log)
	if err != nil {
		return err
	}

	if !cfg.Quiet {
		printBanner(stdout, cfg)
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("organising"),
			progressbar.OptionShowCount(),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		org.OnResult(func(organiser.Result) { _ = bar.Add(1) })
	}

	rep, err := org.Run(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	if rep != nil && !cfg.Quiet {
		printSummary(stdout, rep)
	}
	return err
}

// =============================================================================
// Logging
// =============================================================================

// newLogger returns a logger writing to the destination named by cfg.Log,
// and a function releasing it.
func newLogger(fs afero.Fs, cfg config.Config, stdout, stderr io.Writer) (*logrus.Logger, func(), error) {
	log := logrus.New()
	log.SetLevel(cfg.Level())
	if cfg.JSONLog {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	closeFn := func() {}
	switch cfg.Log {
	case config.LogStderr:
		log.SetOutput(stderr)
	case config.LogStdout:
		log.SetOutput(stdout)
	default:
		f, err := fs.OpenFile(cfg.Log, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		log.SetOutput(f)
		closeFn = func() { _ = f.Close() }
	}
	return log, closeFn, nil
}

// =============================================================================
// Output
// =============================================================================

// printBanner shows what the run is about to do.
func printBanner(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, "Photo Organiser")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Source:      %s\n", cfg.Source)
	fmt.Fprintf(w, "Destination: %s\n", cfg.Destination)
	fmt.Fprintf(w, "Mode:        %s\n", cfg.Mode())
	fmt.Fprintln(w)

	if cfg.DryRun {
		fmt.Fprintln(w, color.YellowString("[DRY RUN MODE - nothing will be written]"))
		fmt.Fprintln(w)
	}
}

// printSummary prints the counts of a finished run, coloured when w is a
// terminal.
func printSummary(w io.Writer, rep *organiser.Report) {
	s := rep.Summary
	verb := "Organised"
	if rep.DryRun {
		verb = "Would organise"
	}

	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "%s %s photos", verb, color.GreenString("%d", s.Placed+s.Undated))
	if s.Undated > 0 {
		fmt.Fprintf(w, " (%d undated)", s.Undated)
	}
	fmt.Fprintln(w)
	if s.Duplicates > 0 {
		fmt.Fprintf(w, "Skipped %s duplicates\n", color.YellowString("%d", s.Duplicates))
	}
	if s.Ignored > 0 {
		fmt.Fprintf(w, "Ignored %s photos without a capture date\n", color.YellowString("%d", s.Ignored))
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "Failed  %s photos, see the log\n", color.RedString("%d", s.Failed))
	}
	if s.RemovedDirs > 0 {
		fmt.Fprintf(w, "Removed %d empty folders\n", s.RemovedDirs)
	}
	fmt.Fprintf(w, "\nDone in %s\n", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond))
}
