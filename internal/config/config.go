// Package config turns command-line flags and PHOTO_ORGANISER_* environment
// variables into one validated Config.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"photo-organiser/internal/capture"
	"photo-organiser/internal/organiser"
	"photo-organiser/internal/placement"
	"photo-organiser/internal/walk"
)

// ErrInvalidArguments reports a command line that cannot be run.
var ErrInvalidArguments = errors.New("invalid arguments")

// EnvPrefix prefixes the environment variable of every flag, e.g.
// PHOTO_ORGANISER_DRY_RUN.
const EnvPrefix = "PHOTO_ORGANISER"

// Flag names, also used as viper keys.
const (
	KeyVerbose    = "verbose"
	KeyQuiet      = "quiet"
	KeyRecursive  = "recursive"
	KeySymlink    = "symlink"
	KeyMove       = "move"
	KeyDepth      = "depth"
	KeyLog        = "log"
	KeyIgnore     = "ignore"
	KeyUndatedDir = "process-no-exif"
	KeyDryRun     = "dry-run"
	KeyHash       = "hash"
	KeyManifest   = "manifest"
	KeyProgress   = "progress"
	KeyMaxBumps   = "max-bumps"
	KeyJSONLog    = "json-log"
)

// Log destinations other than a file path.
const (
	LogStderr = "stderr"
	LogStdout = "stdout"
)

// Config is the effective configuration of one run.
type Config struct {
	Source      string
	Destination string

	Verbose        bool
	Quiet          bool
	Recursive      bool
	FollowSymlinks bool
	Move           bool
	Depth          int    // 0 means unlimited
	Log            string // LogStderr, LogStdout or a file path
	IgnoreUndated  bool
	UndatedDir     string

	DryRun   bool
	Hash     string
	Manifest string
	Progress bool
	MaxBumps int
	JSONLog  bool
}

// Register declares every flag on fs.
func Register(fs *pflag.FlagSet) {
	fs.BoolP(KeyVerbose, "v", true, "make lots of noise")
	fs.BoolP(KeyQuiet, "q", false, "unless errors don't output anything")
	fs.BoolP(KeyRecursive, "r", true, "operate recursively")
	fs.BoolP(KeySymlink, "s", false, "follow symbolic linked directories")
	fs.BoolP(KeyMove, "m", false, "delete original file from SOURCE, by default it makes a copy of the file")
	fs.IntP(KeyDepth, "d", 0, "maximum directory depth, 0 is unlimited")
	fs.StringP(KeyLog, "g", LogStderr, "log all actions to stderr, stdout or a file")
	fs.BoolP(KeyIgnore, "i", true, "ignore photos with missing EXIF header")
	fs.StringP(KeyUndatedDir, "p", "undated", "copy/move images with no EXIF data to this subdirectory of DESTINATION")
	fs.BoolP(KeyDryRun, "n", false, "show what would happen without touching any file")
	fs.String(KeyHash, placement.HashBlake3, "digest used to detect duplicates: blake3 or sha256")
	fs.String(KeyManifest, "", "write a CSV manifest of organised photos to this path")
	fs.Bool(KeyProgress, false, "show a progress indicator on stderr")
	fs.Int(KeyMaxBumps, capture.MaxBumps, "maximum candidate names tried per photo")
	fs.Bool(KeyJSONLog, false, "log in JSON")
}

// Bind connects v to the flags in fs and to the environment.
func Bind(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return nil
}

// Load builds and validates the Config for the positional args
// SOURCE [DESTINATION]. DESTINATION defaults to SOURCE.
func Load(v *viper.Viper, args []string) (Config, error) {
	var c Config
	switch len(args) {
	case 1:
		c.Source, c.Destination = args[0], args[0]
	case 2:
		c.Source, c.Destination = args[0], args[1]
	default:
		return c, fmt.Errorf("%w: want SOURCE [DESTINATION], got %d arguments", ErrInvalidArguments, len(args))
	}

	c.Verbose = v.GetBool(KeyVerbose)
	c.Quiet = v.GetBool(KeyQuiet)
	c.Recursive = v.GetBool(KeyRecursive)
	c.FollowSymlinks = v.GetBool(KeySymlink)
	c.Move = v.GetBool(KeyMove)
	c.Depth = v.GetInt(KeyDepth)
	c.Log = v.GetString(KeyLog)
	c.IgnoreUndated = v.GetBool(KeyIgnore)
	c.UndatedDir = v.GetString(KeyUndatedDir)
	c.DryRun = v.GetBool(KeyDryRun)
	c.Hash = v.GetString(KeyHash)
	c.Manifest = v.GetString(KeyManifest)
	c.Progress = v.GetBool(KeyProgress)
	c.MaxBumps = v.GetInt(KeyMaxBumps)
	c.JSONLog = v.GetBool(KeyJSONLog)

	// Naming an undated directory asks for undated photos to be processed,
	// unless ignoring was requested explicitly as well.
	if v.IsSet(KeyUndatedDir) && !v.IsSet(KeyIgnore) {
		c.IgnoreUndated = false
	}

	return c, c.Validate()
}

// Validate checks values that flags alone cannot constrain.
func (c Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("%w: empty SOURCE", ErrInvalidArguments)
	}
	if c.Depth < 0 {
		return fmt.Errorf("%w: depth must not be negative, got %d", ErrInvalidArguments, c.Depth)
	}
	if c.MaxBumps <= 0 {
		return fmt.Errorf("%w: max-bumps must be positive, got %d", ErrInvalidArguments, c.MaxBumps)
	}
	if _, err := placement.HashFunc(c.Hash); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if c.Log == "" {
		return fmt.Errorf("%w: empty log destination", ErrInvalidArguments)
	}
	if !c.IgnoreUndated {
		d := c.UndatedDir
		if d == "" || d == "." || d == ".." || filepath.IsAbs(d) || strings.ContainsRune(d, filepath.Separator) || strings.ContainsRune(d, '/') {
			return fmt.Errorf("%w: undated directory must be a plain directory name, got %q", ErrInvalidArguments, d)
		}
	}
	return nil
}

// MaxDepth converts the recursive and depth settings to a walk depth.
func (c Config) MaxDepth() int {
	switch {
	case !c.Recursive:
		return 0
	case c.Depth == 0:
		return walk.Unlimited
	default:
		return c.Depth
	}
}

// Mode returns the transfer mode.
func (c Config) Mode() placement.Mode {
	if c.Move {
		return placement.Move
	}
	return placement.Copy
}

// Level returns the log level: errors only when quiet, everything when
// verbose.
func (c Config) Level() logrus.Level {
	switch {
	case c.Quiet:
		return logrus.ErrorLevel
	case c.Verbose:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// Organiser returns the options of the run described by c.
func (c Config) Organiser() organiser.Options {
	return organiser.Options{
		Source:         c.Source,
		Destination:    c.Destination,
		Mode:           c.Mode(),
		FollowSymlinks: c.FollowSymlinks,
		MaxDepth:       c.MaxDepth(),
		IgnoreUndated:  c.IgnoreUndated,
		UndatedDir:     c.UndatedDir,
		Hash:           c.Hash,
		MaxAttempts:    c.MaxBumps,
		DryRun:         c.DryRun,
		Manifest:       c.Manifest,
	}
}
