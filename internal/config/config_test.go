package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-organiser/internal/placement"
	"photo-organiser/internal/walk"
)

func load(t *testing.T, argv ...string) (Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("photo-organiser", pflag.ContinueOnError)
	Register(fs)
	require.NoError(t, fs.Parse(argv))
	v := viper.New()
	require.NoError(t, Bind(v, fs))
	return Load(v, fs.Args())
}

func TestLoadDefaults(t *testing.T) {
	c, err := load(t, "in")
	require.NoError(t, err)

	assert.Equal(t, "in", c.Source)
	assert.Equal(t, "in", c.Destination)
	assert.True(t, c.Verbose)
	assert.True(t, c.Recursive)
	assert.True(t, c.IgnoreUndated)
	assert.False(t, c.Move)
	assert.False(t, c.DryRun)
	assert.Equal(t, "undated", c.UndatedDir)
	assert.Equal(t, placement.HashBlake3, c.Hash)
	assert.Equal(t, LogStderr, c.Log)
	assert.Equal(t, walk.Unlimited, c.MaxDepth())
	assert.Equal(t, placement.Copy, c.Mode())
	assert.Equal(t, logrus.DebugLevel, c.Level())
}

func TestLoadFlags(t *testing.T) {
	c, err := load(t, "-m", "-s", "-n", "-d", "2", "--hash", "sha256", "--manifest", "out.csv", "in", "out")
	require.NoError(t, err)

	assert.Equal(t, "out", c.Destination)
	assert.Equal(t, 2, c.MaxDepth())
	assert.Equal(t, placement.Move, c.Mode())

	opts := c.Organiser()
	assert.True(t, opts.FollowSymlinks)
	assert.True(t, opts.DryRun)
	assert.Equal(t, "out.csv", opts.Manifest)
	assert.Equal(t, placement.HashSHA256, opts.Hash)
	assert.Equal(t, 2, opts.MaxDepth)
}

func TestLoadArgumentCount(t *testing.T) {
	for _, argv := range [][]string{{}, {"a", "b", "c"}} {
		_, err := load(t, argv...)
		assert.ErrorIs(t, err, ErrInvalidArguments, "%v", argv)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		argv []string
	}{
		{"negative depth", []string{"--depth=-1", "in"}},
		{"unknown hash", []string{"--hash", "md5", "in"}},
		{"zero max bumps", []string{"--max-bumps", "0", "in"}},
		{"nested undated dir", []string{"-p", "a/b", "in"}},
		{"parent undated dir", []string{"-p", "..", "in"}},
		{"empty log", []string{"-g", "", "in"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.argv...)
			assert.ErrorIs(t, err, ErrInvalidArguments)
		})
	}
}

func TestUndatedDirImpliesProcessing(t *testing.T) {
	c, err := load(t, "-p", "nodate", "in")
	require.NoError(t, err)
	assert.False(t, c.IgnoreUndated)
	assert.Equal(t, "nodate", c.UndatedDir)

	c, err = load(t, "-p", "nodate", "-i", "in")
	require.NoError(t, err)
	assert.True(t, c.IgnoreUndated)

	c, err = load(t, "-i=false", "in")
	require.NoError(t, err)
	assert.False(t, c.IgnoreUndated)
	assert.Equal(t, "undated", c.UndatedDir)
}

func TestIgnoredUndatedDirNotValidated(t *testing.T) {
	_, err := load(t, "-p", "a/b", "-i", "in")
	assert.NoError(t, err)
}

func TestNotRecursive(t *testing.T) {
	c, err := load(t, "-r=false", "-d", "5", "in")
	require.NoError(t, err)
	assert.Equal(t, 0, c.MaxDepth())
}

func TestLevels(t *testing.T) {
	c, err := load(t, "-q", "in")
	require.NoError(t, err)
	assert.Equal(t, logrus.ErrorLevel, c.Level())

	c, err = load(t, "-v=false", "in")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, c.Level())
}

func TestEnvironment(t *testing.T) {
	t.Setenv("PHOTO_ORGANISER_DRY_RUN", "true")
	t.Setenv("PHOTO_ORGANISER_MAX_BUMPS", "10")

	c, err := load(t, "in")
	require.NoError(t, err)
	assert.True(t, c.DryRun)
	assert.Equal(t, 10, c.MaxBumps)
}
