package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-organiser/internal/config"
	"photo-organiser/internal/phototest"
)

const canonical = "/out/2009/5/25/2009_05_25-10_00_00_000000.jpg"

func execute(t *testing.T, fs afero.Fs, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(fs)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCopy(t *testing.T) {
	fs := afero.NewMemMapFs()
	phototest.WriteFile(t, fs, "/in/a/IMG_1.jpg", phototest.JPEG(t, "2009:05:25 10:00:00", 1))

	stdout, _, err := execute(t, fs, "-g", "stdout", "/in", "/out")
	require.NoError(t, err)

	ok, err := afero.Exists(fs, canonical)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = afero.Exists(fs, "/in/a/IMG_1.jpg")
	require.NoError(t, err)
	assert.True(t, ok, "copy keeps the source")

	assert.Contains(t, stdout, "Organised")
	assert.Contains(t, stdout, "Source:      /in")
}

func TestDryRunMove(t *testing.T) {
	fs := afero.NewMemMapFs()
	phototest.WriteFile(t, fs, "/in/IMG_1.jpg", phototest.JPEG(t, "2009:05:25 10:00:00", 1))

	stdout, _, err := execute(t, fs, "-n", "-m", "/in", "/out")
	require.NoError(t, err)

	ok, _ := afero.Exists(fs, canonical)
	assert.False(t, ok)
	ok, _ = afero.Exists(fs, "/in/IMG_1.jpg")
	assert.True(t, ok)
	assert.Contains(t, stdout, "DRY RUN")
	assert.Contains(t, stdout, "Would organise")
}

func TestQuiet(t *testing.T) {
	fs := afero.NewMemMapFs()
	phototest.WriteFile(t, fs, "/in/IMG_1.jpg", phototest.JPEG(t, "2009:05:25 10:00:00", 1))

	stdout, stderr, err := execute(t, fs, "-q", "/in", "/out")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestLogFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	phototest.WriteFile(t, fs, "/in/IMG_1.jpg", phototest.JPEG(t, "2009:05:25 10:00:00", 1))

	_, stderr, err := execute(t, fs, "-g", "/organiser.log", "--json-log", "/in", "/out")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	data, err := afero.ReadFile(fs, "/organiser.log")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"path":"/in/IMG_1.jpg"`)
}

func TestInvalidArguments(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, stderr, err := execute(t, fs)
	assert.ErrorIs(t, err, config.ErrInvalidArguments)
	assert.Contains(t, stderr, "Usage:")

	_, _, err = execute(t, fs, "a", "b", "c")
	assert.ErrorIs(t, err, config.ErrInvalidArguments)
}

func TestMissingSource(t *testing.T) {
	_, stderr, err := execute(t, afero.NewMemMapFs(), "-q", "/nope", "/out")
	assert.Error(t, err)
	assert.Contains(t, stderr, "Error:")
}
