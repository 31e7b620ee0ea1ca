package exifdate

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photo-organiser/internal/phototest"
)

func TestRead(t *testing.T) {
	fs := afero.NewMemMapFs()
	phototest.WriteFile(t, fs, "/src/dated.jpg", phototest.JPEG(t, "2009:05:25 10:00:00", 1))
	phototest.WriteFile(t, fs, "/src/plain.jpg", phototest.JPEG(t, "", 1))
	phototest.WriteFile(t, fs, "/src/plain.png", phototest.PNG(t, "", 1))
	phototest.WriteFile(t, fs, "/src/dated.png", phototest.PNG(t, "2020:11:04 09:29:03", 1))
	phototest.WriteFile(t, fs, "/src/garbage-date.jpg", phototest.JPEG(t, "not a date at all", 1))
	phototest.WriteFile(t, fs, "/src/corrupt.jpg", []byte("definitely not an image"))
	phototest.WriteFile(t, fs, "/src/empty.png", nil)

	r := NewReader(fs)

	t.Run("jpeg with exif", func(t *testing.T) {
		raw, err := r.Read("/src/dated.jpg")
		require.NoError(t, err)
		assert.Equal(t, "2009:05:25 10:00:00", raw)
	})

	t.Run("png with eXIf chunk", func(t *testing.T) {
		raw, err := r.Read("/src/dated.png")
		require.NoError(t, err)
		assert.Equal(t, "2020:11:04 09:29:03", raw)
	})

	t.Run("tag value is returned unparsed", func(t *testing.T) {
		raw, err := r.Read("/src/garbage-date.jpg")
		require.NoError(t, err)
		assert.Equal(t, "not a date at all", raw)
	})

	for _, path := range []string{"/src/plain.jpg", "/src/plain.png"} {
		t.Run("no exif "+path, func(t *testing.T) {
			_, err := r.Read(path)
			assert.True(t, errors.Is(err, ErrNoDate), "want ErrNoDate, got %v", err)
			assert.False(t, IsInvalidImage(err))
		})
	}

	for _, path := range []string{"/src/corrupt.jpg", "/src/empty.png", "/src/missing.jpg"} {
		t.Run("invalid "+path, func(t *testing.T) {
			_, err := r.Read(path)
			require.Error(t, err)
			assert.True(t, IsInvalidImage(err), "want InvalidImageError, got %T %v", err, err)
			assert.False(t, errors.Is(err, ErrNoDate))
		})
	}
}
