package capture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{raw: "2009:05:25 10:00:00"},
		{raw: "2009:05:25 10:00:00\x00"},
		{raw: " 2020:11:04 09:29:03 "},
		{raw: "2009-05-25 10:00:00", wantErr: true},
		{raw: "2009:5:25 10:00:00", wantErr: true},
		{raw: "0000:00:00 00:00:00", wantErr: true},
		{raw: "2009:05:25", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "2009:13:01 10:00:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			d, err := Parse(tt.raw)
			if tt.wantErr {
				var pe *ParseError
				require.Error(t, err)
				assert.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, d)
		})
	}
}

func TestPathSegmentsAreUnpadded(t *testing.T) {
	d, err := Parse("2009:05:05 10:00:00")
	require.NoError(t, err)

	y, m, day := d.PathSegments()
	assert.Equal(t, "2009", y)
	assert.Equal(t, "5", m)
	assert.Equal(t, "5", day)

	d, err = Parse("2021:12:31 23:59:59")
	require.NoError(t, err)
	y, m, day = d.PathSegments()
	assert.Equal(t, []string{"2021", "12", "31"}, []string{y, m, day})
}

func TestFileName(t *testing.T) {
	tests := []struct {
		raw  string
		ext  string
		want string
	}{
		{"2009:05:25 10:00:00", ".jpg", "2009_05_25-10_00_00_000000.jpg"},
		{"2020:11:04 09:29:03", ".JPG", "2020_11_04-09_29_03_000000.JPG"},
		{"1999:01:02 03:04:05", ".png", "1999_01_02-03_04_05_000000.png"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			a, err := Parse(tt.raw)
			require.NoError(t, err)
			b, err := Parse(tt.raw)
			require.NoError(t, err)

			assert.Equal(t, tt.want, a.FileName(tt.ext))
			assert.Equal(t, a.FileName(tt.ext), b.FileName(tt.ext))
		})
	}
}

func TestBump(t *testing.T) {
	d, err := Parse("2009:05:25 10:00:00")
	require.NoError(t, err)

	seen := map[string]bool{d.FileName(".jpg"): true}
	for i := 0; i < 3; i++ {
		d.Bump()
		name := d.FileName(".jpg")
		assert.False(t, seen[name], "bump produced a repeated name %s", name)
		seen[name] = true
	}
	assert.Equal(t, "2009_05_25-10_00_00_000003.jpg", d.FileName(".jpg"))
	assert.Equal(t, "2009:05:25 10:00:00", d.String())

	y, m, day := d.PathSegments()
	assert.Equal(t, []string{"2009", "5", "25"}, []string{y, m, day})
}

func TestBumpWithinOneSecondKeepsSegments(t *testing.T) {
	d, err := Parse("2009:12:31 23:59:59")
	require.NoError(t, err)

	for i := 0; i < MaxBumps-1; i++ {
		d.Bump()
	}
	assert.Equal(t, "2009_12_31-23_59_59_999999.jpg", d.FileName(".jpg"))
	y, m, day := d.PathSegments()
	assert.Equal(t, []string{"2009", "12", "31"}, []string{y, m, day})
}
