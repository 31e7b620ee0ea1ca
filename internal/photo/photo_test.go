package photo

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPhoto(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.jpg", true},
		{"a.JPG", true},
		{"dir/a.jpeg", true},
		{"a.Png", true},
		{"a.gif", false},
		{"a.jpg.txt", false},
		{"jpg", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPhoto(tt.path), tt.path)
	}
}

func TestNewFile(t *testing.T) {
	f := NewFile("/in/IMG_1.JPG")
	assert.Equal(t, ".JPG", f.Ext)
	assert.Equal(t, "IMG_1.JPG", f.Name())
	assert.False(t, f.Dated())
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("run: %w", &Error{Kind: KindIO, Path: "/a.jpg", Err: fs.ErrPermission})

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindIO, kind)
	assert.True(t, errors.Is(err, fs.ErrPermission))

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}
