// Package phototest builds small in-memory JPEG and PNG images, optionally
// carrying an EXIF DateTimeOriginal tag, for use in tests.
package phototest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// tiffBlock returns a little-endian TIFF structure with IFD0 pointing to an
// Exif sub-IFD that holds a single DateTimeOriginal (0x9003) ASCII value.
func tiffBlock(date string) []byte {
	val := append([]byte(date), 0)
	for len(val) <= 4 {
		val = append(val, 0)
	}

	const (
		ifd0Offset = 8
		exifOffset = ifd0Offset + 2 + 12 + 4
		dataOffset = exifOffset + 2 + 12 + 4
	)

	var b bytes.Buffer
	w := func(v any) { _ = binary.Write(&b, binary.LittleEndian, v) }

	b.WriteString("II")
	w(uint16(42))
	w(uint32(ifd0Offset))

	// IFD0: ExifIFDPointer
	w(uint16(1))
	w(uint16(0x8769))
	w(uint16(4))
	w(uint32(1))
	w(uint32(exifOffset))
	w(uint32(0))

	// Exif IFD: DateTimeOriginal
	w(uint16(1))
	w(uint16(0x9003))
	w(uint16(2))
	w(uint32(len(val)))
	w(uint32(dataOffset))
	w(uint32(0))

	b.Write(val)
	return b.Bytes()
}

func pixels(seed uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: seed, G: uint8(x * 16), B: uint8(y * 16), A: 0xff})
		}
	}
	return img
}

// JPEG returns an encoded JPEG whose bytes depend on seed. A non-empty date
// is stored as DateTimeOriginal in an APP1 EXIF segment.
func JPEG(t testing.TB, date string, seed uint8) []byte {
	t.Helper()

	var b bytes.Buffer
	if err := jpeg.Encode(&b, pixels(seed), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	var segments []byte
	if date != "" {
		segments = append(segments, segment(0xE1, append([]byte("Exif\x00\x00"), tiffBlock(date)...))...)
	}
	// Lossy compression may fold nearby seeds into the same pixels; a
	// comment keeps the files distinct.
	segments = append(segments, segment(0xFE, []byte{'s', 'e', 'e', 'd', seed})...)

	raw := b.Bytes()
	out := make([]byte, 0, len(raw)+len(segments))
	out = append(out, raw[:2]...) // SOI
	out = append(out, segments...)
	out = append(out, raw[2:]...)
	return out
}

// segment encodes a JPEG marker segment.
func segment(marker byte, payload []byte) []byte {
	seg := []byte{0xFF, marker, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	return append(seg, payload...)
}

// PNG returns an encoded PNG whose pixels depend on seed. A non-empty date
// is stored in an eXIf chunk right after IHDR.
func PNG(t testing.TB, date string, seed uint8) []byte {
	t.Helper()

	var b bytes.Buffer
	if err := png.Encode(&b, pixels(seed)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if date == "" {
		return b.Bytes()
	}

	data := tiffBlock(date)
	chunk := make([]byte, 4, 12+len(data))
	binary.BigEndian.PutUint32(chunk, uint32(len(data)))
	chunk = append(chunk, "eXIf"...)
	chunk = append(chunk, data...)
	crc := crc32.ChecksumIEEE(chunk[4:])
	chunk = binary.BigEndian.AppendUint32(chunk, crc)

	// 8-byte signature followed by the 25-byte IHDR chunk.
	const afterIHDR = 8 + 25
	raw := b.Bytes()
	out := make([]byte, 0, len(raw)+len(chunk))
	out = append(out, raw[:afterIHDR]...)
	out = append(out, chunk...)
	out = append(out, raw[afterIHDR:]...)
	return out
}

// WriteFile stores data at path on fs, creating parent directories.
func WriteFile(t testing.TB, fs afero.Fs, path string, data []byte) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
