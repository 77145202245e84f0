package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	return img
}

func encoded(t *testing.T, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, tinyImage()))
	return buf.Bytes()
}

func TestParseQueryInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 7},
		{"3", 3},
		{" 4 ", 4},
		{"2.9", 2},
		{"1e1", 10},
		{"0", 7},
		{"-2", 7},
		{"0.99", 7},
		{"abc", 7},
		{"NaN", 7},
		{"Infinity", 7},
		{"-Inf", 7},
		{"1e400", 7},
		{"99999999999", 2147483647},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseQueryInt(tt.raw, 7))
		})
	}
}

func TestCheckImageBytes(t *testing.T) {
	pngBytes := encoded(t, func(b *bytes.Buffer, img image.Image) error { return png.Encode(b, img) })
	jpegBytes := encoded(t, func(b *bytes.Buffer, img image.Image) error { return jpeg.Encode(b, img, nil) })
	gifBytes := encoded(t, func(b *bytes.Buffer, img image.Image) error { return gif.Encode(b, img, nil) })

	tests := []struct {
		name        string
		data        []byte
		contentType string
		wantErr     bool
	}{
		{name: "png", data: pngBytes, contentType: "image/png"},
		{name: "jpeg", data: jpegBytes, contentType: "image/jpeg"},
		{name: "gif", data: gifBytes, contentType: "image/gif"},
		{name: "png declared as gif", data: pngBytes, contentType: "image/gif", wantErr: true},
		{name: "text declared as webp", data: []byte("RIFF????WEBP"), contentType: "image/webp", wantErr: true},
		{name: "empty", data: nil, contentType: "image/png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkImageBytes(tt.data, tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedImageType)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestImageContentType(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		filename string
		want     string
	}{
		{name: "header wins", header: "image/png", filename: "poster.jpg", want: "image/png"},
		{name: "header params stripped", header: "image/jpeg; charset=binary", filename: "x", want: "image/jpeg"},
		{name: "header case folded", header: "Image/WEBP", filename: "x", want: "image/webp"},
		{name: "missing header uses extension", filename: "poster.jpeg", want: "image/jpeg"},
		{name: "octet-stream uses extension", header: "application/octet-stream", filename: "poster.gif", want: "image/gif"},
		{name: "unknown extension", header: "application/octet-stream", filename: "poster.bmp", want: ""},
		{name: "other header is not overridden", header: "text/plain", filename: "poster.png", want: "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := make(textproto.MIMEHeader)
			if tt.header != "" {
				h.Set("Content-Type", tt.header)
			}
			fh := &multipart.FileHeader{Filename: tt.filename, Header: h}
			assert.Equal(t, tt.want, imageContentType(fh))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	at := time.Date(2024, time.March, 9, 7, 5, 3, 120_456_000, time.FixedZone("EST", -5*60*60))
	assert.Equal(t, "2024-03-09T12:05:03.120Z", formatTimestamp(at))

	whole := time.Date(2024, time.March, 9, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09T12:00:00.000Z", formatTimestamp(whole))
}
