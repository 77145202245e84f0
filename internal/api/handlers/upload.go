package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/service"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageSize = 5 << 20
	// maxMovieBody leaves room for the form fields and multipart framing.
	maxMovieBody = MaxImageSize + 1<<20

	imageField = "image"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var imageTypesByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

var errMalformedForm = errors.New("malformed multipart form")

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// parseMovieForm reads title, publishYear and the optional poster from a
// multipart body. Absent text fields stay absent in the payload.
func parseMovieForm(r *http.Request) (service.MoviePayload, *domain.ImageFile, error) {
	if err := r.ParseMultipartForm(maxMovieBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, domain.ErrImageTooLarge
		}
		return nil, nil, fmt.Errorf("%w: %v", errMalformedForm, err)
	}
	defer r.MultipartForm.RemoveAll()

	payload := service.MoviePayload{}
	for _, field := range []string{"title", "publishYear"} {
		if values, ok := r.MultipartForm.Value[field]; ok && len(values) > 0 {
			payload[field] = values[0]
		}
	}

	img, err := readImage(r.MultipartForm.File[imageField])
	if err != nil {
		return nil, nil, err
	}
	return payload, img, nil
}

// readImage returns nil for a missing or empty file part.
func readImage(headers []*multipart.FileHeader) (*domain.ImageFile, error) {
	if len(headers) == 0 || headers[0].Size == 0 {
		return nil, nil
	}
	fh := headers[0]

	contentType := imageContentType(fh)
	if !allowedImageTypes[contentType] {
		return nil, domain.ErrUnsupportedImageType
	}
	if fh.Size > MaxImageSize {
		return nil, domain.ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open image part: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read image part: %w", err)
	}

	if err := checkImageBytes(data, contentType); err != nil {
		return nil, err
	}

	return &domain.ImageFile{
		Data:        data,
		ContentType: contentType,
		Filename:    fh.Filename,
	}, nil
}

// imageContentType prefers the part header and only falls back to the file
// extension when the client sent no usable type.
func imageContentType(fh *multipart.FileHeader) string {
	mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err == nil && mediaType != "application/octet-stream" {
		return strings.ToLower(mediaType)
	}
	return imageTypesByExtension[strings.ToLower(filepath.Ext(fh.Filename))]
}

// checkImageBytes rejects payloads whose header does not decode as the
// declared image format.
func checkImageBytes(data []byte, contentType string) error {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || "image/"+format != contentType {
		return domain.ErrUnsupportedImageType
	}
	return nil
}
