package storage

import (
	"github.com/google/uuid"
)

// Namespace is the logical folder every poster is stored under.
const Namespace = "movie-wallet"

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// NewObjectKey returns a fresh key for an image. Keys never repeat, so every
// upload creates a new object.
func NewObjectKey(contentType string) string {
	return Namespace + "/" + uuid.New().String() + extensions[contentType]
}
