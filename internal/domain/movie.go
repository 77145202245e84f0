package domain

import (
	"time"

	"github.com/google/uuid"
)

type Movie struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Title       string    `gorm:"not null"`
	PublishYear int       `gorm:"not null"`
	// Image is empty when the movie has no poster; clients render a fallback.
	Image string `gorm:"not null;default:''"`
	// ImagePublicID is set if and only if Image points at a blob store asset.
	ImagePublicID *string
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

// HasStoredImage reports whether the movie references a blob owned by the image store.
func (m *Movie) HasStoredImage() bool {
	return m.ImagePublicID != nil && *m.ImagePublicID != ""
}

// ImageFile is an uploaded poster that already passed the type and size checks.
type ImageFile struct {
	Data        []byte
	ContentType string
	Filename    string
}

func (f *ImageFile) Size() int64 {
	return int64(len(f.Data))
}

// StoredImage is what the image store hands back after an upload.
type StoredImage struct {
	URL       string
	StorageID string
}

// PageMeta describes a page of a list result.
type PageMeta struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	TotalItems      int  `json:"totalItems"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

type MoviePage struct {
	Movies []*Movie
	Meta   PageMeta
}
