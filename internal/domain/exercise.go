// internal/domain/exercise.go
package domain

import "time"

// Exercise represents a single exercise definition in the shared catalog.
type Exercise struct {
	ID          int64  `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`

	// Demo media stored in object storage; the key itself is internal.
	MediaKey         string `bson:"mediaKey,omitempty" json:"-"`
	MediaContentType string `bson:"mediaContentType,omitempty" json:"mediaContentType,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasMedia reports whether a demo object has been confirmed for the exercise.
func (e *Exercise) HasMedia() bool {
	return e.MediaKey != ""
}
