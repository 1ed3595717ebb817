// Package models defines the entities and errors shared across the website backend,
// its HTTP client and the link-creation form.
package models

import (
	"errors"
	"time"
)

var (
	// ErrSlugTaken is returned when a link is created with a slug that is already assigned.
	ErrSlugTaken = errors.New("slug is already taken")
	// ErrInvalidLink is returned when a slug or destination url is rejected by validation.
	ErrInvalidLink = errors.New("invalid link")
)

// Link represents a shortened link.
type Link struct {
	// ID is the unique identifier of the link record.
	ID int64
	// Slug is the short identifier the link is reachable under.
	Slug string
	// URL is the destination the slug points to.
	URL string
	// ShortURL is the fully qualified short link, filled in by the API layer.
	ShortURL string
	// CreatedAt is the timestamp indicating when the link was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the link was last updated.
	UpdatedAt time.Time
}
