package storage

import (
	"context"

	"listings-aggregator/models"
)

// ListingSource supplies an ordered batch of properties.
type ListingSource interface {
	Load(ctx context.Context) ([]models.Property, error)
	Close() error
}

// ListingWriter is the interface for dumping a collection for display.
type ListingWriter interface {
	Write(listings []models.Property) error
	Close() error
}
