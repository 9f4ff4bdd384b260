package storage

import (
	"context"
	"errors"
	"fmt"

	"airbnb-dashboard/models"
)

var (
	// ErrNotFound is returned when a data source does not exist.
	ErrNotFound = errors.New("data source not found")
	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("required column missing")
)

// SourceIdentity identifies the content of a data source. Two reads with equal
// identities are expected to yield the same rows.
type SourceIdentity struct {
	Kind     string
	Location string
	Version  string
}

func (id SourceIdentity) String() string {
	return fmt.Sprintf("%s:%s@%s", id.Kind, id.Location, id.Version)
}

// ListingSource is the tabular input the dataset loader reads from.
type ListingSource interface {
	// Identity returns ErrNotFound (wrapped) when the source does not exist.
	Identity(ctx context.Context) (SourceIdentity, error)
	ReadAll(ctx context.Context) ([]*models.RawListing, error)
}

// RawListingWriter persists unprocessed rows, e.g. when seeding a database.
type RawListingWriter interface {
	WriteRaw(ctx context.Context, listings []*models.RawListing) error
	Close() error
}

// ActiveRowWriter exports a filtered subset.
type ActiveRowWriter interface {
	Write(rows []models.ActiveRow) error
	Close() error
}
