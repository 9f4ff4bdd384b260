package services

import "errors"

var (
	// ErrEmptyDataset means the source loaded but no row survived cleaning.
	ErrEmptyDataset = errors.New("dataset is empty after cleaning")
	// ErrEmptyFilterResult means the filter matched no rows.
	ErrEmptyFilterResult = errors.New("no listings match the current filters")
	// ErrUndefinedDistance means a distance could not be computed for a coordinate pair.
	ErrUndefinedDistance = errors.New("distance is undefined")
	// ErrInvalidPersona means the persona is not one of the enumerated values.
	ErrInvalidPersona = errors.New("invalid persona")
	// ErrInvalidFilter means a FilterSpec failed validation.
	ErrInvalidFilter = errors.New("invalid filter")
)
