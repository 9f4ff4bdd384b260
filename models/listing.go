package models

import "time"

// RawListing holds one unprocessed row exactly as read from a data source.
// Every field is kept as text; type coercion happens in the cleaner.
type RawListing struct {
	ID                 string
	Name               string
	HostName           string
	NeighbourhoodGroup string
	Neighbourhood      string
	Latitude           string
	Longitude          string
	RoomType           string
	Price              string
	NumberOfReviews    string
	LastReview         string
	Availability365    string
}

// Listing is a cleaned, typed record.
//
// After cleaning, Latitude and Longitude are non-zero, Price is strictly positive
// and no larger than the table's frozen price threshold. LastReview is nil when
// the listing was never reviewed or the source value could not be parsed.
type Listing struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	HostName           string     `json:"host_name,omitempty"`
	NeighbourhoodGroup string     `json:"neighbourhood_group"`
	Neighbourhood      string     `json:"neighbourhood"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	RoomType           string     `json:"room_type"`
	Price              float64    `json:"price"`
	NumberOfReviews    int        `json:"number_of_reviews"`
	LastReview         *time.Time `json:"last_review,omitempty"`
	Availability365    int        `json:"availability_365"`
}

// CleaningStats records how many rows each cleaning rule removed.
type CleaningStats struct {
	RowsRead           int     `json:"rows_read"`
	MissingCoordinates int     `json:"missing_coordinates"`
	ZeroCoordinates    int     `json:"zero_coordinates"`
	Malformed          int     `json:"malformed"`
	PriceOutliers      int     `json:"price_outliers"`
	NonPositivePrice   int     `json:"non_positive_price"`
	AbsentLastReview   int     `json:"absent_last_review"`
	PriceThreshold     float64 `json:"price_threshold"`
}

// Dropped returns the total number of rows removed by cleaning.
func (s CleaningStats) Dropped() int {
	return s.MissingCoordinates + s.ZeroCoordinates + s.Malformed + s.PriceOutliers + s.NonPositivePrice
}

// CleanedTable is the immutable, cleaned dataset shared by every pipeline run.
// Callers must not modify Listings.
type CleanedTable struct {
	Source   string        `json:"source"`
	Listings []Listing     `json:"-"`
	Stats    CleaningStats `json:"stats"`
	LoadedAt time.Time     `json:"loaded_at"`
}

// Len returns the number of cleaned listings.
func (t *CleanedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Listings)
}

// Empty reports whether no rows survived cleaning.
func (t *CleanedTable) Empty() bool { return t.Len() == 0 }

// PriceThreshold returns the 99th-percentile price frozen when the table was cleaned.
func (t *CleanedTable) PriceThreshold() float64 { return t.Stats.PriceThreshold }
