package storage

import (
	"fmt"
	"strings"

	"airbnb-dashboard/models"
)

const (
	colID                 = "id"
	colName               = "name"
	colHostName           = "host_name"
	colNeighbourhoodGroup = "neighbourhood_group"
	colNeighbourhood      = "neighbourhood"
	colLatitude           = "latitude"
	colLongitude          = "longitude"
	colRoomType           = "room_type"
	colPrice              = "price"
	colNumberOfReviews    = "number_of_reviews"
	colLastReview         = "last_review"
	colAvailability365    = "availability_365"
)

var requiredColumns = []string{
	colNeighbourhoodGroup,
	colLatitude,
	colLongitude,
	colRoomType,
	colPrice,
	colNumberOfReviews,
	colAvailability365,
}

// columnIndex maps a normalised header name to its position in a row.
type columnIndex map[string]int

func normaliseHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// mapHeader indexes a header row and checks that every required column is present.
func mapHeader(header []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, h := range header {
		name := normaliseHeader(h)
		if _, dup := idx[name]; !dup && name != "" {
			idx[name] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

func (idx columnIndex) cell(row []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// toRaw converts one data row; short rows yield empty cells.
func (idx columnIndex) toRaw(row []string) *models.RawListing {
	return &models.RawListing{
		ID:                 idx.cell(row, colID),
		Name:               idx.cell(row, colName),
		HostName:           idx.cell(row, colHostName),
		NeighbourhoodGroup: idx.cell(row, colNeighbourhoodGroup),
		Neighbourhood:      idx.cell(row, colNeighbourhood),
		Latitude:           idx.cell(row, colLatitude),
		Longitude:          idx.cell(row, colLongitude),
		RoomType:           idx.cell(row, colRoomType),
		Price:              idx.cell(row, colPrice),
		NumberOfReviews:    idx.cell(row, colNumberOfReviews),
		LastReview:         idx.cell(row, colLastReview),
		Availability365:    idx.cell(row, colAvailability365),
	}
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rowsToRaw maps a header plus data rows to raw listings, skipping blank rows.
func rowsToRaw(rows [][]string) ([]*models.RawListing, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty header", ErrMissingColumn)
	}
	idx, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}
	out := make([]*models.RawListing, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		out = append(out, idx.toRaw(row))
	}
	return out, nil
}
