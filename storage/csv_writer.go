package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"airbnb-dashboard/models"
)

var exportHeader = []string{
	"id", "name", "neighbourhood_group", "neighbourhood", "latitude", "longitude",
	"room_type", "price", "number_of_reviews", "last_review", "availability_365", "distance_km",
}

// CSVWriter exports active-subset rows to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func exportRow(r models.ActiveRow) []string {
	lastReview := ""
	if r.LastReview != nil {
		lastReview = r.LastReview.Format("2006-01-02")
	}
	distance := ""
	if r.DistanceKm != nil {
		distance = strconv.FormatFloat(*r.DistanceKm, 'f', 3, 64)
	}
	return []string{
		r.ID,
		r.Name,
		r.NeighbourhoodGroup,
		r.Neighbourhood,
		formatFloat(r.Latitude),
		formatFloat(r.Longitude),
		r.RoomType,
		formatFloat(r.Price),
		strconv.Itoa(r.NumberOfReviews),
		lastReview,
		strconv.Itoa(r.Availability365),
		distance,
	}
}

// Write appends rows to the file. Undefined distances and absent review dates
// are written as empty cells.
func (c *CSVWriter) Write(rows []models.ActiveRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range rows {
		if err := c.writer.Write(exportRow(r)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
