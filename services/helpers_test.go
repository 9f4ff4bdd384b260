package services

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"airbnb-dashboard/models"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

func newTestLogger() *utils.Logger { return utils.NewDiscardLogger() }

// fakeSource is an in-memory ListingSource that counts reads.
type fakeSource struct {
	mu      sync.Mutex
	rows    []*models.RawListing
	version string
	missing bool
	reads   atomic.Int32
	delay   time.Duration
}

func (f *fakeSource) Identity(_ context.Context) (storage.SourceIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing {
		return storage.SourceIdentity{}, storage.ErrNotFound
	}
	return storage.SourceIdentity{Kind: "fake", Location: "memory", Version: f.version}, nil
}

func (f *fakeSource) ReadAll(ctx context.Context) ([]*models.RawListing, error) {
	f.reads.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing {
		return nil, storage.ErrNotFound
	}
	return f.rows, nil
}

func (f *fakeSource) replace(rows []*models.RawListing, version string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
	f.version = version
}

func raw(id, group, room string, price float64, reviews, avail int, lastReview string) *models.RawListing {
	return &models.RawListing{
		ID:                 id,
		Name:               "Listing " + id,
		NeighbourhoodGroup: group,
		Neighbourhood:      group + " Heights",
		Latitude:           "40.73",
		Longitude:          "-73.95",
		RoomType:           room,
		Price:              strconv.FormatFloat(price, 'f', -1, 64),
		NumberOfReviews:    strconv.Itoa(reviews),
		LastReview:         lastReview,
		Availability365:    strconv.Itoa(avail),
	}
}

func listing(id, group, room string, price float64, reviews, avail int) models.Listing {
	return models.Listing{
		ID:                 id,
		NeighbourhoodGroup: group,
		Neighbourhood:      group + " Heights",
		Latitude:           40.73,
		Longitude:          -73.95,
		RoomType:           room,
		Price:              price,
		NumberOfReviews:    reviews,
		Availability365:    avail,
	}
}

func tableOf(listings ...models.Listing) *models.CleanedTable {
	return &models.CleanedTable{Source: "test", Listings: listings}
}

func row(l models.Listing, distance float64) models.ActiveRow {
	d := distance
	return models.ActiveRow{Listing: l, DistanceKm: &d}
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func matchAll(table *models.CleanedTable) models.FilterSpec {
	opts := Options(table)
	return models.FilterSpec{
		NeighbourhoodGroups: opts.NeighbourhoodGroups,
		RoomTypes:           opts.RoomTypes,
		PriceLo:             0,
		PriceHi:             1e9,
		MinReviews:          0,
	}
}

func writeFixtureCSV(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}
